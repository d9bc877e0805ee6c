package score

import (
	"testing"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

func text(s string) models.Submission {
	return models.Submission{OpenEndedAnswer: &s}
}

func TestGradeOpenEnded(t *testing.T) {
	q := models.Question{Type: models.QuestionTypeOpenEnded, Words: []string{"paris"}}

	tests := []struct {
		name string
		sub  models.Submission
		want bool
	}{
		{"keyword inside a sentence", text("La ville de Paris est belle"), true},
		{"different case", text("PARIS"), true},
		{"keyword truncated", text("pari"), false},
		{"no answer", models.Submission{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Grade(tt.sub, q); got != tt.want {
				t.Fatalf("Grade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeOpenEndedExactMatch(t *testing.T) {
	q := models.Question{Type: models.QuestionTypeOpenEnded, Words: []string{"paris"}, ExactMatch: true}

	if !Grade(text("Paris"), q) {
		t.Fatal("exact keyword rejected")
	}
	if Grade(text("in paris"), q) {
		t.Fatal("surrounding text accepted despite exact match")
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	q := models.Question{
		Type: models.QuestionTypeMultipleChoice,
		Answers: []models.Answer{
			{Label: "a", Correct: true},
			{Label: "b"},
			{Label: "c", Correct: true},
		},
	}

	right := models.Submission{Answers: []models.SubmittedAnswer{{Correct: true}, {}, {Correct: true}}}
	if !Grade(right, q) {
		t.Fatal("matching flags graded incorrect")
	}

	flipped := models.Submission{Answers: []models.SubmittedAnswer{{Correct: true}, {Correct: true}, {Correct: true}}}
	if Grade(flipped, q) {
		t.Fatal("extra checked answer graded correct")
	}

	short := models.Submission{Answers: []models.SubmittedAnswer{{Correct: true}}}
	if Grade(short, q) {
		t.Fatal("wrong arity graded correct")
	}
}

func TestGradeMatching(t *testing.T) {
	q := models.Question{
		Type: models.QuestionTypeMatching,
		MatchingFields: []models.MatchingField{
			{Label: "f1", Answers: []models.MatchingAnswer{{Correct: true}, {}}},
			{Label: "f2", Answers: []models.MatchingAnswer{{}, {Correct: true}}},
		},
	}

	right := models.Submission{MatchingFields: []models.SubmittedMatchingField{
		{Answers: []models.SubmittedAnswer{{Correct: true}, {}}},
		{Answers: []models.SubmittedAnswer{{}, {Correct: true}}},
	}}
	if !Grade(right, q) {
		t.Fatal("matching vectors graded incorrect")
	}

	wrong := models.Submission{MatchingFields: []models.SubmittedMatchingField{
		{Answers: []models.SubmittedAnswer{{}, {Correct: true}}},
		{Answers: []models.SubmittedAnswer{{}, {Correct: true}}},
	}}
	if Grade(wrong, q) {
		t.Fatal("wrong vector graded correct")
	}

	misshapen := models.Submission{MatchingFields: []models.SubmittedMatchingField{
		{Answers: []models.SubmittedAnswer{{Correct: true}}},
	}}
	if Grade(misshapen, q) {
		t.Fatal("misshapen submission graded correct")
	}
}

func TestGradeUnknownType(t *testing.T) {
	if Grade(text("anything"), models.Question{Type: "mystery"}) {
		t.Fatal("unknown question type graded correct")
	}
}

func TestOpenEndedFeedback(t *testing.T) {
	q := models.Question{
		Type:             models.QuestionTypeOpenEnded,
		Words:            []string{"paris"},
		PositiveFeedback: "well done",
		NegativeFeedback: "nope",
		Feedback:         "capital of France",
	}

	fb := BuildFeedback(text("paris"), q)
	if fb.Specific != "well done" || fb.General != "capital of France" {
		t.Fatalf("feedback for a correct answer = %+v", fb)
	}

	fb = BuildFeedback(text("londres"), q)
	if fb.Specific != "nope" {
		t.Fatalf("feedback for a wrong answer = %+v", fb)
	}

	fb = BuildFeedback(models.Submission{}, q)
	if fb.Specific != "" || fb.General != "" {
		t.Fatalf("feedback for a malformed submission = %+v", fb)
	}
}

func TestMultipleChoiceFeedback(t *testing.T) {
	q := models.Question{
		Type: models.QuestionTypeMultipleChoice,
		Answers: []models.Answer{
			{Label: "a", Feedback: "about a"},
			{Label: "b", Correct: true, Feedback: "about b"},
		},
		Feedback: "general",
	}

	sub := models.Submission{Answers: []models.SubmittedAnswer{{}, {Correct: true}}}
	fb := BuildFeedback(sub, q)
	if fb.Specific != "about b" || fb.General != "general" {
		t.Fatalf("feedback = %+v", fb)
	}

	none := models.Submission{Answers: []models.SubmittedAnswer{{}, {}}}
	fb = BuildFeedback(none, q)
	if fb.Specific != "" || fb.General != "general" {
		t.Fatalf("feedback with nothing picked = %+v", fb)
	}
}
