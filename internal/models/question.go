package models

import "github.com/google/uuid"

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeOpenEnded      QuestionType = "openEnded"
	QuestionTypeMatching       QuestionType = "matching"
)

// Answer is one choice of a multiple choice question.
type Answer struct {
	Label    string `json:"label"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

// MatchingAnswer is one selectable option inside a matching field.
type MatchingAnswer struct {
	Label   string `json:"label"`
	Correct bool   `json:"correct"`
}

// MatchingField is one row of a matching question.
type MatchingField struct {
	Label   string           `json:"label"`
	Answers []MatchingAnswer `json:"answers"`
}

// Question is a full question record, answer data included. LinkedQuestion,
// when set, points into the side table of follow-up questions; an id that
// does not resolve is treated as absent.
type Question struct {
	ID               uuid.UUID       `json:"id"`
	Type             QuestionType    `json:"question_type"`
	Label            string          `json:"label"`
	Theme            string          `json:"theme"`
	Points           float64         `json:"points"`
	Time             int             `json:"time"`
	Answers          []Answer        `json:"answers,omitempty"`
	MatchingFields   []MatchingField `json:"matching_fields,omitempty"`
	Words            []string        `json:"words,omitempty"`
	ExactMatch       bool            `json:"exact_match,omitempty"`
	Feedback         string          `json:"feedback,omitempty"`
	PositiveFeedback string          `json:"positive_feedback,omitempty"`
	NegativeFeedback string          `json:"negative_feedback,omitempty"`
	LinkedQuestion   *uuid.UUID      `json:"linked_question,omitempty"`
}

// QuestionCard is the board projection of a question: enough to draw the
// face-down card, nothing that gives the answer away.
type QuestionCard struct {
	ID     uuid.UUID `json:"id"`
	Theme  string    `json:"theme"`
	Points float64   `json:"points"`
}

// AnswerView is an answer choice with its correctness flag stripped.
type AnswerView struct {
	Label string `json:"label"`
}

// MatchingFieldView is a matching field with correctness flags stripped.
type MatchingFieldView struct {
	Label   string       `json:"label"`
	Answers []AnswerView `json:"answers"`
}

// QuestionView is the projection of a question sent to teams while it is
// being played: the full prompt with every answer field stripped.
type QuestionView struct {
	ID             uuid.UUID           `json:"id"`
	Type           QuestionType        `json:"question_type"`
	Label          string              `json:"label"`
	Answers        []AnswerView        `json:"answers"`
	MatchingFields []MatchingFieldView `json:"matching_fields"`
	Theme          string              `json:"theme"`
	Points         float64             `json:"points"`
	Time           int                 `json:"time"`
}

// Card returns the board projection of q.
func (q Question) Card() QuestionCard {
	return QuestionCard{ID: q.ID, Theme: q.Theme, Points: q.Points}
}

// View returns the answer-stripped projection of q.
func (q Question) View() QuestionView {
	answers := make([]AnswerView, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = AnswerView{Label: a.Label}
	}
	fields := make([]MatchingFieldView, len(q.MatchingFields))
	for i, f := range q.MatchingFields {
		opts := make([]AnswerView, len(f.Answers))
		for j, a := range f.Answers {
			opts[j] = AnswerView{Label: a.Label}
		}
		fields[i] = MatchingFieldView{Label: f.Label, Answers: opts}
	}
	return QuestionView{
		ID:             q.ID,
		Type:           q.Type,
		Label:          q.Label,
		Answers:        answers,
		MatchingFields: fields,
		Theme:          q.Theme,
		Points:         q.Points,
		Time:           q.Time,
	}
}
