package score

import (
	"strings"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// Grade checks a submission against the original question. Malformed
// submissions are never an error; they simply grade as incorrect.
func Grade(sub models.Submission, original models.Question) bool {
	switch original.Type {
	case models.QuestionTypeMultipleChoice:
		return gradeMultipleChoice(sub, original)
	case models.QuestionTypeOpenEnded:
		return gradeOpenEnded(sub, original)
	case models.QuestionTypeMatching:
		return gradeMatching(sub, original)
	}
	return false
}

// checkMultipleChoice verifies the submission carries one flag per answer slot.
func checkMultipleChoice(sub models.Submission, original models.Question) bool {
	return len(sub.Answers) == len(original.Answers)
}

// checkOpenEnded verifies the submission carries a free-text answer.
func checkOpenEnded(sub models.Submission) bool {
	return sub.OpenEndedAnswer != nil
}

// checkMatching verifies the submission's vectors match the original shape.
func checkMatching(sub models.Submission, original models.Question) bool {
	if len(sub.MatchingFields) != len(original.MatchingFields) {
		return false
	}
	for i, field := range sub.MatchingFields {
		if len(field.Answers) != len(original.MatchingFields[i].Answers) {
			return false
		}
	}
	return true
}

// gradeMultipleChoice is correct iff every slot matches the original
// correctness flags exactly.
func gradeMultipleChoice(sub models.Submission, original models.Question) bool {
	if !checkMultipleChoice(sub, original) {
		return false
	}
	for i, answer := range original.Answers {
		if answer.Correct != sub.Answers[i].Correct {
			return false
		}
	}
	return true
}

// gradeOpenEnded is correct iff the lower-cased text equals (exact match)
// or contains at least one accepted keyword, case-insensitively.
func gradeOpenEnded(sub models.Submission, original models.Question) bool {
	if !checkOpenEnded(sub) {
		return false
	}
	answer := strings.ToLower(*sub.OpenEndedAnswer)
	for _, word := range original.Words {
		word = strings.ToLower(word)
		if original.ExactMatch {
			if answer == word {
				return true
			}
		} else if strings.Contains(answer, word) {
			return true
		}
	}
	return false
}

// gradeMatching is correct iff every field's vector matches exactly.
func gradeMatching(sub models.Submission, original models.Question) bool {
	if !checkMatching(sub, original) {
		return false
	}
	for i, field := range original.MatchingFields {
		for j, answer := range field.Answers {
			if answer.Correct != sub.MatchingFields[i].Answers[j].Correct {
				return false
			}
		}
	}
	return true
}
