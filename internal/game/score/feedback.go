package score

import "github.com/Robinsstudio/PIX-L/internal/models"

// BuildFeedback assembles the per-team response to a submission. A
// malformed submission gets empty feedback; the caller sets Positive.
func BuildFeedback(sub models.Submission, original models.Question) models.Feedback {
	switch original.Type {
	case models.QuestionTypeMultipleChoice:
		return multipleChoiceFeedback(sub, original)
	case models.QuestionTypeOpenEnded:
		return openEndedFeedback(sub, original)
	case models.QuestionTypeMatching:
		return matchingFeedback(sub, original)
	}
	return models.Feedback{}
}

// multipleChoiceFeedback attaches the feedback of the first answer the team
// picked, when the author wrote one, plus the question-level feedback.
func multipleChoiceFeedback(sub models.Submission, original models.Question) models.Feedback {
	var fb models.Feedback
	if !checkMultipleChoice(sub, original) {
		return fb
	}
	for i, answer := range sub.Answers {
		if answer.Correct {
			if original.Answers[i].Feedback != "" {
				fb.Specific = original.Answers[i].Feedback
			}
			break
		}
	}
	fb.General = original.Feedback
	return fb
}

// openEndedFeedback picks the author's positive or negative message
// depending on how the answer graded.
func openEndedFeedback(sub models.Submission, original models.Question) models.Feedback {
	var fb models.Feedback
	if !checkOpenEnded(sub) {
		return fb
	}
	if gradeOpenEnded(sub, original) {
		fb.Specific = original.PositiveFeedback
	} else {
		fb.Specific = original.NegativeFeedback
	}
	fb.General = original.Feedback
	return fb
}

func matchingFeedback(sub models.Submission, original models.Question) models.Feedback {
	var fb models.Feedback
	if !checkMatching(sub, original) {
		return fb
	}
	fb.General = original.Feedback
	return fb
}
