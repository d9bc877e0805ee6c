package models

import "github.com/google/uuid"

// SubmittedAnswer is one checkbox state in a submitted answer grid.
type SubmittedAnswer struct {
	Correct bool `json:"correct"`
}

// SubmittedMatchingField is the submitted checkbox vector for one matching field.
type SubmittedMatchingField struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// Submission is a team's answer to a question. Exactly one of the three
// answer shapes is expected to be filled, depending on the question type;
// anything malformed grades as zero rather than erroring.
type Submission struct {
	QuestionID      uuid.UUID                `json:"question_id"`
	Answers         []SubmittedAnswer        `json:"answers,omitempty"`
	MatchingFields  []SubmittedMatchingField `json:"matching_fields,omitempty"`
	OpenEndedAnswer *string                  `json:"open_ended_answer,omitempty"`
}

// Feedback is the per-team response to a submission.
type Feedback struct {
	Specific string `json:"specific,omitempty"`
	General  string `json:"general,omitempty"`
	Positive bool   `json:"positive"`
}
