// Package events defines the event envelope and payloads shared by the
// session engine, the relay, and the gateway.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// Type identifies a game event.
type Type string

const (
	TypeInit                  Type = "Init"
	TypeQuestionSelection     Type = "QuestionSelection"
	TypeQuestionStart         Type = "QuestionStart"
	TypeQuestionEnd           Type = "QuestionEnd"
	TypeCount                 Type = "Count"
	TypeTeamChange            Type = "TeamChange"
	TypeTurn                  Type = "Turn"
	TypeFeedback              Type = "Feedback"
	TypeGreeting              Type = "Greeting"
	TypeConfirmStopQuestion   Type = "ConfirmStopQuestion"
	TypeConfirmStopSession    Type = "ConfirmStopSession"
	TypeConfirmCancelQuestion Type = "ConfirmCancelQuestion"
)

// GameEvent is the envelope delivered to clients. Team, when non-zero,
// targets the connection owning that slot; Conn, when non-nil, targets one
// connection. Both unset means broadcast to the room.
type GameEvent struct {
	ID        uuid.UUID       `json:"id"`
	Room      string          `json:"room"`
	Type      Type            `json:"type"`
	Team      int             `json:"team,omitempty"`
	Conn      uuid.UUID       `json:"conn,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SelectionPayload lists the indices that changed visibility.
type SelectionPayload struct {
	Selected   []int `json:"selected_questions"`
	Unselected []int `json:"unselected_questions"`
}

// CountPayload carries the seconds remaining on the countdown.
type CountPayload struct {
	Seconds int `json:"seconds"`
}

// TurnPayload carries the team whose turn it is; zero when no team is connected.
type TurnPayload struct {
	Team int `json:"team"`
}

// TeamChangePayload carries the connected teams' totals.
type TeamChangePayload struct {
	Teams []models.TeamScore `json:"teams"`
}

// GreetingPayload carries the teams tied for the lead at session end.
type GreetingPayload struct {
	Teams []int `json:"teams"`
}

// QuestionStartPayload carries the answer-stripped question being played.
type QuestionStartPayload struct {
	Question *models.QuestionView `json:"question"`
}

// InitPayload is the join snapshot: the board, what is revealed, the scores,
// and the ceiling of the score scale.
type InitPayload struct {
	Questions []models.QuestionCard `json:"questions"`
	Selection SelectionPayload      `json:"selection"`
	Teams     []models.TeamScore    `json:"teams"`
	MaxPoints float64               `json:"max_points"`
}
