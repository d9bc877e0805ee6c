package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreEntry is one ledger line: what a team earned on one question.
type ScoreEntry struct {
	Theme   string  `json:"theme"`
	Score   float64 `json:"score"`
	Correct bool    `json:"correct"`
}

// TeamScore is a team's slot and current total.
type TeamScore struct {
	Team  int     `json:"team"`
	Score float64 `json:"score"`
}

// SessionRecord is the checkpointable state of a live session: every team's
// ledger plus enough identity to tie it back to the game it was played from.
type SessionRecord struct {
	ID        uuid.UUID                        `json:"id"`
	GameID    string                           `json:"game_id"`
	Scores    map[int]map[uuid.UUID]ScoreEntry `json:"scores"`
	StartedAt time.Time                        `json:"started_at"`
}
