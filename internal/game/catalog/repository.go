package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// Repository loads game catalogs from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadGame loads the named game and builds its catalog: the game's root
// questions in board order, plus every linked question they reference.
// A game with no questions is an error; the session engine assumes a
// non-empty catalog.
func (r *Repository) LoadGame(ctx context.Context, gameID string) (string, *Catalog, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return "", nil, fmt.Errorf("invalid game id %q: %w", gameID, err)
	}

	var name string
	var questionIDs []uuid.UUID
	err = r.pool.QueryRow(ctx,
		`SELECT name, question_ids FROM games WHERE id = $1`, id,
	).Scan(&name, &questionIDs)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	if len(questionIDs) == 0 {
		return "", nil, fmt.Errorf("game %s has no questions", gameID)
	}

	questions, err := r.questionsByIDs(ctx, questionIDs)
	if err != nil {
		return "", nil, err
	}

	var linkedIDs []uuid.UUID
	for _, q := range questions {
		if q.LinkedQuestion != nil {
			linkedIDs = append(linkedIDs, *q.LinkedQuestion)
		}
	}

	// Linked questions may chain further; resolve hop by hop until the
	// frontier is empty. Ids that do not resolve are dropped silently.
	linked := make([]models.Question, 0, len(linkedIDs))
	seen := make(map[uuid.UUID]bool, len(linkedIDs))
	for len(linkedIDs) > 0 {
		batch, err := r.questionsByIDs(ctx, linkedIDs)
		if err != nil {
			return "", nil, err
		}
		linkedIDs = nil
		for _, q := range batch {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			linked = append(linked, q)
			if q.LinkedQuestion != nil && !seen[*q.LinkedQuestion] {
				linkedIDs = append(linkedIDs, *q.LinkedQuestion)
			}
		}
	}

	return name, New(questions, linked), nil
}

// questionsByIDs fetches questions and returns them in the order of ids.
func (r *Repository) questionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_type, label, theme, points, time, data, linked_question_id
		 FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]models.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	questions := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// questionData is the jsonb payload holding the type-specific answer fields.
type questionData struct {
	Answers          []models.Answer        `json:"answers,omitempty"`
	MatchingFields   []models.MatchingField `json:"matching_fields,omitempty"`
	Words            []string               `json:"words,omitempty"`
	ExactMatch       bool                   `json:"exact_match,omitempty"`
	Feedback         string                 `json:"feedback,omitempty"`
	PositiveFeedback string                 `json:"positive_feedback,omitempty"`
	NegativeFeedback string                 `json:"negative_feedback,omitempty"`
}

func scanQuestion(row pgx.Row) (models.Question, error) {
	var (
		q        models.Question
		qType    string
		data     []byte
		linkedID *uuid.UUID
	)
	if err := row.Scan(&q.ID, &qType, &q.Label, &q.Theme, &q.Points, &q.Time, &data, &linkedID); err != nil {
		return models.Question{}, fmt.Errorf("failed to scan question: %w", err)
	}
	var details questionData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &details); err != nil {
			return models.Question{}, fmt.Errorf("failed to decode question data: %w", err)
		}
	}
	q.Type = models.QuestionType(qType)
	q.Answers = details.Answers
	q.MatchingFields = details.MatchingFields
	q.Words = details.Words
	q.ExactMatch = details.ExactMatch
	q.Feedback = details.Feedback
	q.PositiveFeedback = details.PositiveFeedback
	q.NegativeFeedback = details.NegativeFeedback
	q.LinkedQuestion = linkedID
	return q, nil
}
