package catalog

import (
	"math"

	"github.com/google/uuid"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// Catalog holds the questions of one game: an ordered list of root questions
// drawn on the board, plus a side table of linked follow-up questions that
// are only ever reached through a root question's chain.
type Catalog struct {
	questions []models.Question
	linked    map[uuid.UUID]models.Question
}

// New builds a catalog from the root questions and the linked side table.
func New(questions, linked []models.Question) *Catalog {
	byID := make(map[uuid.UUID]models.Question, len(linked))
	for _, q := range linked {
		byID[q.ID] = q
	}
	return &Catalog{questions: questions, linked: byID}
}

// Question returns the root question at the given board index.
func (c *Catalog) Question(index int) (models.Question, bool) {
	if index < 0 || index >= len(c.questions) {
		return models.Question{}, false
	}
	return c.questions[index], true
}

// LinkedQuestion resolves an id against the side table.
func (c *Catalog) LinkedQuestion(id uuid.UUID) (models.Question, bool) {
	q, ok := c.linked[id]
	return q, ok
}

// NextQuestion returns the linked follow-up of the root question with the
// given id, if both resolve.
func (c *Catalog) NextQuestion(id uuid.UUID) (models.Question, bool) {
	for _, q := range c.questions {
		if q.ID == id {
			if q.LinkedQuestion == nil {
				return models.Question{}, false
			}
			return c.LinkedQuestion(*q.LinkedQuestion)
		}
	}
	return models.Question{}, false
}

// Count returns the number of root questions.
func (c *Catalog) Count() int {
	return len(c.questions)
}

// Cards returns the board projection of every root question.
func (c *Catalog) Cards() []models.QuestionCard {
	cards := make([]models.QuestionCard, len(c.questions))
	for i, q := range c.questions {
		cards[i] = q.Card()
	}
	return cards
}

// MaxPoints returns the highest total a single team could reach: every
// question's points plus the first-correct bonus on half the board, the
// bonus being available once per turn.
func (c *Catalog) MaxPoints() float64 {
	var sum float64
	for _, q := range c.questions {
		sum += q.Points
	}
	for _, q := range c.linked {
		sum += q.Points
	}
	return sum + math.Ceil(float64(len(c.questions))/2)
}
