// Package score implements the per-room scoring engine: the answer ledger,
// turn tracking, grading, linked-question chains, and the turn-holder
// bonus/penalty arithmetic.
package score

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Robinsstudio/PIX-L/internal/models"
)

// State is what the engine reads from the rest of the room: the connected
// teams, the active question, and the linked-question side table.
type State interface {
	Teams() []int
	ActiveQuestion() (models.Question, bool)
	LinkedQuestion(id uuid.UUID) (models.Question, bool)
}

// Sink receives the engine's events. Subscribed once at construction.
type Sink interface {
	ScoreChanged()
	Feedback(team int, fb models.Feedback)
	LinkedQuestionStarted(team int, question models.Question)
}

// Engine holds every team's ledger for one room. All methods must be called
// from the room's serialized queue.
type Engine struct {
	state State
	sink  Sink

	scores    map[int]map[uuid.UUID]models.ScoreEntry
	turn      int
	outOfTime bool
	startedAt time.Time
}

// NewEngine creates an engine. startedAt stamps checkpoint records.
func NewEngine(state State, sink Sink, startedAt time.Time) *Engine {
	return &Engine{
		state:     state,
		sink:      sink,
		scores:    make(map[int]map[uuid.UUID]models.ScoreEntry),
		startedAt: startedAt,
	}
}

// AddTeam opens an empty ledger for a team. Rejoining keeps the old ledger.
func (e *Engine) AddTeam(team int) {
	if _, ok := e.scores[team]; !ok {
		e.scores[team] = make(map[uuid.UUID]models.ScoreEntry)
	}
}

// TeamScore returns a team's slot and ledger total.
func (e *Engine) TeamScore(team int) models.TeamScore {
	var total float64
	for _, entry := range e.scores[team] {
		total += entry.Score
	}
	return models.TeamScore{Team: team, Score: total}
}

// TeamScores returns the totals of all currently connected teams.
func (e *Engine) TeamScores() []models.TeamScore {
	teams := e.state.Teams()
	scores := make([]models.TeamScore, len(teams))
	for i, team := range teams {
		scores[i] = e.TeamScore(team)
	}
	return scores
}

// Turn returns the team whose turn it is. The counter is monotonic; the
// modulo over the connected teams is applied here, on read.
func (e *Engine) Turn() (int, bool) {
	teams := e.state.Teams()
	if len(teams) == 0 {
		return 0, false
	}
	return teams[e.turn%len(teams)], true
}

// UpdateTurn advances the turn counter.
func (e *Engine) UpdateTurn() {
	e.turn++
}

// Chain returns the active question and its linked questions, following
// references until one fails to resolve or repeats.
func (e *Engine) Chain() []models.Question {
	var chain []models.Question
	seen := make(map[uuid.UUID]bool)

	current, ok := e.state.ActiveQuestion()
	for ok && !seen[current.ID] {
		chain = append(chain, current)
		seen[current.ID] = true
		if current.LinkedQuestion == nil {
			break
		}
		current, ok = e.state.LinkedQuestion(*current.LinkedQuestion)
	}
	return chain
}

// ActiveQuestionFor returns the team's position in the active chain: the
// first question in it the team has not answered. Teams sit at different
// depths since a correct answer reveals the next hop to that team alone.
func (e *Engine) ActiveQuestionFor(team int) (models.Question, bool) {
	for _, q := range e.Chain() {
		if _, answered := e.scores[team][q.ID]; !answered {
			return q, true
		}
	}
	return models.Question{}, false
}

// Correct grades a team's submission against their position in the active
// chain. Late, duplicate, or out-of-place submissions are dropped silently;
// at most one ledger entry is written per call.
func (e *Engine) Correct(team int, sub models.Submission) {
	active, ok := e.state.ActiveQuestion()
	if !ok {
		return
	}
	target, ok := e.ActiveQuestionFor(team)
	if !ok {
		return
	}
	e.updateScore(team, sub, target, target.ID != active.ID)
}

// updateScore grades exactly one question for one team and writes the
// ledger entry. The adjustments apply only on the chain root: the turn
// holder earns +1 for the first correct answer, and whoever closes the
// round (every connected team has now answered) loses 1 if correct.
func (e *Engine) updateScore(team int, sub models.Submission, original models.Question, linked bool) {
	if e.outOfTime {
		return
	}
	ledger, ok := e.scores[team]
	if !ok {
		return
	}
	if _, answered := ledger[original.ID]; answered {
		return
	}

	correct := Grade(sub, original)
	var points float64
	if correct {
		points = original.Points
	}

	if !linked && correct {
		answeredBefore, correctBefore := 0, 0
		for _, other := range e.scores {
			if entry, ok := other[original.ID]; ok {
				answeredBefore++
				if entry.Correct {
					correctBefore++
				}
			}
		}
		if holder, ok := e.Turn(); ok && team == holder && correctBefore == 0 {
			points++
		}
		if answeredBefore == len(e.state.Teams())-1 {
			points--
		}
	}

	ledger[original.ID] = models.ScoreEntry{Theme: original.Theme, Score: points, Correct: correct}
	e.sink.ScoreChanged()

	fb := BuildFeedback(sub, original)
	fb.Positive = correct
	e.sink.Feedback(team, fb)

	if correct && original.LinkedQuestion != nil {
		if next, ok := e.state.LinkedQuestion(*original.LinkedQuestion); ok {
			e.sink.LinkedQuestionStarted(team, next)
		}
	}
}

// TeamsAnswered counts the teams holding a ledger entry for the chain root.
func (e *Engine) TeamsAnswered() int {
	active, ok := e.state.ActiveQuestion()
	if !ok {
		return 0
	}
	count := 0
	for _, ledger := range e.scores {
		if _, answered := ledger[active.ID]; answered {
			count++
		}
	}
	return count
}

// CancelQuestion removes every ledger entry, for every team, for every
// question in the active chain: the exact inverse of the scoring done for
// that chain.
func (e *Engine) CancelQuestion() {
	for _, q := range e.Chain() {
		for _, ledger := range e.scores {
			delete(ledger, q.ID)
		}
	}
	e.sink.ScoreChanged()
}

// LeadingTeams returns the teams tied for the highest total. Totals below
// zero never lead; ties are preserved.
func (e *Engine) LeadingTeams() []int {
	teams := make([]int, 0, len(e.scores))
	for team := range e.scores {
		teams = append(teams, team)
	}
	sort.Ints(teams)

	var leaders []int
	best := 0.0
	for _, team := range teams {
		total := e.TeamScore(team).Score
		if total > best {
			best = total
			leaders = []int{team}
		} else if total == best {
			leaders = append(leaders, team)
		}
	}
	return leaders
}

// TimeOut latches the room as out of time; submissions against the current
// question are dropped from here on.
func (e *Engine) TimeOut() {
	e.outOfTime = true
}

// EndQuestion clears the out-of-time latch for the next question.
func (e *Engine) EndQuestion() {
	e.outOfTime = false
}

// Record snapshots the ledgers for checkpointing.
func (e *Engine) Record(id uuid.UUID, gameID string) models.SessionRecord {
	scores := make(map[int]map[uuid.UUID]models.ScoreEntry, len(e.scores))
	for team, ledger := range e.scores {
		entries := make(map[uuid.UUID]models.ScoreEntry, len(ledger))
		for qid, entry := range ledger {
			entries[qid] = entry
		}
		scores[team] = entries
	}
	return models.SessionRecord{ID: id, GameID: gameID, Scores: scores, StartedAt: e.startedAt}
}

// CanDiscard reports whether no team has answered anything.
func (e *Engine) CanDiscard() bool {
	for _, ledger := range e.scores {
		if len(ledger) > 0 {
			return false
		}
	}
	return true
}
