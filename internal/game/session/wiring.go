package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/events"
	"github.com/Robinsstudio/PIX-L/internal/models"
)

// poolObserver translates selection state machine transitions into room
// effects. All callbacks run on the session queue.
type poolObserver Session

func (o *poolObserver) session() *Session { return (*Session)(o) }

func (o *poolObserver) SelectionChanged(selected, unselected []int) {
	s := o.session()
	if selected == nil {
		selected = []int{}
	}
	if unselected == nil {
		unselected = []int{}
	}
	s.publish(events.TypeQuestionSelection, events.SelectionPayload{Selected: selected, Unselected: unselected})
}

// QuestionStarted makes the index active, starts its countdown, and sends
// everyone the stripped question.
func (o *poolObserver) QuestionStarted(index int) {
	s := o.session()
	q, ok := s.catalog.Question(index)
	if !ok {
		return
	}
	s.keeper.StartQuestion(index)
	s.timer.Count(q.Time)
	view := q.View()
	s.publish(events.TypeQuestionStart, events.QuestionStartPayload{Question: &view})
}

// QuestionCanceled rolls the active chain's ledger entries back. Fires
// before QuestionEnded, while the active pointer still resolves the chain.
func (o *poolObserver) QuestionCanceled() {
	o.session().engine.CancelQuestion()
}

// QuestionDone checkpoints the ledgers and passes the turn. Runs before
// QuestionEnded so the turn bookkeeping still sees the finished question.
func (o *poolObserver) QuestionDone() {
	s := o.session()
	if s.chk != nil {
		rec := s.engine.Record(s.id, s.room)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
			defer cancel()
			if err := s.chk.SaveSession(ctx, rec); err != nil {
				log.Error().Err(err).Str("room", s.room).Msg("failed to checkpoint session")
			}
		}()
	}
	s.engine.UpdateTurn()
	s.broadcastTurn()
}

// QuestionEnded tears the question down: countdown, active pointer, and the
// out-of-time latch all clear before the room hears about it.
func (o *poolObserver) QuestionEnded() {
	s := o.session()
	s.timer.Reset()
	s.keeper.EndQuestion()
	s.engine.EndQuestion()
	s.publish(events.TypeQuestionEnd, nil)
}

// scoreSink forwards scoring engine events to the room.
type scoreSink Session

func (ss *scoreSink) session() *Session { return (*Session)(ss) }

func (ss *scoreSink) ScoreChanged() {
	ss.session().broadcastTeamChange()
}

func (ss *scoreSink) Feedback(team int, fb models.Feedback) {
	ss.session().publishToTeam(team, events.TypeFeedback, fb)
}

// LinkedQuestionStarted surfaces the next hop of a chain to one team alone.
func (ss *scoreSink) LinkedQuestionStarted(team int, question models.Question) {
	view := question.View()
	ss.session().publishToTeam(team, events.TypeQuestionStart, events.QuestionStartPayload{Question: &view})
}

// roomState is the scoring engine's read view over the keeper and catalog.
type roomState Session

func (rs *roomState) Teams() []int {
	return (*Session)(rs).keeper.Teams()
}

func (rs *roomState) ActiveQuestion() (models.Question, bool) {
	return (*Session)(rs).activeQuestion()
}

func (rs *roomState) LinkedQuestion(id uuid.UUID) (models.Question, bool) {
	return (*Session)(rs).catalog.LinkedQuestion(id)
}
