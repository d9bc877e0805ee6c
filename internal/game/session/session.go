// Package session wires one room's components together: the selection state
// machine, the countdown timer, and the scoring engine, behind a single
// serialized queue of mutations.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/catalog"
	"github.com/Robinsstudio/PIX-L/internal/game/events"
	"github.com/Robinsstudio/PIX-L/internal/game/pool"
	"github.com/Robinsstudio/PIX-L/internal/game/room"
	"github.com/Robinsstudio/PIX-L/internal/game/score"
	"github.com/Robinsstudio/PIX-L/internal/game/timer"
	"github.com/Robinsstudio/PIX-L/internal/models"
)

const checkpointTimeout = 5 * time.Second

// Sink receives the session's outbound events. Publishing must not block;
// all external effects are fire-and-forget from the engine's point of view.
type Sink interface {
	Publish(evt *events.GameEvent)
}

// Checkpointer persists a snapshot of the session's ledgers.
type Checkpointer interface {
	SaveSession(ctx context.Context, rec models.SessionRecord) error
}

// Config carries a session's collaborators.
type Config struct {
	Room       string
	Name       string
	Catalog    *catalog.Catalog
	Sink       Sink
	Checkpoint Checkpointer
	Clock      clockwork.Clock
	OnStop     func(room string)
}

// Session is one live game room. Every mutation — admin actions, team
// submissions, timer ticks — runs on the ops queue, one at a time, so the
// at-most-once ledger-write invariant holds without locks and racing events
// are applied in dequeue order.
type Session struct {
	id      uuid.UUID
	name    string
	room    string
	catalog *catalog.Catalog
	keeper  *room.Keeper
	pool    *pool.Pool
	engine  *score.Engine
	timer   *timer.Timer
	sink    Sink
	chk     Checkpointer
	clock   clockwork.Clock
	onStop  func(room string)

	ops       chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a session and starts its queue.
func New(cfg Config) *Session {
	s := &Session{
		id:      uuid.New(),
		name:    cfg.Name,
		room:    cfg.Room,
		catalog: cfg.Catalog,
		keeper:  room.NewKeeper(cfg.Room),
		sink:    cfg.Sink,
		chk:     cfg.Checkpoint,
		clock:   cfg.Clock,
		onStop:  cfg.OnStop,
		ops:     make(chan func(), 64),
		done:    make(chan struct{}),
	}
	s.pool = pool.New(cfg.Catalog.Count(), s.keeper, (*poolObserver)(s))
	s.engine = score.NewEngine((*roomState)(s), (*scoreSink)(s), cfg.Clock.Now())
	s.timer = timer.New(cfg.Clock, s.dispatch)
	s.timer.OnCount(func(seconds int) {
		s.publish(events.TypeCount, events.CountPayload{Seconds: seconds})
	})
	s.timer.OnOutOfTime(s.engine.TimeOut)

	go s.run()
	return s
}

// Name returns the game's display name.
func (s *Session) Name() string { return s.name }

// Room returns the room id.
func (s *Session) Room() string { return s.room }

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.ops:
			fn()
		}
	}
}

// do runs fn on the queue and waits for it. Once it returns, no later
// mutation can observe state from before fn.
func (s *Session) do(fn func()) {
	ran := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(ran) }:
		<-ran
	case <-s.done:
	}
}

// dispatch runs fn on the queue without waiting. Timer ticks use this so
// they share the queue with client events.
func (s *Session) dispatch(fn func()) {
	select {
	case s.ops <- fn:
	case <-s.done:
	}
}

// Close stops the queue. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Join registers a connection and sends it the board snapshot. Admins also
// receive the in-flight question and turn, so a reload lands mid-game.
func (s *Session) Join(conn uuid.UUID, admin bool) {
	s.do(func() {
		if admin {
			s.keeper.AddAdmin(conn)
		}
		s.publishToConn(conn, events.TypeInit, events.InitPayload{
			Questions: s.catalog.Cards(),
			Selection: events.SelectionPayload{Selected: s.pool.VisibleQuestions(), Unselected: []int{}},
			Teams:     s.engine.TeamScores(),
			MaxPoints: s.catalog.MaxPoints(),
		})
		if !admin {
			return
		}
		if q, ok := s.activeQuestion(); ok {
			view := q.View()
			s.publishToConn(conn, events.TypeQuestionStart, events.QuestionStartPayload{Question: &view})
		}
		if team, ok := s.engine.Turn(); ok {
			s.publishToConn(conn, events.TypeTurn, events.TurnPayload{Team: team})
		}
	})
}

// TeamChoice claims a slot for a connection. A slot already taken is
// rejected and reported false.
func (s *Session) TeamChoice(conn uuid.UUID, team int) bool {
	var ok bool
	s.do(func() {
		if !s.keeper.AddTeam(conn, team) {
			return
		}
		ok = true
		s.engine.AddTeam(team)
		s.broadcastTeamChange()

		var view *models.QuestionView
		if q, has := s.engine.ActiveQuestionFor(team); has {
			v := q.View()
			view = &v
		}
		s.publishToConn(conn, events.TypeQuestionStart, events.QuestionStartPayload{Question: view})
		s.broadcastTurn()
	})
	return ok
}

// Disconnect drops a connection and discards the session if nothing worth
// keeping remains.
func (s *Session) Disconnect(conn uuid.UUID) {
	s.do(func() {
		team := s.keeper.RemoveConn(conn)
		if team != 0 {
			s.broadcastTeamChange()
			s.broadcastTurn()
		}
		if s.keeper.CanDiscard() && s.pool.CanDiscard() && s.engine.CanDiscard() {
			log.Info().Str("room", s.room).Msg("discarding idle session")
			s.stop()
		}
	})
}

// SelectQuestion reveals or starts a question. Admin only.
func (s *Session) SelectQuestion(conn uuid.UUID, index int) {
	s.do(func() {
		if !s.keeper.IsAdmin(conn) {
			return
		}
		s.pool.SelectQuestion(index)
	})
}

// Submit grades a team's answer against their position in the active chain.
// From an admin connection it instead previews the submitted question's
// follow-up, so the admin screen can walk the chain.
func (s *Session) Submit(conn uuid.UUID, sub models.Submission) {
	s.do(func() {
		if s.keeper.IsAdmin(conn) {
			s.publishToConn(conn, events.TypeQuestionStart, events.QuestionStartPayload{Question: s.nextQuestionView(sub.QuestionID)})
			return
		}
		if team, ok := s.keeper.Team(conn); ok {
			s.engine.Correct(team, sub)
		}
	})
}

// Stop stops the active question, or the session when no question is
// active. When teams are still missing answers (or questions are still on
// the board) the admin is asked to confirm instead.
func (s *Session) Stop(conn uuid.UUID) {
	s.do(func() {
		if !s.keeper.IsAdmin(conn) {
			return
		}
		if _, active := s.activeQuestion(); active {
			if !s.timer.OutOfTime() && s.engine.TeamsAnswered() < len(s.keeper.Teams()) {
				s.publishToConn(conn, events.TypeConfirmStopQuestion, nil)
			} else {
				s.pool.StopQuestion()
			}
			return
		}
		if s.pool.AllQuestionsAnswered() {
			s.endSession()
		} else {
			s.publishToConn(conn, events.TypeConfirmStopSession, nil)
		}
	})
}

// Cancel rolls back the active question, or hides the last revealed one.
// When some team already answered, the admin is asked to confirm first.
func (s *Session) Cancel(conn uuid.UUID) {
	s.do(func() {
		if !s.keeper.IsAdmin(conn) {
			return
		}
		if _, active := s.activeQuestion(); active {
			if s.engine.TeamsAnswered() > 0 {
				s.publishToConn(conn, events.TypeConfirmCancelQuestion, nil)
			} else {
				s.pool.CancelQuestion()
			}
			return
		}
		s.pool.CancelLastRevealed()
	})
}

// ConfirmStopQuestion stops the active question unconditionally.
func (s *Session) ConfirmStopQuestion(conn uuid.UUID) {
	s.do(func() {
		if s.keeper.IsAdmin(conn) {
			s.pool.StopQuestion()
		}
	})
}

// ConfirmStopSession ends the session unconditionally.
func (s *Session) ConfirmStopSession(conn uuid.UUID) {
	s.do(func() {
		if s.keeper.IsAdmin(conn) {
			s.endSession()
		}
	})
}

// ConfirmCancelQuestion cancels the active question unconditionally.
func (s *Session) ConfirmCancelQuestion(conn uuid.UUID) {
	s.do(func() {
		if s.keeper.IsAdmin(conn) {
			s.pool.CancelQuestion()
		}
	})
}

// endSession tears the room down and salutes the winners.
func (s *Session) endSession() {
	log.Info().Str("room", s.room).Msg("session ended")
	s.stop()
	s.publish(events.TypeGreeting, events.GreetingPayload{Teams: s.engine.LeadingTeams()})
}

// stop removes the session from its registry and halts the queue. Runs on
// the queue itself: once the enclosing op returns, no further mutation of
// this room is possible.
func (s *Session) stop() {
	s.timer.Reset()
	if s.onStop != nil {
		s.onStop(s.room)
	}
	s.Close()
}

func (s *Session) activeQuestion() (models.Question, bool) {
	index := s.keeper.ActiveIndex()
	if index == -1 {
		return models.Question{}, false
	}
	return s.catalog.Question(index)
}

// nextQuestionView resolves the follow-up of the question with the given
// id, falling back to the active question when there is none.
func (s *Session) nextQuestionView(id uuid.UUID) *models.QuestionView {
	q, ok := s.catalog.NextQuestion(id)
	if !ok {
		if q, ok = s.activeQuestion(); !ok {
			return nil
		}
	}
	view := q.View()
	return &view
}

func (s *Session) broadcastTeamChange() {
	s.publish(events.TypeTeamChange, events.TeamChangePayload{Teams: s.engine.TeamScores()})
}

func (s *Session) broadcastTurn() {
	team, _ := s.engine.Turn()
	s.publish(events.TypeTurn, events.TurnPayload{Team: team})
}

func (s *Session) publish(evtType events.Type, payload any) {
	s.emit(&events.GameEvent{Type: evtType}, payload)
}

func (s *Session) publishToTeam(team int, evtType events.Type, payload any) {
	s.emit(&events.GameEvent{Type: evtType, Team: team}, payload)
}

func (s *Session) publishToConn(conn uuid.UUID, evtType events.Type, payload any) {
	s.emit(&events.GameEvent{Type: evtType, Conn: conn}, payload)
}

func (s *Session) emit(evt *events.GameEvent, payload any) {
	evt.ID = uuid.New()
	evt.Room = s.room
	evt.Timestamp = s.clock.Now()
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("room", s.room).Str("event_type", string(evt.Type)).Msg("failed to marshal event payload")
			return
		}
		evt.Data = data
	}
	s.sink.Publish(evt)
}
