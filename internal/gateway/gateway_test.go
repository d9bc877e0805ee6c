package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Robinsstudio/PIX-L/internal/game/catalog"
	"github.com/Robinsstudio/PIX-L/internal/game/events"
	"github.com/Robinsstudio/PIX-L/internal/game/session"
	"github.com/Robinsstudio/PIX-L/internal/models"
)

func testConnection(room string, team int) *Connection {
	return &Connection{
		ID:   uuid.New(),
		Room: room,
		Send: make(chan []byte, 16),
		team: team,
	}
}

func received(c *Connection) bool {
	select {
	case <-c.Send:
		return true
	default:
		return false
	}
}

func TestBroadcastTargetsRoom(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	a := testConnection("r1", 0)
	b := testConnection("r1", 2)
	other := testConnection("r2", 0)
	cm.register(a)
	cm.register(b)
	cm.register(other)

	cm.handleBroadcast(&events.GameEvent{Room: "r1", Type: events.TypeTeamChange})

	if !received(a) || !received(b) {
		t.Fatal("room broadcast skipped a connection")
	}
	if received(other) {
		t.Fatal("broadcast leaked into another room")
	}
}

func TestBroadcastTargetsTeam(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	a := testConnection("r1", 1)
	b := testConnection("r1", 2)
	cm.register(a)
	cm.register(b)

	cm.handleBroadcast(&events.GameEvent{Room: "r1", Type: events.TypeFeedback, Team: 2})

	if received(a) {
		t.Fatal("team-targeted event reached another team")
	}
	if !received(b) {
		t.Fatal("team-targeted event never reached its team")
	}
}

func TestBroadcastTargetsConnection(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	a := testConnection("r1", 0)
	b := testConnection("r1", 0)
	cm.register(a)
	cm.register(b)

	cm.handleBroadcast(&events.GameEvent{Room: "r1", Type: events.TypeInit, Conn: a.ID})

	if !received(a) {
		t.Fatal("connection-targeted event never arrived")
	}
	if received(b) {
		t.Fatal("connection-targeted event reached another connection")
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	c := testConnection("r1", 0)
	cm.register(c)
	cm.unregister(c)

	if _, open := <-c.Send; open {
		t.Fatal("send channel still open after unregister")
	}
	// A second unregister of the same connection is a no-op.
	cm.unregister(c)

	stats := cm.Stats()
	if stats["total_connections"] != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

type stubLoader struct{}

func (stubLoader) LoadGame(ctx context.Context, gameID string) (string, *catalog.Catalog, error) {
	q := models.Question{
		ID:     uuid.New(),
		Type:   models.QuestionTypeOpenEnded,
		Points: 1,
		Time:   30,
		Words:  []string{"paris"},
	}
	return "demo", catalog.New([]models.Question{q}, nil), nil
}

type nopSink struct{}

func (nopSink) Publish(*events.GameEvent) {}

func newTestHandler(t *testing.T) (*Handler, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry(stubLoader{}, nopSink{}, nil, clockwork.NewFakeClock())
	t.Cleanup(registry.Close)
	cm := NewConnectionManager(DefaultConnectionConfig())
	return NewHandler(cm, registry, nil), registry
}

func TestDispatchTeamChoice(t *testing.T) {
	h, registry := newTestHandler(t)
	sess, err := registry.GetOrCreate(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	c := testConnection("r1", 0)
	sess.Join(c.ID, false)

	h.dispatch(c, []byte(`{"type":"team_choice","data":{"team":3}}`))
	if c.team != 3 {
		t.Fatalf("connection team = %d, want 3", c.team)
	}

	// A second claim of the same slot must not retag the connection.
	c2 := testConnection("r1", 0)
	h.dispatch(c2, []byte(`{"type":"team_choice","data":{"team":3}}`))
	if c2.team != 0 {
		t.Fatalf("rejected claim still tagged the connection with team %d", c2.team)
	}
}

func TestDispatchDropsGarbage(t *testing.T) {
	h, registry := newTestHandler(t)
	if _, err := registry.GetOrCreate(context.Background(), "r1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	c := testConnection("r1", 0)

	h.dispatch(c, []byte(`not json`))
	h.dispatch(c, []byte(`{"type":"mystery"}`))
	h.dispatch(c, []byte(`{"type":"team_choice","data":"bad"}`))
}

func TestHandleActiveSessions(t *testing.T) {
	h, registry := newTestHandler(t)
	if _, err := registry.GetOrCreate(context.Background(), "r1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleActiveSessions(rec, httptest.NewRequest("GET", "/api/sessions", nil))

	var infos []session.Info
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "demo" || infos[0].URL != "r1" {
		t.Fatalf("sessions = %+v", infos)
	}
}
