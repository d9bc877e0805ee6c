package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/session"
	"github.com/Robinsstudio/PIX-L/internal/models"
)

// ClientMessage is the envelope of every message a client sends.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client message types.
const (
	MsgTeamChoice            = "team_choice"
	MsgSelectQuestion        = "select_question"
	MsgSubmit                = "submit"
	MsgStop                  = "stop"
	MsgCancel                = "cancel"
	MsgConfirmStopQuestion   = "confirm_stop_question"
	MsgConfirmStopSession    = "confirm_stop_session"
	MsgConfirmCancelQuestion = "confirm_cancel_question"
)

type teamChoicePayload struct {
	Team int `json:"team"`
}

type selectQuestionPayload struct {
	Index int `json:"index"`
}

// Handler upgrades HTTP requests to room sockets and routes client
// messages into the session registry.
type Handler struct {
	manager        *ConnectionManager
	registry       *session.Registry
	authorizeAdmin func(r *http.Request) bool
}

// NewHandler creates a gateway handler. authorizeAdmin decides whether a
// joining request gets admin rights; authentication itself lives outside
// the gateway.
func NewHandler(manager *ConnectionManager, registry *session.Registry, authorizeAdmin func(r *http.Request) bool) *Handler {
	if authorizeAdmin == nil {
		authorizeAdmin = func(*http.Request) bool { return false }
	}
	return &Handler{manager: manager, registry: registry, authorizeAdmin: authorizeAdmin}
}

// RegisterRoutes mounts the gateway endpoints.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGame)
	mux.HandleFunc("/api/sessions", h.HandleActiveSessions)
}

// HandleGame joins a client to a room. The session is created on the first
// join of its room; a room whose game cannot be loaded is refused.
func (h *Handler) HandleGame(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		http.Error(w, "missing room parameter", http.StatusBadRequest)
		return
	}
	admin := h.authorizeAdmin(r)

	sess, err := h.registry.GetOrCreate(r.Context(), room)
	if err != nil {
		log.Warn().Err(err).Str("room", room).Msg("refusing join")
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	ws, err := h.manager.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	conn := &Connection{
		ID:          uuid.New(),
		Room:        room,
		Admin:       admin,
		Conn:        ws,
		Send:        make(chan []byte, 256),
		Manager:     h.manager,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	h.manager.register(conn)

	go conn.writePump()
	go conn.readPump(h.dispatch, func(c *Connection) {
		if s, ok := h.registry.Get(c.Room); ok {
			s.Disconnect(c.ID)
		}
	})

	sess.Join(conn.ID, admin)

	log.Info().
		Str("connection_id", conn.ID.String()).
		Str("room", room).
		Bool("admin", admin).
		Msg("WebSocket connection established")
}

// HandleActiveSessions lists the live sessions.
func (h *Handler) HandleActiveSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.registry.Active()); err != nil {
		log.Error().Err(err).Msg("failed to encode active sessions")
	}
}

// dispatch routes one client message to its session. Unknown or malformed
// messages are dropped; a burst of garbage must not take a room down.
func (h *Handler) dispatch(c *Connection, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Err(err).Str("connection_id", c.ID.String()).Msg("dropping malformed client message")
		return
	}

	sess, ok := h.registry.Get(c.Room)
	if !ok {
		return
	}

	switch msg.Type {
	case MsgTeamChoice:
		var payload teamChoicePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		if sess.TeamChoice(c.ID, payload.Team) {
			h.manager.setTeam(c, payload.Team)
		}
	case MsgSelectQuestion:
		var payload selectQuestionPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		sess.SelectQuestion(c.ID, payload.Index)
	case MsgSubmit:
		var sub models.Submission
		if err := json.Unmarshal(msg.Data, &sub); err != nil {
			return
		}
		sess.Submit(c.ID, sub)
	case MsgStop:
		sess.Stop(c.ID)
	case MsgCancel:
		sess.Cancel(c.ID)
	case MsgConfirmStopQuestion:
		sess.ConfirmStopQuestion(c.ID)
	case MsgConfirmStopSession:
		sess.ConfirmStopSession(c.ID)
	case MsgConfirmCancelQuestion:
		sess.ConfirmCancelQuestion(c.ID)
	default:
		log.Debug().Str("type", msg.Type).Str("connection_id", c.ID.String()).Msg("unknown client message type")
	}
}
