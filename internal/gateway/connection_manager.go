package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/events"
)

// ConnectionManager holds the WebSocket connections of every room and fans
// game events out to them.
type ConnectionManager struct {
	roomConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan *events.GameEvent
}

// Connection is one client socket in a room.
type Connection struct {
	ID      uuid.UUID
	Room    string
	Admin   bool
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// team is the slot the connection claimed, 0 before teamChoice.
	// Guarded by the manager's mutex; the read pump writes it while the
	// broadcast loop filters on it.
	team int

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds socket tuning knobs.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan *events.GameEvent, 1000),
	}
}

// Start processes broadcast events until the context ends.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case evt := <-cm.broadcastCh:
			cm.handleBroadcast(evt)
		}
	}
}

// Deliver queues an event for fan-out. Drops when the buffer is full rather
// than blocking the caller.
func (cm *ConnectionManager) Deliver(evt *events.GameEvent) {
	select {
	case cm.broadcastCh <- evt:
	default:
		log.Warn().Str("room", evt.Room).Str("event_type", string(evt.Type)).Msg("broadcast channel full, dropping event")
	}
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.roomConnections[conn.Room] == nil {
		cm.roomConnections[conn.Room] = make(map[*Connection]bool)
	}
	cm.roomConnections[conn.Room][conn] = true
	log.Debug().
		Str("connection_id", conn.ID.String()).
		Str("room", conn.Room).
		Int("total_connections", len(cm.roomConnections[conn.Room])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	connections, exists := cm.roomConnections[conn.Room]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(cm.roomConnections, conn.Room)
	}
	log.Info().
		Str("connection_id", conn.ID.String()).
		Str("room", conn.Room).
		Msg("connection unregistered")
}

// setTeam records the slot a connection claimed.
func (cm *ConnectionManager) setTeam(conn *Connection, team int) {
	cm.mu.Lock()
	conn.team = team
	cm.mu.Unlock()
}

// handleBroadcast sends an event to its targets: one connection, one team's
// connection, or the whole room.
func (cm *ConnectionManager) handleBroadcast(evt *events.GameEvent) {
	cm.mu.RLock()
	connections, exists := cm.roomConnections[evt.Room]
	if !exists {
		cm.mu.RUnlock()
		return
	}
	var targets []*Connection
	for conn := range connections {
		if evt.Conn != uuid.Nil && conn.ID != evt.Conn {
			continue
		}
		if evt.Team != 0 && conn.team != evt.Team {
			continue
		}
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			log.Warn().
				Str("connection_id", conn.ID.String()).
				Msg("connection send buffer full, closing connection")
			cm.unregister(conn)
			conn.Conn.Close()
		}
	}
}

// Stats returns connection counts per room.
func (cm *ConnectionManager) Stats() map[string]any {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	total := 0
	rooms := make(map[string]int)
	for room, connections := range cm.roomConnections {
		total += len(connections)
		rooms[room] = len(connections)
	}
	return map[string]any{
		"total_connections": total,
		"active_rooms":      len(cm.roomConnections),
		"room_connections":  rooms,
	}
}

// writePump pushes queued messages and pings to the socket.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID.String()).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump reads client messages and hands them to the dispatcher until the
// socket closes.
func (c *Connection) readPump(dispatch func(*Connection, []byte), closed func(*Connection)) {
	defer func() {
		closed(c)
		c.Manager.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID.String()).Msg("unexpected WebSocket close")
			}
			break
		}
		dispatch(c, message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
