package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/catalog"
)

// Loader fetches a game's catalog by room id.
type Loader interface {
	LoadGame(ctx context.Context, gameID string) (name string, cat *catalog.Catalog, err error)
}

// Info describes a live session.
type Info struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Registry is the process-wide arena of live sessions, keyed by room id.
// A session is created on the first join of its room and removed when it
// ends or its discard predicate fires.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	loader     Loader
	sink       Sink
	checkpoint Checkpointer
	clock      clockwork.Clock
}

// NewRegistry creates an empty registry.
func NewRegistry(loader Loader, sink Sink, checkpoint Checkpointer, clock clockwork.Clock) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		loader:     loader,
		sink:       sink,
		checkpoint: checkpoint,
		clock:      clock,
	}
}

// Get returns the live session for a room, if any.
func (r *Registry) Get(room string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[room]
	return s, ok
}

// GetOrCreate returns the room's session, loading the game and starting a
// new one on first join. An empty catalog is refused up front; the engine
// assumes at least one question.
func (r *Registry) GetOrCreate(ctx context.Context, room string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[room]; ok {
		return s, nil
	}

	name, cat, err := r.loader.LoadGame(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("failed to load game for room %s: %w", room, err)
	}
	if cat.Count() == 0 {
		return nil, fmt.Errorf("game for room %s has no questions", room)
	}

	s := New(Config{
		Room:       room,
		Name:       name,
		Catalog:    cat,
		Sink:       r.sink,
		Checkpoint: r.checkpoint,
		Clock:      r.clock,
		OnStop:     r.remove,
	})
	r.sessions[room] = s
	log.Info().Str("room", room).Str("name", name).Int("questions", cat.Count()).Msg("session created")
	return s, nil
}

// Active lists the live sessions.
func (r *Registry) Active() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, Info{Name: s.Name(), URL: s.Room()})
	}
	return infos
}

// remove drops a room's session and stops its queue.
func (r *Registry) remove(room string) {
	r.mu.Lock()
	s, ok := r.sessions[room]
	delete(r.sessions, room)
	r.mu.Unlock()
	if ok {
		s.Close()
		log.Info().Str("room", room).Msg("session removed")
	}
}

// Close stops every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room, s := range r.sessions {
		s.Close()
		delete(r.sessions, room)
	}
}
