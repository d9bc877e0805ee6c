package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/session"
)

// Service ties the gateway together: the WebSocket connection manager, the
// JetStream event consumer, and the client message handler.
type Service struct {
	connectionManager *ConnectionManager
	eventConsumer     *EventConsumer
	handler           *Handler
}

// Config holds gateway configuration.
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
	AuthorizeAdmin   func(r *http.Request) bool
}

// DefaultConfig returns gateway defaults.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// NewService creates the gateway service.
func NewService(config Config, registry *session.Registry) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig)
	ec, err := NewEventConsumer(cm, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	return &Service{
		connectionManager: cm,
		eventConsumer:     ec,
		handler:           NewHandler(cm, registry, config.AuthorizeAdmin),
	}, nil
}

// Start runs the gateway until the context ends.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway")

	go s.connectionManager.Start(ctx)
	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("game gateway shutting down")
	return s.eventConsumer.Stop()
}

// RegisterRoutes mounts the gateway's HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}

// Stats returns connection statistics.
func (s *Service) Stats() map[string]any {
	return s.connectionManager.Stats()
}
