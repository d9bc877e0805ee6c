// Package relay moves game events onto the message bus. Sessions publish
// fire-and-forget; the gateway consumes the stream and fans out to sockets.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/game/events"
)

const (
	// StreamName is the JetStream stream holding game events.
	StreamName = "GAME_EVENTS"
	// SubjectPrefix is the subject root; one subject per room.
	SubjectPrefix = "game.events"
)

// Config holds NATS connection settings for the relay.
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	StreamMaxAge  time.Duration
}

// DefaultConfig returns relay defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		StreamMaxAge:  24 * time.Hour,
	}
}

// Publisher implements the session event sink over JetStream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects to NATS and ensures the game events stream exists.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ".>"},
		MaxAge:   cfg.StreamMaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends an event to the room's subject. Errors are logged, not
// returned; the engine treats broadcasting as fire-and-forget.
func (p *Publisher) Publish(evt *events.GameEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("room", evt.Room).Msg("failed to marshal game event")
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, evt.Room)
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Str("event_type", string(evt.Type)).Msg("failed to publish game event")
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
