package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Robinsstudio/PIX-L/internal/checkpoint"
	"github.com/Robinsstudio/PIX-L/internal/config"
	"github.com/Robinsstudio/PIX-L/internal/game/catalog"
	"github.com/Robinsstudio/PIX-L/internal/game/session"
	"github.com/Robinsstudio/PIX-L/internal/gateway"
	"github.com/Robinsstudio/PIX-L/internal/relay"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	serverCfg, err := config.LoadServer(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	dbCfg := config.PostgresFromEnv()
	natsURL := config.NATSURL()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", natsURL).
		Str("addr", serverCfg.Addr).
		Msg("starting PIX-L server")

	relayCfg := relay.DefaultConfig()
	relayCfg.URL = natsURL
	publisher, err := relay.NewPublisher(ctx, relayCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event relay")
	}
	defer publisher.Close()

	registry := session.NewRegistry(
		catalog.NewRepository(pool),
		publisher,
		checkpoint.NewRepository(pool),
		clockwork.NewRealClock(),
	)
	defer registry.Close()

	gatewayCfg := gateway.DefaultConfig()
	gatewayCfg.JetStreamConfig.URL = natsURL
	gatewayCfg.AuthorizeAdmin = func(r *http.Request) bool {
		return serverCfg.AdminToken != "" && r.URL.Query().Get("token") == serverCfg.AdminToken
	}
	gw, err := gateway.NewService(gatewayCfg, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway")
	}
	go func() {
		if err := gw.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway failed")
		}
	}()

	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   serverCfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    serverCfg.Addr,
		Handler: corsHandler.Handler(mux),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
