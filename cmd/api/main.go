package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/duetlabs/duet/backend/internal/config"
	"github.com/duetlabs/duet/backend/internal/handler"
	"github.com/duetlabs/duet/backend/internal/handler/live"
	"github.com/duetlabs/duet/backend/internal/model/question"
	analysisservice "github.com/duetlabs/duet/backend/internal/service/analysis"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/internal/service/llm"
	"github.com/duetlabs/duet/backend/internal/service/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupLogging()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	deck := question.NewMemoryDeck(question.Seed())

	hub := live.NewHub()
	gameSvc := gameservice.NewService(func(ev gameservice.Event) {
		hub.Publish(ev.SessionID, ev)
	})

	analysisSvc, err := buildAnalysisService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize analysis pipeline")
	}
	if analysisSvc == nil {
		log.Warn().Msg("model credentials not configured, analysis routes disabled")
	} else {
		log.Info().Str("model_version", cfg.Analysis.ModelVersion).Msg("analysis pipeline ready")
	}

	router := handler.NewRouter(deck, gameSvc, analysisSvc, hub)

	startServer(ctx, cfg.Server, router)
}

// buildAnalysisService wires the two-stage pipeline when model credentials
// are present. A missing model is a degraded mode, not a startup failure.
func buildAnalysisService(ctx context.Context, cfg *config.Config) (*analysisservice.Service, error) {
	if !cfg.AI.Enabled() {
		return nil, nil
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewService(ctx, chatModel, llm.Config{
		Timeout:      cfg.Analysis.Timeout,
		MaxRetries:   cfg.Analysis.MaxRetries,
		RetryBackoff: cfg.Analysis.RetryBackoff,
	})
	if err != nil {
		return nil, err
	}

	engine, err := prompt.NewEngine()
	if err != nil {
		return nil, err
	}

	return analysisservice.NewService(completer, prompt.NewBuilder(engine), analysisservice.Config{
		ModelVersion:       cfg.Analysis.ModelVersion,
		Reprompt:           cfg.Analysis.Reprompt,
		MaxConcurrentCards: cfg.Analysis.MaxConcurrentCards,
	}), nil
}

func setupLogging() {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("LOG_FORMAT") != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("duet backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
