package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thesisflow/backend/internal/auth"
	"github.com/thesisflow/backend/internal/config"
	"github.com/thesisflow/backend/internal/llm"
	"github.com/thesisflow/backend/internal/server"
	"github.com/thesisflow/backend/internal/store"
	"github.com/thesisflow/backend/internal/thesis"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── OpenAI client ────────────────────────────────────────
	if cfg.OpenAIAPIKey == "" {
		log.Printf("warning: OPENAI_API_KEY not set, question generation is disabled")
	}
	llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, sessions)
	thesisHandler := thesis.NewHandler(
		pgStore, pgStore, pgStore,
		llmClient,
		thesis.NewRedisLocker(rdb),
		cfg.OpenAIModel,
		cfg.OpenAIAPIKey != "",
	)

	// ── Router ───────────────────────────────────────────────
	r := server.New(authHandler, thesisHandler, sessions)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
