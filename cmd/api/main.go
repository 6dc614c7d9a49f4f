package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mueblesrd/support-rag/internal/auth"
	"github.com/mueblesrd/support-rag/internal/chat"
	"github.com/mueblesrd/support-rag/internal/claims"
	"github.com/mueblesrd/support-rag/internal/config"
	"github.com/mueblesrd/support-rag/internal/db"
	apphttp "github.com/mueblesrd/support-rag/internal/http"
	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/logging"
	"github.com/mueblesrd/support-rag/internal/policy"
	"github.com/mueblesrd/support-rag/internal/tickets"
)

func main() {
	logging.Init()

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	prompts, err := llm.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	slog.Info("prompts loaded", "path", cfg.PromptsPath)

	schema, err := os.ReadFile(cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("load openapi schema: %w", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx)
	if err != nil {
		return fmt.Errorf("init gemini client: %w", err)
	}

	retriever := policy.NewRetriever(policy.NewPgRepository(pool), geminiClient)

	chatService := chat.NewService(retriever, geminiClient, prompts)
	claimsService := claims.NewService(retriever, geminiClient, prompts)
	authService := auth.NewService(auth.NewPgRepository(pool))
	ticketService := tickets.NewService(tickets.NewPgRepository(pool))

	h := apphttp.NewHandler(chatService, claimsService, authService, ticketService)
	limiter := apphttp.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := apphttp.NewRouter(h, apphttp.NewAPIDocs(schema), authService, limiter, cfg.AllowOrigin)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
