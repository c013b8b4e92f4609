package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chat-ai-api/internal/config"
	"chat-ai-api/internal/handler"
	"chat-ai-api/internal/service/ai"
	chatservice "chat-ai-api/internal/service/chat"
	"chat-ai-api/internal/service/identity"
	"chat-ai-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("failed to initialize database schema: %v", err)
	}

	// Initialize the chat-identity provider client
	var provider identity.Provider
	if cfg.Stream.Enabled() {
		streamClient, err := identity.NewStreamClient(cfg.Stream.APIKey, cfg.Stream.APISecret, cfg.Stream.BaseURL)
		if err != nil {
			log.Fatalf("failed to initialize chat provider client: %v", err)
		}
		provider = streamClient
		log.Println("chat provider client initialized successfully")
	} else {
		log.Println("warning: STREAM_API_KEY/STREAM_API_SECRET not set, registration and chat will fail")
	}

	// Initialize the completion provider
	var completer chatservice.Completer
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize completion service: %v", err)
			log.Println("continuing without completion functionality")
		} else {
			completer = aiService
			log.Println("completion service initialized successfully")
		}
	} else {
		log.Println("warning: ARK_API_KEY/ARK_MODEL not set, chat replies will fail")
	}

	chatSvc := chatservice.NewService(db, provider, completer)
	router := handler.NewRouter(chatSvc, db)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat-ai-api listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
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
