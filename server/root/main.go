package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"casevault/pkg/auth"
	"casevault/pkg/config"
	"casevault/pkg/llm"
	"casevault/pkg/llm/ollama"
	"casevault/pkg/x"
	repositories "casevault/server/repository"
	interfaces "casevault/server/repository/interface"
	"casevault/server/route"
	"casevault/server/route/oauth2"
)

// newCORS initializes CORS settings for the server. The browser
// frontend lives on a different origin than the API.
func newCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
}

// main is the entry point of the application.
// It sets up logging and runs the main application logic.
func main() {
	// Initialize structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic
// It loads configuration, sets up the server, and handles graceful shutdown
func run() error {
	// Load environment variables
	if err := x.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	env, err := x.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Application started", "port", env.ServerPort)

	// Set up a channel to handle exit signals
	exitChan := make(chan os.Signal, 1)
	signal.Notify(exitChan, syscall.SIGINT, syscall.SIGTERM)

	// Create the repository with DB configuration
	repo, err := repositories.GetRepository(env.Database.ToDbConnectionUri(), env.Database.PoolMaxConns)
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	slog.Info("Database repository initialized")

	registry, err := buildLLMRegistry(env)
	if err != nil {
		return fmt.Errorf("failed to set up LLM providers: %w", err)
	}

	minter := auth.NewTokenMinter(env.Auth.APIKeySecret)

	// Set up HTTP server
	mux := http.NewServeMux()
	if err := setupHandlers(mux, env, repo, registry, minter); err != nil {
		return fmt.Errorf("failed to set up handlers: %w", err)
	}

	// Add Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Initialize HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%v", env.ServerPort),
		Handler:           newCORS(env.AllowedOrigins).Handler(mux),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}

	// Start the server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	// Wait for exit signal or server error
	select {
	case <-exitChan:
		slog.Info("Shutdown signal received, shutting down server...")
	case err := <-serverErrChan:
		return err
	}

	// Graceful shutdown
	if err := shutdownServer(srv); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	slog.Info("HTTP server shut down gracefully")
	return nil
}

// buildLLMRegistry registers one provider per configured LLM service.
func buildLLMRegistry(env config.Config) (*llm.Registry, error) {
	registry := llm.NewRegistry()
	for name, model := range env.LLM.Providers {
		switch name {
		case ollama.PROVIDER_NAME:
			if err := registry.Register(ollama.New(env.LLM.OllamaBaseURL, model)); err != nil {
				return nil, err
			}
			slog.Info("LLM provider registered", "provider", name, "model", model)
		default:
			slog.Warn("Unknown LLM provider, skipping", "provider", name)
		}
	}
	return registry, nil
}

// setupHandlers configures the HTTP handlers for the server.
// The REST API is served by gin; the OIDC login flow is mounted
// alongside it when an identity provider is configured.
func setupHandlers(mux *http.ServeMux, env config.Config, repo interfaces.CaseStoreInterface, registry *llm.Registry, minter *auth.TokenMinter) error {
	server := route.NewServer(env, repo, registry, minter)
	mux.Handle("/", server.Router())

	if env.Auth.ClientID != "" {
		authServer, err := oauth2.NewAuthServer(env.Auth, repo.UserRepo(), minter)
		if err != nil {
			return fmt.Errorf("failed to create auth server: %w", err)
		}
		mux.HandleFunc("/auth/login", authServer.LoginHandler)
		mux.HandleFunc("/auth/callback", authServer.AuthCodeCallbackHandler)
		mux.HandleFunc("/auth/logout", authServer.LogoutHandler)
		slog.Info("OIDC login enabled", "provider", env.Auth.Provider)
	}

	slog.Info("Handlers set up successfully")
	return nil
}

// shutdownServer gracefully shuts down the HTTP server
// It waits for ongoing requests to complete before shutting down
func shutdownServer(srv *http.Server) error {
	slog.Info("Initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	slog.Info("Server shutdown completed")
	return nil
}
