/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the restaurant back-office server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, then BACKOFFICE_* variables)
  2. Parse command-line flags (override the environment)
  3. Initialize SQLite store
  4. Create services and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port         HTTP server port (default: BACKOFFICE_PORT or 8080)
  -db           SQLite database path (default: BACKOFFICE_DB_PATH)
                Use ":memory:" for in-memory database
  -issue-token  Print a signed token for the given role and exit
  -user         Subject of the issued token

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/backoffice.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Token for the evening cashier
  BACKOFFICE_JWT_SECRET=s3cret ./server -issue-token=cashier -user=caja1

ENVIRONMENT:
  See config/config.go. Authentication is on with BACKOFFICE_AUTH_ENABLED=true.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parrilla/backoffice/access"
	"github.com/parrilla/backoffice/api"
	"github.com/parrilla/backoffice/config"
	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
	"github.com/parrilla/backoffice/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	issueRole := flag.String("issue-token", "", "print a token for this role and exit")
	user := flag.String("user", "", "subject of the issued token")
	flag.Parse()

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if *issueRole != "" {
		if err := issueToken(cfg, *issueRole, *user); err != nil {
			logger.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *port, *dbPath, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func issueToken(cfg *config.Config, roleName, user string) error {
	if cfg.JWTSecret == "" {
		return errors.New("BACKOFFICE_JWT_SECRET is not set")
	}
	role, err := access.ParseRole(roleName)
	if err != nil {
		return err
	}
	token, err := api.NewAuth(cfg.JWTSecret, cfg.TokenTTL).IssueToken(user, role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(cfg *config.Config, port int, dbPath string, logger *slog.Logger) error {
	// Initialize store
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Initialize services and handler
	handler := api.NewHandler(
		payroll.NewService(store, logger),
		shift.NewService(store, logger),
		finance.NewService(store, logger),
		store,
		logger,
	)

	opts := api.Options{AllowedOrigins: cfg.AllowedOrigins, Logger: logger}
	if cfg.AuthEnabled {
		opts.Auth = api.NewAuth(cfg.JWTSecret, cfg.TokenTTL)
	}
	router := api.NewRouter(handler, opts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", port, "db", dbPath, "auth", cfg.AuthEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
