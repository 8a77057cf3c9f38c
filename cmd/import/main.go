/*
main.go - Legacy data import

PURPOSE:
  Copies the collections of the previous back office from Redis into the
  SQLite database, or with -export writes the database back to Redis in
  the legacy shape.

COMMAND-LINE FLAGS:
  -db      SQLite database path (default: BACKOFFICE_DB_PATH)
  -export  Write SQLite -> Redis instead of Redis -> SQLite

ENVIRONMENT:
  BACKOFFICE_REDIS_ADDR, BACKOFFICE_REDIS_PASSWORD, BACKOFFICE_REDIS_DB,
  BACKOFFICE_REDIS_PREFIX

EXAMPLES:
  ./import -db=./data/backoffice.db
  BACKOFFICE_REDIS_PREFIX=parrilla: ./import -export

SEE ALSO:
  - store/legacy/importer.go: Import / Export
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parrilla/backoffice/config"
	"github.com/parrilla/backoffice/store/legacy"
	"github.com/parrilla/backoffice/store/sqlite"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	export := flag.Bool("export", false, "write the database back to Redis")
	flag.Parse()

	logger := cfg.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *dbPath, *export, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, dbPath string, export bool, logger *slog.Logger) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	im := legacy.NewImporter(legacy.NewRedisBlobStore(client, cfg.Redis.Prefix), store, store, logger)

	direction := "import"
	move := im.Import
	if export {
		direction = "export"
		move = im.Export
	}
	report, err := move(ctx)
	if err != nil {
		return err
	}
	logger.Info(direction+" finished", "db", dbPath, "redis", cfg.Redis.Addr, "collections", report)
	return nil
}
