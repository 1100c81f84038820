package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Up applies all pending migrations.
func Up(dbURL, dir string, log *slog.Logger) error {
	return Run(context.Background(), dbURL, dir, "up", log)
}

// Run executes a goose command (up, down, status, redo, version, ...)
// against the database. Errors are returned, never fatal.
func Run(ctx context.Context, dbURL, dir, command string, log *slog.Logger, args ...string) error {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("migrations: open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("migrations: database close", "err", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	log.Info("running database migrations", "dir", dir, "command", command)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("migrations: goose %s: %w", command, err)
	}
	log.Info("database migrations done", "command", command)
	return nil
}
