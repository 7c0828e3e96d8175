package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"devroots/internal/errors"
	"devroots/internal/infra/persistence/postgres/migrations"
)

// Migrate applies every pending embedded migration, including the role seed.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseSlogLogger{logger: logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

// gooseSlogLogger routes goose output through slog.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l *gooseSlogLogger) Printf(format string, v ...any) {
	l.logger.Info("goose", slog.String("message", fmt.Sprintf(format, v...)))
}

// Fatalf logs without exiting the process.
func (l *gooseSlogLogger) Fatalf(format string, v ...any) {
	l.logger.Error("goose", slog.String("message", fmt.Sprintf(format, v...)))
}
