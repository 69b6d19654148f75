package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/uptrace/bun/driver/pgdriver"
)

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_bot_status",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS bot_status (
					id           INT PRIMARY KEY,
					enabled      BOOLEAN     NOT NULL DEFAULT TRUE,
					last_restart TIMESTAMPTZ NOT NULL,
					last_update  TIMESTAMPTZ NULL
				)`,
			},
			Down: []string{`DROP TABLE IF EXISTS bot_status`},
		},
	},
}

// NewPostgres opens the database behind dsn and applies pending migrations.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(5*time.Second),
	))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	slog.Info("postgres migrations applied", "count", n)

	return db, nil
}
