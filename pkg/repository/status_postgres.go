package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

type postgresStatusRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStatusRepository keeps the bot status in the single-row bot_status table.
func NewPostgresStatusRepository(db *sql.DB) *postgresStatusRepository {
	return &postgresStatusRepository{db: db, now: time.Now}
}

func (p *postgresStatusRepository) Init(ctx context.Context) error {
	const query = `
		INSERT INTO bot_status (id, enabled, last_restart)
		VALUES (1, TRUE, $1)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := p.db.ExecContext(ctx, query, p.now()); err != nil {
		return fmt.Errorf("initializing bot status: %w", err)
	}
	return nil
}

func (p *postgresStatusRepository) Read(ctx context.Context) (domain.BotStatus, error) {
	const query = `
		SELECT enabled, last_restart, last_update
		FROM bot_status
		WHERE id = 1
	`

	var (
		status     domain.BotStatus
		lastUpdate sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, query).Scan(&status.Enabled, &status.LastRestart, &lastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultBotStatus(p.now()), nil
	}
	if err != nil {
		return domain.BotStatus{}, fmt.Errorf("%w: fetching bot status: %w", domain.ErrStoreRead, err)
	}

	if lastUpdate.Valid {
		status.LastUpdate = &lastUpdate.Time
	}
	return status, nil
}

func (p *postgresStatusRepository) Write(ctx context.Context, status domain.BotStatus) error {
	const query = `
		INSERT INTO bot_status (id, enabled, last_restart, last_update)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET
			enabled = EXCLUDED.enabled,
			last_restart = EXCLUDED.last_restart,
			last_update = EXCLUDED.last_update
	`

	var lastUpdate sql.NullTime
	if status.LastUpdate != nil {
		lastUpdate = sql.NullTime{Time: *status.LastUpdate, Valid: true}
	}

	if _, err := p.db.ExecContext(ctx, query, status.Enabled, status.LastRestart, lastUpdate); err != nil {
		return fmt.Errorf("saving bot status: %w", err)
	}
	return nil
}
