package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

type fileStatusRepository struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStatusRepository keeps the bot status as a small JSON document.
func NewFileStatusRepository(path string) *fileStatusRepository {
	return &fileStatusRepository{path: path, now: time.Now}
}

// Init writes the default status when the file does not exist yet.
func (f *fileStatusRepository) Init(ctx context.Context) error {
	if _, err := os.Stat(f.path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return f.Write(ctx, domain.DefaultBotStatus(f.now()))
}

func (f *fileStatusRepository) Read(_ context.Context) (domain.BotStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultBotStatus(f.now()), nil
	}
	if err != nil {
		return domain.BotStatus{}, fmt.Errorf("%w: reading status file: %w", domain.ErrStoreRead, err)
	}

	var status domain.BotStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return domain.BotStatus{}, fmt.Errorf("%w: decoding status file: %w", domain.ErrStoreRead, err)
	}
	return status, nil
}

func (f *fileStatusRepository) Write(_ context.Context, status domain.BotStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating status dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing status file: %w", err)
	}
	return nil
}
