package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

func TestFileStatusRepositoryMissingFileDefaultsToEnabled(t *testing.T) {
	repo := NewFileStatusRepository(filepath.Join(t.TempDir(), "bot_status.json"))

	status, err := repo.Read(context.Background())

	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.False(t, status.LastRestart.IsZero())
	assert.Nil(t, status.LastUpdate)
}

func TestFileStatusRepositoryWriteRead(t *testing.T) {
	ctx := context.Background()
	repo := NewFileStatusRepository(filepath.Join(t.TempDir(), "nested", "bot_status.json"))

	restart := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	update := restart.Add(time.Hour)
	require.NoError(t, repo.Write(ctx, domain.BotStatus{Enabled: false, LastRestart: restart, LastUpdate: &update}))

	status, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.True(t, restart.Equal(status.LastRestart))
	require.NotNil(t, status.LastUpdate)
	assert.True(t, update.Equal(*status.LastUpdate))
}

func TestFileStatusRepositoryInitCreatesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bot_status.json")
	repo := NewFileStatusRepository(path)

	require.NoError(t, repo.Init(ctx))
	require.FileExists(t, path)

	require.NoError(t, repo.Write(ctx, domain.BotStatus{Enabled: false, LastRestart: time.Now()}))
	require.NoError(t, repo.Init(ctx))

	status, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.False(t, status.Enabled)
}

func TestFileStatusRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_status.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStatusRepository(path).Read(context.Background())

	assert.ErrorIs(t, err, domain.ErrStoreRead)
}
