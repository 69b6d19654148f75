package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

type statusGate struct {
	store       StatusReader
	bypassToken string
}

// NewStatusGate lets messages through while the bot is enabled. A message
// containing bypassToken passes even when the bot is disabled.
func NewStatusGate(store StatusReader, bypassToken string) *statusGate {
	return &statusGate{store: store, bypassToken: bypassToken}
}

func (g *statusGate) Allow(ctx context.Context, text string) bool {
	status, err := g.store.Read(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reading bot status failed, assuming enabled", logger.Err(err))
		return true
	}
	if status.Enabled {
		return true
	}
	return g.bypassToken != "" && strings.Contains(text, g.bypassToken)
}
