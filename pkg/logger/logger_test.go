package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerWritesContextAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelInfo, NoColor: true, MsgPrefix: "| "}))

	ctx := ContextWithChatID(ContextWithUpdateID(context.Background(), 42), 1001)
	log.InfoContext(ctx, "dispatching", "outcome", "sent", Err(errors.New("boom")))

	line := buf.String()
	assert.Contains(t, line, "#42 ")
	assert.Contains(t, line, "chat:1001 ")
	assert.Contains(t, line, "INFO ")
	assert.Contains(t, line, "| dispatching")
	assert.Contains(t, line, "outcome=sent")
	assert.Contains(t, line, "err=boom")
	assert.NotContains(t, line, "\u001b[")
}

func TestHandlerSkipsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelWarn, NoColor: true}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandlerGroupsPrefixAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelDebug, NoColor: true})).
		WithGroup("openrouter").With("model", "primary")

	log.Debug("attempt")

	assert.Contains(t, buf.String(), "openrouter.model=primary")
}

func TestContextHelpersMissingValues(t *testing.T) {
	_, ok := UpdateIDFromContext(context.Background())
	require.False(t, ok)
	_, ok = ChatIDFromContext(context.Background())
	require.False(t, ok)
}
