package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
	"github.com/dskvich/amethyst-telegram-bot/pkg/services"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) services.Outcome
}

type handler struct {
	dispatcher Dispatcher
}

func NewHandler(dispatcher Dispatcher) *handler {
	return &handler{dispatcher: dispatcher}
}

func (h *handler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	ctx = logger.ContextWithUpdateID(ctx, update.UpdateID)

	msg, ok := MessageFromUpdate(update)
	if !ok {
		slog.DebugContext(ctx, "Skipping update without message")
		return
	}

	ctx = logger.ContextWithChatID(ctx, msg.ChatID)
	slog.InfoContext(ctx, "Processing update", "chatKind", msg.ChatKind, "hasImage", msg.HasImage())

	outcome := h.dispatcher.Dispatch(ctx, msg)

	slog.InfoContext(ctx, "Update processed", "outcome", outcome)
}
