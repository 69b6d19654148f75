package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
}

type webhook struct {
	handler UpdateHandler
}

func NewWebhook(handler UpdateHandler) *webhook {
	return &webhook{handler: handler}
}

// Receive handles one pushed update. Telegram always gets 200 so it does not redeliver.
func (h *webhook) Receive(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.WarnContext(r.Context(), "Decoding webhook update", logger.Err(err))
		return
	}

	h.handler.HandleUpdate(r.Context(), &update)
}
