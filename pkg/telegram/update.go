package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

// MessageFromUpdate extracts the inbound message of an update. Updates without
// a message (callbacks, edits, membership changes) are reported as not ok.
func MessageFromUpdate(update *tgbotapi.Update) (domain.Message, bool) {
	if update == nil || update.Message == nil || update.Message.Chat == nil {
		return domain.Message{}, false
	}

	m := update.Message

	return domain.Message{
		UpdateID: update.UpdateID,
		ChatID:   m.Chat.ID,
		ChatKind: lo.Ternary(m.Chat.IsPrivate(), domain.ChatKindDirect, domain.ChatKindGroup),
		Text:     m.Text,
		Caption:  m.Caption,
		Photos: lo.Map(m.Photo, func(p tgbotapi.PhotoSize, _ int) domain.Photo {
			return domain.Photo{FileID: p.FileID, Width: p.Width, Height: p.Height}
		}),
	}, true
}
