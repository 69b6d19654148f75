package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

func TestMessageFromUpdate(t *testing.T) {
	t.Run("private text", func(t *testing.T) {
		msg, ok := MessageFromUpdate(&tgbotapi.Update{
			UpdateID: 5,
			Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 42, Type: "private"},
				Text: "2+2?",
			},
		})
		require.True(t, ok)
		assert.Equal(t, 5, msg.UpdateID)
		assert.Equal(t, int64(42), msg.ChatID)
		assert.Equal(t, domain.ChatKindDirect, msg.ChatKind)
		assert.Equal(t, "2+2?", msg.Text)
		assert.False(t, msg.HasImage())
	})

	t.Run("supergroup photo", func(t *testing.T) {
		msg, ok := MessageFromUpdate(&tgbotapi.Update{
			Message: &tgbotapi.Message{
				Chat:    &tgbotapi.Chat{ID: -100, Type: "supergroup"},
				Caption: ".ai what is it",
				Photo: []tgbotapi.PhotoSize{
					{FileID: "s", Width: 90, Height: 60},
					{FileID: "l", Width: 1280, Height: 853},
				},
			},
		})
		require.True(t, ok)
		assert.Equal(t, domain.ChatKindGroup, msg.ChatKind)
		assert.Equal(t, ".ai what is it", msg.Caption)
		assert.Equal(t, []domain.Photo{
			{FileID: "s", Width: 90, Height: 60},
			{FileID: "l", Width: 1280, Height: 853},
		}, msg.Photos)
	})

	t.Run("no message", func(t *testing.T) {
		_, ok := MessageFromUpdate(&tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "1"}})
		assert.False(t, ok)
	})
}
