package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

// Prompt is the addressed content of an inbound message.
type Prompt struct {
	ChatID  int64
	Text    string
	Caption string
	Photos  []domain.Photo
}

// Assembly is the result of turning a prompt into a completion request.
type Assembly struct {
	Payload domain.Payload
	// AttachmentErr is set when the photo was dropped but the text was enough to go on.
	AttachmentErr error
}

type assembler struct {
	chatRepo     ChatRepository
	files        FileLinker
	bot          domain.BotInfo
	requestTurns int
}

// NewAssembler builds requests from the system turn and the last requestTurns turns of the chat.
func NewAssembler(chatRepo ChatRepository, files FileLinker, bot domain.BotInfo, requestTurns int) *assembler {
	return &assembler{
		chatRepo:     chatRepo,
		files:        files,
		bot:          bot,
		requestTurns: max(requestTurns, 1),
	}
}

func (a *assembler) Build(ctx context.Context, p Prompt) (Assembly, error) {
	turn, attachmentErr := a.userTurn(ctx, p)
	if len(turn.Parts) == 0 {
		return Assembly{}, errors.Join(domain.ErrEmptyInput, attachmentErr)
	}

	history, err := a.chatRepo.Append(ctx, p.ChatID, turn)
	if err != nil {
		return Assembly{}, fmt.Errorf("saving user turn: %w", err)
	}

	recent := history[max(len(history)-a.requestTurns, 0):]

	messages := make([]domain.Turn, 0, len(recent)+1)
	messages = append(messages, a.bot.SystemTurn())
	messages = append(messages, recent...)

	return Assembly{
		Payload:       domain.Payload{Messages: messages},
		AttachmentErr: attachmentErr,
	}, nil
}

func (a *assembler) userTurn(ctx context.Context, p Prompt) (domain.Turn, error) {
	turn := domain.Turn{Role: domain.RoleUser}

	text := strings.TrimSpace(p.Text)
	caption := strings.TrimSpace(p.Caption)

	if text != "" {
		turn.Parts = append(turn.Parts, domain.TextPart(text))
	}

	var attachmentErr error
	if len(p.Photos) > 0 {
		photo := largestPhoto(p.Photos)

		url, err := a.files.FileURL(ctx, photo.FileID)
		if err != nil {
			attachmentErr = fmt.Errorf("%w: %w", domain.ErrAttachmentFetch, err)
			slog.WarnContext(ctx, "Resolving photo link failed", "fileID", photo.FileID, logger.Err(err))
		} else {
			turn.Parts = append(turn.Parts, domain.ImagePart(url))
			if text == "" && caption == "" {
				caption = domain.DefaultImagePrompt
			}
		}
	}

	if caption != "" {
		turn.Parts = append(turn.Parts, domain.TextPart(caption))
	}

	return turn, attachmentErr
}

func largestPhoto(photos []domain.Photo) domain.Photo {
	return lo.MaxBy(photos, func(a, b domain.Photo) bool {
		return a.Width*a.Height > b.Width*b.Height
	})
}
