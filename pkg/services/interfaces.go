package services

import (
	"context"

	"github.com/dskvich/amethyst-telegram-bot/pkg/addressing"
	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

type ChatRepository interface {
	Append(ctx context.Context, chatID int64, turn domain.Turn) ([]domain.Turn, error)
	Clear(ctx context.Context, chatID int64) error
}

type StatusReader interface {
	Read(ctx context.Context) (domain.BotStatus, error)
}

type FileLinker interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

type Messenger interface {
	Send(ctx context.Context, reply domain.Reply) error
	SendTyping(ctx context.Context, chatID int64) error
	SelfHandle(ctx context.Context) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, payload domain.Payload) (domain.Turn, error)
}

type Classifier interface {
	Classify(in addressing.Input, botHandle string) addressing.Result
}
