package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
}

type UpdatePoller interface {
	PollUpdates(ctx context.Context) (tgbotapi.UpdatesChannel, error)
	StopPolling()
}

type telegramUpdateListener struct {
	poller   UpdatePoller
	handler  UpdateHandler
	poolSize int
	wg       sync.WaitGroup
}

// NewTelegramUpdateListener long-polls Telegram and handles at most poolSize updates at once.
func NewTelegramUpdateListener(poller UpdatePoller, handler UpdateHandler, poolSize int) (*telegramUpdateListener, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", poolSize)
	}

	return &telegramUpdateListener{
		poller:   poller,
		handler:  handler,
		poolSize: poolSize,
	}, nil
}

func (t *telegramUpdateListener) Name() string { return "telegram_listener_worker" }

func (t *telegramUpdateListener) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", t.Name(), "poolSize", t.poolSize)
	defer slog.Info("Worker stopped", "name", t.Name())

	updates, err := t.poller.PollUpdates(ctx)
	if err != nil {
		return fmt.Errorf("starting long polling: %w", err)
	}
	defer t.poller.StopPolling()

	pool := make(chan struct{}, t.poolSize)

	for {
		select {
		case <-ctx.Done():
			t.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}

			select {
			case pool <- struct{}{}:
			case <-ctx.Done():
				t.wg.Wait()
				return nil
			}

			t.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer func() {
					<-pool
					t.wg.Done()
				}()
				t.handler.HandleUpdate(ctx, &update)
			}(update)
		}
	}
}
