package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

const pollTimeoutSeconds = 60

// requestTimeout bounds every Bot API call, long polls included.
const requestTimeout = pollTimeoutSeconds*time.Second + 10*time.Second

type client struct {
	bot *tgbotapi.BotAPI

	mu     sync.Mutex
	handle string
}

func NewClient(token string) (*client, error) {
	return newClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: requestTimeout})
}

func newClient(token, endpoint string, httpClient tgbotapi.HTTPClient) (*client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating bot api instance: %w", err)
	}

	slog.Info("Authorized on telegram", "account", bot.Self.UserName)

	return &client{
		bot:    bot,
		handle: bot.Self.UserName,
	}, nil
}

// PollUpdates removes any registered webhook and starts long polling.
func (c *client) PollUpdates(_ context.Context) (tgbotapi.UpdatesChannel, error) {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return nil, fmt.Errorf("deleting webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds

	return c.bot.GetUpdatesChan(u), nil
}

func (c *client) StopPolling() {
	c.bot.StopReceivingUpdates()
}

func (c *client) SetWebhook(_ context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("parsing webhook url: %w", err)
	}

	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("setting webhook: %w", err)
	}

	slog.Info("Webhook registered", "url", url)
	return nil
}

func (c *client) Send(ctx context.Context, reply domain.Reply) error {
	msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	msg.ParseMode = string(reply.ParseMode)
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = replyKeyboard(reply.Keyboard)
	}

	if _, err := withContext(ctx, func() (tgbotapi.Message, error) { return c.bot.Send(msg) }); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (c *client) SendTyping(ctx context.Context, chatID int64) error {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := withContext(ctx, func() (*tgbotapi.APIResponse, error) { return c.bot.Request(action) }); err != nil {
		return fmt.Errorf("sending chat action: %w", err)
	}
	return nil
}

// SelfHandle returns the bot username, asking Telegram again if it is not known yet.
func (c *client) SelfHandle(ctx context.Context) (string, error) {
	c.mu.Lock()
	handle := c.handle
	c.mu.Unlock()

	if handle != "" {
		return handle, nil
	}

	me, err := withContext(ctx, c.bot.GetMe)
	if err != nil {
		return "", fmt.Errorf("getting bot profile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.handle = me.UserName
	return c.handle, nil
}

// FileURL resolves a file id to a direct download link. The link embeds the bot token.
func (c *client) FileURL(ctx context.Context, fileID string) (string, error) {
	url, err := withContext(ctx, func() (string, error) { return c.bot.GetFileDirectURL(fileID) })
	if err != nil {
		return "", fmt.Errorf("getting file link: %w", err)
	}
	return url, nil
}

// withContext runs a Bot API call and stops waiting for it once ctx is done.
// The abandoned call ends on its own within requestTimeout.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(lo.Map(rows, func(row []string, _ int) []tgbotapi.KeyboardButton {
		return tgbotapi.NewKeyboardButtonRow(lo.Map(row, func(label string, _ int) tgbotapi.KeyboardButton {
			return tgbotapi.NewKeyboardButton(label)
		})...)
	})...)
	keyboard.ResizeKeyboard = true
	return keyboard
}
