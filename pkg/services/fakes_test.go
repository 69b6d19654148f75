package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

type fakeStatus struct {
	status domain.BotStatus
	err    error
}

func (f *fakeStatus) Read(context.Context) (domain.BotStatus, error) {
	return f.status, f.err
}

type fakeFiles struct {
	urls map[string]string
	err  error
}

func (f *fakeFiles) FileURL(_ context.Context, fileID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url, ok := f.urls[fileID]
	if !ok {
		return "", errors.New("file not found")
	}
	return url, nil
}

type fakeMessenger struct {
	mu        sync.Mutex
	replies   []domain.Reply
	typing    int
	handle    string
	handleErr error
	// sendErr decides whether a reply is rejected.
	sendErr func(domain.Reply) error
	// hang makes Send block until its context is done.
	hang bool
}

func (f *fakeMessenger) Send(ctx context.Context, reply domain.Reply) error {
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		if err := f.sendErr(reply); err != nil {
			return err
		}
	}
	f.replies = append(f.replies, reply)
	return nil
}

func (f *fakeMessenger) SendTyping(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return errors.New("typing not supported")
}

func (f *fakeMessenger) SelfHandle(context.Context) (string, error) {
	return f.handle, f.handleErr
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.replies))
	for _, r := range f.replies {
		texts = append(texts, r.Text)
	}
	return texts
}

type fakeCompleter struct {
	mu       sync.Mutex
	payloads []domain.Payload
	complete func(ctx context.Context, payload domain.Payload) (domain.Turn, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, payload domain.Payload) (domain.Turn, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()

	return f.complete(ctx, payload)
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func replyWith(text string) func(context.Context, domain.Payload) (domain.Turn, error) {
	return func(context.Context, domain.Payload) (domain.Turn, error) {
		return domain.NewTextTurn(domain.RoleAssistant, text), nil
	}
}

var testBot = domain.BotInfo{
	Name:         "Amethyst",
	Creator:      "Amethyst Labs",
	Website:      "https://example.com",
	SupportChat:  "@support",
	Capabilities: domain.DefaultCapabilities,
}
