package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

const testToken = "123:token"

type fakeTelegram struct {
	mu       sync.Mutex
	requests map[string][]map[string]string
	// fail lists methods answered with a Telegram error.
	fail map[string]string
	// hang lists methods that get no answer until the test ends.
	hang    map[string]bool
	release chan struct{}
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *httptest.Server) {
	t.Helper()

	f := &fakeTelegram{
		requests: make(map[string][]map[string]string),
		fail:     make(map[string]string),
		hang:     make(map[string]bool),
		release:  make(chan struct{}),
	}

	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(f.release) })

	return f, srv
}

func (f *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	_ = r.ParseForm()

	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.requests[method] = append(f.requests[method], params)
	description, failing := f.fail[method]
	hanging := f.hang[method]
	f.mu.Unlock()

	if hanging {
		select {
		case <-f.release:
		case <-r.Context().Done():
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if failing {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": description})
		return
	}

	var result any
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "Amethyst", "username": "AmethystBot"}
	case "sendMessage":
		result = map[string]any{"message_id": 10, "date": 0, "chat": map[string]any{"id": 42, "type": "private"}}
	case "getFile":
		result = map[string]any{"file_id": params["file_id"], "file_path": "photos/file_1.jpg"}
	default:
		result = true
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func (f *fakeTelegram) calls(method string) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method]
}

func newTestClient(t *testing.T) (*client, *fakeTelegram) {
	t.Helper()

	fake, srv := newFakeTelegram(t)

	c, err := newClient(testToken, srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)

	return c, fake
}

func TestClientSendWithKeyboard(t *testing.T) {
	c, fake := newTestClient(t)

	err := c.Send(context.Background(), domain.Reply{
		ChatID:    42,
		Text:      "<b>hi</b>",
		ParseMode: domain.ParseModeHTML,
		Keyboard:  [][]string{{"one", "two"}, {"three"}},
	})
	require.NoError(t, err)

	sent := fake.calls("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, "42", sent[0]["chat_id"])
	assert.Equal(t, "<b>hi</b>", sent[0]["text"])
	assert.Equal(t, "HTML", sent[0]["parse_mode"])

	var markup struct {
		Keyboard [][]struct {
			Text string `json:"text"`
		} `json:"keyboard"`
		ResizeKeyboard bool `json:"resize_keyboard"`
	}
	require.NoError(t, json.Unmarshal([]byte(sent[0]["reply_markup"]), &markup))
	assert.True(t, markup.ResizeKeyboard)
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, "two", markup.Keyboard[0][1].Text)
	assert.Equal(t, "three", markup.Keyboard[1][0].Text)
}

func TestClientSendPlainHasNoParseMode(t *testing.T) {
	c, fake := newTestClient(t)

	require.NoError(t, c.Send(context.Background(), domain.Reply{ChatID: 42, Text: "plain"}))

	sent := fake.calls("sendMessage")
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0]["parse_mode"])
	assert.Empty(t, sent[0]["reply_markup"])
}

func TestClientSendFailure(t *testing.T) {
	c, fake := newTestClient(t)
	fake.fail["sendMessage"] = "Bad Request: can't parse entities"

	err := c.Send(context.Background(), domain.Reply{ChatID: 42, Text: "<b>broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestClientSendTyping(t *testing.T) {
	c, fake := newTestClient(t)

	require.NoError(t, c.SendTyping(context.Background(), 42))

	actions := fake.calls("sendChatAction")
	require.Len(t, actions, 1)
	assert.Equal(t, "typing", actions[0]["action"])
}

func TestClientSelfHandle(t *testing.T) {
	c, _ := newTestClient(t)

	handle, err := c.SelfHandle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AmethystBot", handle)
}

func TestClientFileURL(t *testing.T) {
	c, fake := newTestClient(t)

	url, err := c.FileURL(context.Background(), "photo-id")
	require.NoError(t, err)
	assert.Equal(t, "https://api.telegram.org/file/bot"+testToken+"/photos/file_1.jpg", url)
	assert.Equal(t, "photo-id", fake.calls("getFile")[0]["file_id"])

	fake.fail["getFile"] = "Bad Request: invalid file_id"
	_, err = c.FileURL(context.Background(), "bad")
	assert.Error(t, err)
}

func TestClientSetWebhook(t *testing.T) {
	c, fake := newTestClient(t)

	require.NoError(t, c.SetWebhook(context.Background(), "https://bot.example.com/webhook"))

	calls := fake.calls("setWebhook")
	require.Len(t, calls, 1)
	assert.Equal(t, "https://bot.example.com/webhook", calls[0]["url"])
}

func TestClientSkipsCancelledContext(t *testing.T) {
	c, fake := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Send(ctx, domain.Reply{ChatID: 42, Text: "late"}), context.Canceled)
	assert.Empty(t, fake.calls("sendMessage"))
}

func TestClientStopsWaitingOnHungTelegram(t *testing.T) {
	c, fake := newTestClient(t)
	fake.hang["sendMessage"] = true
	fake.hang["sendChatAction"] = true
	fake.hang["getMe"] = true
	fake.hang["getFile"] = true
	c.handle = ""

	calls := map[string]func(ctx context.Context) error{
		"send": func(ctx context.Context) error {
			return c.Send(ctx, domain.Reply{ChatID: 42, Text: "hi"})
		},
		"typing": func(ctx context.Context) error {
			return c.SendTyping(ctx, 42)
		},
		"self handle": func(ctx context.Context) error {
			_, err := c.SelfHandle(ctx)
			return err
		},
		"file url": func(ctx context.Context) error {
			_, err := c.FileURL(ctx, "photo-id")
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			start := time.Now()
			err := call(ctx)

			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}
