package openrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

type Config struct {
	BaseURL  string
	APIKey   string
	SiteURL  string
	SiteName string

	PrimaryModel  string
	FallbackModel string

	// AttemptTimeout bounds every single HTTP call. A shorter ctx deadline
	// is shared between the remaining attempts.
	AttemptTimeout time.Duration
	// Retries is how many extra times the primary model is tried.
	Retries int
	// RetryDelay is the pause between two attempts.
	RetryDelay time.Duration
}

type client struct {
	api            *openai.Client
	primary        string
	fallback       string
	attemptTimeout time.Duration
	retries        int
	retryDelay     time.Duration
}

func NewClient(cfg Config) (*client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	if cfg.PrimaryModel == "" {
		return nil, fmt.Errorf("primary model is empty")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if apiCfg.BaseURL == "" {
		apiCfg.BaseURL = DefaultBaseURL
	}
	apiCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base:     http.DefaultTransport,
			siteURL:  cfg.SiteURL,
			siteName: cfg.SiteName,
		},
	}

	c := &client{
		api:            openai.NewClientWithConfig(apiCfg),
		primary:        cfg.PrimaryModel,
		fallback:       cfg.FallbackModel,
		attemptTimeout: cfg.AttemptTimeout,
		retries:        max(cfg.Retries, 0),
		retryDelay:     max(cfg.RetryDelay, 0),
	}
	if c.fallback == "" {
		c.fallback = c.primary
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = 12 * time.Second
	}
	return c, nil
}

// attemptPlan lists the model of every attempt in order: the primary model
// Retries+1 times, then the fallback model once.
func (c *client) attemptPlan() []string {
	plan := make([]string, 0, c.retries+2)
	for i := 0; i <= c.retries; i++ {
		plan = append(plan, c.primary)
	}
	return append(plan, c.fallback)
}

// Complete returns the assistant reply of the first successful attempt.
func (c *client) Complete(ctx context.Context, payload domain.Payload) (domain.Turn, error) {
	messages := toChatMessages(payload.Messages)

	plan := c.attemptPlan()

	var errs error
	for i, model := range plan {
		if i > 0 && c.retryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.retryDelay):
			}
		}
		if ctx.Err() != nil {
			errs = multierror.Append(errs, ctx.Err())
			return domain.Turn{}, fmt.Errorf("completion abandoned: %w", errs)
		}

		start := time.Now()
		reply, err := c.attempt(ctx, model, messages, c.attemptBudget(ctx, len(plan)-i))
		if err == nil {
			slog.InfoContext(ctx, "Completion received", "model", model, "attempt", i+1, "elapsed", time.Since(start))
			return reply, nil
		}

		slog.WarnContext(ctx, "Completion attempt failed", "model", model, "attempt", i+1, "elapsed", time.Since(start), logger.Err(err))
		errs = multierror.Append(errs, fmt.Errorf("attempt %d with %s: %w", i+1, model, err))
	}

	return domain.Turn{}, fmt.Errorf("%w: %w", domain.ErrUpstreamExhausted, errs)
}

// attemptBudget splits the time left before the ctx deadline evenly between the
// remaining attempts, after setting aside the delays between them, so that the
// fallback model still gets its turn. It never exceeds AttemptTimeout.
func (c *client) attemptBudget(ctx context.Context, attemptsLeft int) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok || attemptsLeft < 1 {
		return c.attemptTimeout
	}

	left := time.Until(deadline)
	share := (left - time.Duration(attemptsLeft-1)*c.retryDelay) / time.Duration(attemptsLeft)
	if share <= 0 {
		share = left / time.Duration(attemptsLeft)
	}
	return min(c.attemptTimeout, share)
}

func (c *client) attempt(ctx context.Context, model string, messages []openai.ChatCompletionMessage, budget time.Duration) (domain.Turn, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return domain.Turn{}, classifyError(attemptCtx, err)
	}

	if len(resp.Choices) == 0 {
		return domain.Turn{}, fmt.Errorf("%w: no choices in response", domain.ErrUpstreamHTTP)
	}

	content := messageText(resp.Choices[0].Message)
	if strings.TrimSpace(content) == "" {
		return domain.Turn{}, fmt.Errorf("%w: empty message in response", domain.ErrUpstreamHTTP)
	}

	return domain.NewTextTurn(domain.RoleAssistant, content), nil
}

func classifyError(ctx context.Context, err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamHTTP, apiErr.HTTPStatusCode, apiErr.Message)
	case errors.As(err, &reqErr):
		return fmt.Errorf("%w: status %d: %w", domain.ErrUpstreamHTTP, reqErr.HTTPStatusCode, reqErr.Err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamHTTP, err)
	}
}

func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content
	}

	texts := make([]string, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// toChatMessages sends user turns as content part arrays and everything else as plain strings.
func toChatMessages(turns []domain.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role != domain.RoleUser {
			messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.PlainText()})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(t.Parts))
		for _, p := range t.Parts {
			switch p.Type {
			case domain.ContentPartTypeText:
				parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: p.Text})
			case domain.ContentPartTypeImage:
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: p.URL},
				})
			}
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, MultiContent: parts})
	}
	return messages
}

// headerTransport adds the attribution headers OpenRouter uses for app rankings.
type headerTransport struct {
	base     http.RoundTripper
	siteURL  string
	siteName string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.siteName != "" {
		req.Header.Set("X-Title", t.siteName)
	}
	return t.base.RoundTrip(req)
}
