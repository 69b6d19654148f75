package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dskvich/amethyst-telegram-bot/pkg/addressing"
	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
	"github.com/dskvich/amethyst-telegram-bot/pkg/render"
)

type Outcome int

const (
	OutcomeSuppressed Outcome = iota
	OutcomeSent
	OutcomeErrorReported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeErrorReported:
		return "error_reported"
	default:
		return "suppressed"
	}
}

// maxNoticeReserve caps the tail of the dispatch budget kept for the error notice.
const maxNoticeReserve = time.Second

type noticeDeadlineKey struct{}

type Gate interface {
	Allow(ctx context.Context, text string) bool
}

type Assembler interface {
	Build(ctx context.Context, p Prompt) (Assembly, error)
}

type CommandReplier interface {
	Reply(ctx context.Context, chatID int64, name string) (string, error)
}

type DispatcherConfig struct {
	Gate       Gate
	Classifier Classifier
	Assembler  Assembler
	Completer  Completer
	Commands   CommandReplier
	ChatRepo   ChatRepository
	Messenger  Messenger
	Bot        domain.BotInfo
	// Timeout bounds the handling of a single update.
	Timeout time.Duration
}

type dispatcher struct {
	gate       Gate
	classifier Classifier
	assembler  Assembler
	completer  Completer
	commands   CommandReplier
	chatRepo   ChatRepository
	messenger  Messenger
	bot        domain.BotInfo
	timeout    time.Duration
}

func NewDispatcher(cfg DispatcherConfig) *dispatcher {
	return &dispatcher{
		gate:       cfg.Gate,
		classifier: cfg.Classifier,
		assembler:  cfg.Assembler,
		completer:  cfg.Completer,
		commands:   cfg.Commands,
		chatRepo:   cfg.ChatRepo,
		messenger:  cfg.Messenger,
		bot:        cfg.Bot,
		timeout:    lo.Ternary(cfg.Timeout > 0, cfg.Timeout, 9*time.Second),
	}
}

// Dispatch handles one inbound message to completion. It never panics and
// reports every failure to the chat instead of returning it.
func (d *dispatcher) Dispatch(ctx context.Context, msg domain.Message) (outcome Outcome) {
	ctx = logger.ContextWithChatID(ctx, msg.ChatID)

	deadline := time.Now().Add(d.timeout)
	if parent, ok := ctx.Deadline(); ok && parent.Before(deadline) {
		deadline = parent
	}
	ctx = context.WithValue(ctx, noticeDeadlineKey{}, deadline)

	ctx, cancel := context.WithDeadline(ctx, deadline.Add(-d.noticeReserve()))
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Dispatch panicked", "panic", r)
			d.reportError(ctx, msg.ChatID)
			outcome = OutcomeErrorReported
		}
	}()

	defer func(start time.Time) {
		slog.DebugContext(ctx, "Message dispatched", "outcome", outcome, "elapsed", time.Since(start))
	}(time.Now())

	if !d.gate.Allow(ctx, strings.TrimSpace(msg.Text+"\n"+msg.Caption)) {
		slog.InfoContext(ctx, "Bot is disabled, rejecting message")
		if err := d.send(ctx, msg.ChatID, d.bot.DisabledText()); err != nil {
			slog.WarnContext(ctx, "Sending disabled notice failed", logger.Err(err))
		}
		return OutcomeSuppressed
	}

	handle, err := d.messenger.SelfHandle(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Resolving bot handle failed, mentions disabled", logger.Err(err))
		handle = ""
	}

	commandText, _ := lo.Coalesce(msg.Text, msg.Caption)
	cmd, match := ParseCommand(commandText, handle, msg.ChatKind)
	switch match {
	case ForeignCommand:
		return OutcomeSuppressed
	case OwnCommand:
		return d.runCommand(ctx, msg, cmd)
	}

	addressed := d.classifier.Classify(addressing.Input{
		ChatKind: msg.ChatKind,
		Text:     msg.Text,
		Caption:  msg.Caption,
		HasImage: msg.HasImage(),
	}, handle)

	switch addressed.Outcome {
	case addressing.NotAddressed:
		return OutcomeSuppressed
	case addressing.EmptyAddress:
		return d.sendOrReport(ctx, msg.ChatID, domain.ClarifyingPromptText)
	}

	return d.answer(ctx, Prompt{
		ChatID:  msg.ChatID,
		Text:    addressed.Text,
		Caption: addressed.Caption,
		Photos:  msg.Photos,
	})
}

func (d *dispatcher) runCommand(ctx context.Context, msg domain.Message, cmd Command) Outcome {
	slog.InfoContext(ctx, "Handling command", "command", cmd.Name)

	if cmd.Name == CommandAsk {
		if cmd.Args == "" && !msg.HasImage() {
			return d.sendOrReport(ctx, msg.ChatID, domain.ClarifyingPromptText)
		}
		return d.answer(ctx, Prompt{ChatID: msg.ChatID, Text: cmd.Args, Photos: msg.Photos})
	}

	text, err := d.commands.Reply(ctx, msg.ChatID, cmd.Name)
	if err != nil {
		slog.ErrorContext(ctx, "Command failed", "command", cmd.Name, logger.Err(err))
		d.reportError(ctx, msg.ChatID)
		return OutcomeErrorReported
	}

	return d.sendOrReport(ctx, msg.ChatID, text)
}

func (d *dispatcher) answer(ctx context.Context, p Prompt) Outcome {
	assembly, err := d.assembler.Build(ctx, p)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		slog.InfoContext(ctx, "Nothing to ask", logger.Err(err))
		return d.sendOrReport(ctx, p.ChatID, domain.ClarifyingPromptText)
	case err != nil:
		slog.ErrorContext(ctx, "Assembling request failed", logger.Err(err))
		d.reportError(ctx, p.ChatID)
		return OutcomeErrorReported
	}

	if assembly.AttachmentErr != nil {
		if err := d.send(ctx, p.ChatID, domain.AttachmentFailedText); err != nil {
			slog.WarnContext(ctx, "Sending attachment notice failed", logger.Err(err))
		}
	}

	if err := d.messenger.SendTyping(ctx, p.ChatID); err != nil {
		slog.DebugContext(ctx, "Sending typing action failed", logger.Err(err))
	}

	slog.InfoContext(ctx, "Requesting completion", "messagesCount", len(assembly.Payload.Messages))

	reply, err := d.completer.Complete(ctx, assembly.Payload)
	if err != nil {
		slog.ErrorContext(ctx, "Completion failed", logger.Err(err))
		d.reportError(ctx, p.ChatID)
		return OutcomeErrorReported
	}

	if _, err := d.chatRepo.Append(ctx, p.ChatID, reply); err != nil {
		slog.WarnContext(ctx, "Saving assistant turn failed", logger.Err(err))
	}

	if err := d.sendFormatted(ctx, p.ChatID, reply.PlainText()); err != nil {
		slog.ErrorContext(ctx, "Sending reply failed", logger.Err(err))
		return OutcomeErrorReported
	}

	return OutcomeSent
}

func (d *dispatcher) sendFormatted(ctx context.Context, chatID int64, raw string) error {
	formatted, ok := render.ToHTML(raw)
	if !ok {
		return d.send(ctx, chatID, raw)
	}

	err := d.messenger.Send(ctx, domain.Reply{
		ChatID:    chatID,
		Text:      formatted,
		ParseMode: domain.ParseModeHTML,
		Keyboard:  domain.MainKeyboard,
	})
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "Sending formatted reply failed, retrying as plain text",
		logger.Err(fmt.Errorf("%w: %w", domain.ErrFormatRender, err)))

	return d.send(ctx, chatID, raw)
}

func (d *dispatcher) send(ctx context.Context, chatID int64, text string) error {
	return d.messenger.Send(ctx, domain.Reply{
		ChatID:   chatID,
		Text:     text,
		Keyboard: domain.MainKeyboard,
	})
}

func (d *dispatcher) sendOrReport(ctx context.Context, chatID int64, text string) Outcome {
	if err := d.send(ctx, chatID, text); err != nil {
		slog.ErrorContext(ctx, "Sending reply failed", logger.Err(err))
		return OutcomeErrorReported
	}
	return OutcomeSent
}

func (d *dispatcher) noticeReserve() time.Duration {
	return min(maxNoticeReserve, d.timeout/4)
}

// reportError sends the apology. It runs on the time reserved at the end of
// the dispatch budget, so it works even after the dispatch context expired.
func (d *dispatcher) reportError(ctx context.Context, chatID int64) {
	deadline, ok := ctx.Value(noticeDeadlineKey{}).(time.Time)
	if !ok {
		deadline = time.Now().Add(d.noticeReserve())
	}

	ctx, cancel := context.WithDeadline(context.WithoutCancel(ctx), deadline)
	defer cancel()

	if err := d.send(ctx, chatID, domain.TransientErrorText); err != nil {
		slog.ErrorContext(ctx, "Sending error notice failed", logger.Err(err))
	}
}
