package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type contextKey string

const (
	updateIDKey contextKey = "update_id"
	chatIDKey   contextKey = "chat_id"
)

// Handler is a human friendly slog.Handler that colors levels and prefixes
// every line with the update and chat being processed.
type Handler struct {
	groups []string
	attrs  []slog.Attr

	opts Options

	mu  *sync.Mutex
	out io.Writer
}

// NewHandler creates a new Handler with the specified options. If opts is nil, uses [DefaultOptions].
func NewHandler(out io.Writer, opts *Options) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts == nil {
		h.opts = *DefaultOptions
	} else {
		h.opts = *opts
	}
	return h
}

func (h *Handler) clone() *Handler {
	return &Handler{
		groups: h.groups,
		attrs:  h.attrs,
		opts:   h.opts,
		mu:     h.mu,
		out:    h.out,
	}
}

// Enabled implements slog.Handler.Enabled .
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.Handle .
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	bf := bufPool.Get().(*bytes.Buffer)
	bf.Reset()
	defer bufPool.Put(bf)

	if !r.Time.IsZero() {
		bf.WriteString(color.New(color.Faint).Sprint(r.Time.Format(h.opts.TimeFormat)))
		bf.WriteByte(' ')
	}

	if updateID, ok := UpdateIDFromContext(ctx); ok {
		bf.WriteString(color.New(color.FgMagenta).Sprintf("#%d ", updateID))
	}
	if chatID, ok := ChatIDFromContext(ctx); ok {
		bf.WriteString(color.New(color.FgBlue).Sprintf("chat:%d ", chatID))
	}

	bf.WriteString(levelLabel(r.Level))
	bf.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fmt.Fprintf(bf, "%s:%d ", filepath.Base(f.File), f.Line)
	}

	bf.WriteString(h.opts.MsgPrefix)
	bf.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range attrs {
		keyColor := color.New(color.FgCyan)
		if strings.Contains(a.Key, "err") {
			keyColor = color.New(color.FgRed)
		}
		bf.WriteByte(' ')
		bf.WriteString(keyColor.Sprintf("%s%s=", prefix, a.Key))
		bf.WriteString(a.Value.String())
	}
	bf.WriteByte('\n')

	if h.opts.NoColor {
		cleaned := ansi.ReplaceAll(bf.Bytes(), nil)
		bf.Reset()
		bf.Write(cleaned)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(bf.Bytes())
	return err
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return color.New(color.BgRed, color.FgHiWhite).Sprint("ERROR")
	case level >= slog.LevelWarn:
		return color.New(color.BgYellow, color.FgHiWhite).Sprint("WARN ")
	case level >= slog.LevelInfo:
		return color.New(color.BgGreen, color.FgHiWhite).Sprint("INFO ")
	default:
		return color.New(color.BgCyan, color.FgHiWhite).Sprint("DEBUG")
	}
}

// WithGroup implements slog.Handler.WithGroup .
func (h *Handler) WithGroup(name string) slog.Handler {
	h2 := h.clone()
	h2.groups = append(append([]string{}, h.groups...), name)
	return h2
}

// WithAttrs implements slog.Handler.WithAttrs .
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return h2
}

var bufPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// ansi matches color escape sequences.
var ansi = regexp.MustCompile("[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))")

var DefaultOptions = &Options{
	Level:      slog.LevelDebug,
	TimeFormat: time.DateTime,
	AddSource:  true,
	MsgPrefix:  color.HiWhiteString("| "),
}

type Options struct {
	// Level reports the minimum level to log.
	Level slog.Leveler

	// TimeFormat is the time format.
	TimeFormat string

	// AddSource prints file:line of the log call.
	AddSource bool

	// MsgPrefix is printed before the message, default: white colored "| ".
	MsgPrefix string

	// NoColor disables color, default: false.
	NoColor bool
}

// Err wraps an error into an attribute printed in red.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "<nil>")
	}
	return slog.String("err", err.Error())
}

func ContextWithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

func UpdateIDFromContext(ctx context.Context) (int, bool) {
	updateID, ok := ctx.Value(updateIDKey).(int)
	return updateID, ok
}

func ContextWithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

func ChatIDFromContext(ctx context.Context) (int64, bool) {
	chatID, ok := ctx.Value(chatIDKey).(int64)
	return chatID, ok
}
