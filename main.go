package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/redis/go-redis/v9"

	"github.com/dskvich/amethyst-telegram-bot/pkg/addressing"
	"github.com/dskvich/amethyst-telegram-bot/pkg/api"
	"github.com/dskvich/amethyst-telegram-bot/pkg/api/handler"
	"github.com/dskvich/amethyst-telegram-bot/pkg/auth"
	"github.com/dskvich/amethyst-telegram-bot/pkg/database"
	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
	"github.com/dskvich/amethyst-telegram-bot/pkg/openrouter"
	"github.com/dskvich/amethyst-telegram-bot/pkg/repository"
	"github.com/dskvich/amethyst-telegram-bot/pkg/services"
	"github.com/dskvich/amethyst-telegram-bot/pkg/telegram"
	"github.com/dskvich/amethyst-telegram-bot/pkg/workers"
)

type Config struct {
	TelegramBotToken       string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	TelegramWebhookURL     string `env:"WEBHOOK_URL"`
	TelegramUpdatePoolSize int    `env:"UPDATE_POOL_SIZE" envDefault:"10"`

	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY,required,notEmpty"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	SiteURL           string        `env:"SITE_URL" envDefault:"https://amelit.vercel.app"`
	SiteName          string        `env:"SITE_NAME" envDefault:"Amethyst"`
	PrimaryModel      string        `env:"PRIMARY_MODEL" envDefault:"openrouter/optimus-alpha"`
	FallbackModel     string        `env:"FALLBACK_MODEL" envDefault:"mistralai/mistral-small-3.1-24b-instruct"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"12s"`
	CompletionRetries int           `env:"COMPLETION_RETRIES" envDefault:"2"`
	CompletionDelay   time.Duration `env:"COMPLETION_RETRY_DELAY" envDefault:"1s"`
	DispatchTimeout   time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"9s"`

	MaxHistory    int           `env:"MAX_HISTORY" envDefault:"10"`
	RetainHistory int           `env:"RETAIN_HISTORY" envDefault:"5"`
	RequestTurns  int           `env:"REQUEST_TURNS" envDefault:"3"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	GroupPrefixes []string      `env:"GROUP_PREFIXES" envDefault:".ai" envSeparator:","`

	AdminPassword string `env:"ADMIN_PASSWORD"`
	StatusFile    string `env:"STATUS_FILE" envDefault:"/tmp/bot_status.json"`
	PgURL         string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`

	BotName        string `env:"BOT_NAME" envDefault:"Amethyst"`
	BotCreator     string `env:"BOT_CREATOR" envDefault:"Amelit"`
	BotWebsite     string `env:"BOT_WEBSITE" envDefault:"https://amelit.vercel.app/"`
	BotSupportChat string `env:"BOT_SUPPORT_CHAT" envDefault:"https://t.me/amelit_chat"`

	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"DEBUG"`
	LogNoColor bool       `env:"LOG_NO_COLOR"`
}

func (c Config) botInfo() domain.BotInfo {
	return domain.BotInfo{
		Name:         c.BotName,
		Creator:      c.BotCreator,
		Website:      c.BotWebsite,
		SupportChat:  c.BotSupportChat,
		Capabilities: domain.DefaultCapabilities,
	}
}

type StatusStore interface {
	handler.StatusStore
	Init(ctx context.Context) error
}

func loadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("loading config", logger.Err(err))
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      cfg.LogLevel,
		TimeFormat: logger.DefaultOptions.TimeFormat,
		AddSource:  logger.DefaultOptions.AddSource,
		MsgPrefix:  logger.DefaultOptions.MsgPrefix,
		NoColor:    cfg.LogNoColor,
	})))

	if err := runMain(cfg); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain(cfg Config) error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	workerGroup, cleanup, err := setupWorkers(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers(ctx context.Context, cfg Config) (workers.Group, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("closing resource", logger.Err(err))
			}
		}
	}

	statusStore, db, err := newStatusStore(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if db != nil {
		closers = append(closers, db.Close)
	}
	if err := statusStore.Init(ctx); err != nil {
		return nil, cleanup, fmt.Errorf("initializing bot status: %w", err)
	}

	chatStore, rdb, err := newChatStore(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if rdb != nil {
		closers = append(closers, rdb.Close)
	}

	telegramClient, err := telegram.NewClient(cfg.TelegramBotToken)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating telegram client: %w", err)
	}

	completionClient, err := openrouter.NewClient(openrouter.Config{
		BaseURL:        cfg.OpenRouterBaseURL,
		APIKey:         cfg.OpenRouterAPIKey,
		SiteURL:        cfg.SiteURL,
		SiteName:       cfg.SiteName,
		PrimaryModel:   cfg.PrimaryModel,
		FallbackModel:  cfg.FallbackModel,
		AttemptTimeout: cfg.CompletionTimeout,
		Retries:        cfg.CompletionRetries,
		RetryDelay:     cfg.CompletionDelay,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating completion client: %w", err)
	}

	bot := cfg.botInfo()

	dispatcher := services.NewDispatcher(services.DispatcherConfig{
		Gate:       services.NewStatusGate(statusStore, cfg.AdminPassword),
		Classifier: addressing.NewClassifier(cfg.GroupPrefixes),
		Assembler:  services.NewAssembler(chatStore, telegramClient, bot, cfg.RequestTurns),
		Completer:  completionClient,
		Commands:   services.NewCommandService(chatStore, bot),
		ChatRepo:   chatStore,
		Messenger:  telegramClient,
		Bot:        bot,
		Timeout:    cfg.DispatchTimeout,
	})

	updateHandler := telegram.NewHandler(dispatcher)

	var workerGroup workers.Group
	var webhook api.Webhook

	if cfg.TelegramWebhookURL != "" {
		if err := telegramClient.SetWebhook(ctx, cfg.TelegramWebhookURL); err != nil {
			return nil, cleanup, err
		}
		webhook = handler.NewWebhook(updateHandler)
	} else {
		listener, err := workers.NewTelegramUpdateListener(telegramClient, updateHandler, cfg.TelegramUpdatePoolSize)
		if err != nil {
			return nil, cleanup, fmt.Errorf("creating update listener: %w", err)
		}
		workerGroup = append(workerGroup, listener)
	}

	router := api.NewRouter(
		handler.NewStatusPage(statusStore, bot),
		handler.NewAdmin(statusStore, auth.NewAuthenticator(cfg.AdminPassword)),
		webhook,
	)
	workerGroup = append(workerGroup, workers.NewHTTPServer(cfg.HTTPAddr, router))

	return workerGroup, cleanup, nil
}

func newStatusStore(ctx context.Context, cfg Config) (StatusStore, *sql.DB, error) {
	if cfg.PgURL == "" {
		slog.Info("Keeping bot status in a file", "path", cfg.StatusFile)
		return repository.NewFileStatusRepository(cfg.StatusFile), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.PgURL)
	if err != nil {
		return nil, nil, fmt.Errorf("creating db: %w", err)
	}

	slog.Info("Keeping bot status in postgres")
	return repository.NewPostgresStatusRepository(db), db, nil
}

func newChatStore(ctx context.Context, cfg Config) (services.ChatRepository, *redis.Client, error) {
	limits := repository.HistoryLimits{Max: cfg.MaxHistory, Retain: cfg.RetainHistory}

	if cfg.RedisURL == "" {
		slog.Info("Keeping chat history in memory", "maxHistory", cfg.MaxHistory, "retainHistory", cfg.RetainHistory)
		return repository.NewChatRepository(limits, cfg.SessionTTL), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("pinging redis: %w", err)
	}

	slog.Info("Keeping chat history in redis", "ttl", cfg.SessionTTL)
	return repository.NewRedisChatRepository(rdb, limits, cfg.SessionTTL), rdb, nil
}
