package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/audio"
	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/mailbox"
	in_memory "github.com/iamvkosarev/ai-mail-assistant/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/ai-mail-assistant/internal/storage/key-value"
	"github.com/iamvkosarev/ai-mail-assistant/internal/storage/sqlite"
	"github.com/iamvkosarev/ai-mail-assistant/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// App holds the usecases of one CLI invocation.
type App struct {
	Logger        *logger.Logger
	Settings      *usecase.SettingsUsecase
	Assistant     *usecase.AssistantUsecase
	Transcription *usecase.TranscriptionUsecase
	SystemPrompts *usecase.SystemPromptUsecase
	OpenAI        *usecase.OpenAIUsecase
	Recorder      *audio.Recorder

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}
	a := &App{Logger: log}

	storage, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mail := mailbox.NewFileClient(cfg.Mailbox, cfg.Identity)
	a.Recorder = audio.NewRecorder(audio.CommandSource{Command: cfg.Recording.Command})

	a.Settings = usecase.NewSettingsUsecase(
		usecase.SettingsUsecaseDeps{
			Storage: storage,
		},
		cfg.Defaults,
	)

	a.OpenAI = usecase.NewOpenAIUsecase(
		usecase.OpenAIUsecaseDeps{
			Logger: log.WithComponent("openai"),
		},
		cfg.HTTP,
		usecase.NewPricing(cfg.Pricing),
	)

	contextUsecase := usecase.NewContextUsecase(
		usecase.ContextUsecaseDeps{
			Mail:   mail,
			Logger: log.WithComponent("context"),
		},
	)

	promptUsecase := usecase.NewPromptUsecase(
		usecase.PromptUsecaseDeps{
			Logger: log.WithComponent("prompt"),
		},
		cfg.Prompt,
	)

	insertionUsecase := usecase.NewInsertionUsecase(
		usecase.InsertionUsecaseDeps{
			Mail:   mail,
			Logger: log.WithComponent("insertion"),
		},
	)

	a.Assistant = usecase.NewAssistantUsecase(
		usecase.AssistantUsecaseDeps{
			Settings:  a.Settings,
			Context:   contextUsecase,
			Prompt:    promptUsecase,
			OpenAI:    a.OpenAI,
			Insertion: insertionUsecase,
			Logger:    log.WithComponent("assistant"),
		},
	)

	a.Transcription = usecase.NewTranscriptionUsecase(
		usecase.TranscriptionUsecaseDeps{
			Recorder: a.Recorder,
			Settings: a.Settings,
			Logger:   log.WithComponent("transcription"),
		},
		cfg.Recording,
		cfg.HTTP,
	)

	a.SystemPrompts = usecase.NewSystemPromptUsecase(
		usecase.SystemPromptUsecaseDeps{
			Settings: a.Settings,
		},
	)

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (usecase.SettingsStorage, error) {
	switch cfg.Storage.Backend {
	case BackendSQLite, "":
		storage, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		a.closers = append(a.closers, storage.Close)
		a.Logger.Debug("using sqlite settings storage", "path", cfg.Storage.SQLitePath)
		return storage, nil
	case BackendRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Redis.Endpoint, err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.Logger.Debug("using redis settings storage", "endpoint", cfg.Redis.Endpoint)
		return key_value.NewSettingsStorage(rdb), nil
	case BackendMemory:
		a.Logger.Warn("using in-memory settings storage, nothing is persisted")
		return in_memory.NewSettingsStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Close releases the storage connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
