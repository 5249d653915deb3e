package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
)

type ReplyRequest struct {
	Instructions string
	// Auto answers with the built-in autoresponse instruction instead of Instructions.
	Auto bool
}

type ReplyResult struct {
	Content         string
	Stats           model.GenerationStats
	Context         model.ContextSource
	Insertion       InsertionResult
	GeneratedEmails int
}

type AssistantUsecaseDeps struct {
	Settings  *SettingsUsecase
	Context   *ContextUsecase
	Prompt    *PromptUsecase
	OpenAI    *OpenAIUsecase
	Insertion *InsertionUsecase
	Logger    *logger.Logger
}

// AssistantUsecase runs the reply chain: context, prompt, completion, insertion. Only one chain
// runs at a time.
type AssistantUsecase struct {
	AssistantUsecaseDeps
	busy sync.Mutex
}

func NewAssistantUsecase(deps AssistantUsecaseDeps) *AssistantUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &AssistantUsecase{
		AssistantUsecaseDeps: deps,
	}
}

func (a *AssistantUsecase) GenerateReply(ctx context.Context, req ReplyRequest) (*ReplyResult, error) {
	if !a.busy.TryLock() {
		return nil, model.ErrActionInProgress
	}
	defer a.busy.Unlock()

	log := a.Logger.WithContext(ctx)
	tr := a.Settings.Translator(ctx)

	instructions := strings.TrimSpace(req.Instructions)
	if req.Auto {
		instructions = tr.T(MessageAutoresponsePrompt)
	}
	if instructions == "" {
		return nil, model.ErrNoInstructions
	}
	if err := a.Settings.SaveLastPrompt(ctx, instructions); err != nil {
		return nil, fmt.Errorf("failed to save last prompt: %w", err)
	}

	chat, err := a.Settings.Chat(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat settings: %w", err)
	}
	if !chat.Ready() {
		return nil, model.ErrChatSettingsMissing
	}
	extension, err := a.Settings.Extension(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get extension settings: %w", err)
	}
	tone, err := a.Settings.Tone(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tone: %w", err)
	}
	length, err := a.Settings.Length(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get length: %w", err)
	}

	ectx, err := a.Context.Extract(ctx, extension.ContextSize)
	if err != nil {
		return nil, err
	}
	log.Debug("email context extracted", "context", ectx.Context, "thread", len(ectx.Thread))

	opts := PromptOptions{
		Tone:          tone,
		Length:        length,
		IncludeSender: extension.IncludeSender,
		Template:      chat.PromptTemplate,
		Model:         chat.Model,
		Translator:    tr,
	}
	prompt := a.Prompt.Build(ectx, instructions, opts)
	systemPrompt := a.Prompt.SystemPrompt(chat, opts)

	completion, err := a.OpenAI.Complete(ctx, systemPrompt, prompt, chat)
	if err != nil {
		return nil, err
	}

	stats := model.GenerationStats{
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		Model:        completion.Model,
		Time:         math.Round(completion.Elapsed.Seconds()*100) / 100,
		Cost:         completion.Cost,
		Temperature:  chat.Temperature,
	}
	if err = a.Settings.SaveStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	insertion, err := a.Insertion.Insert(ctx, completion.Content, ectx, extension.ClearEmailAfterSubmit)
	if err != nil {
		return nil, err
	}
	generated, err := a.Settings.IncrementGeneratedEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to increment generated emails: %w", err)
	}

	return &ReplyResult{
		Content:         completion.Content,
		Stats:           stats,
		Context:         ectx.Context,
		Insertion:       insertion,
		GeneratedEmails: generated,
	}, nil
}

// ClearPrompt forgets the last instructions.
func (a *AssistantUsecase) ClearPrompt(ctx context.Context) error {
	return a.Settings.SaveLastPrompt(ctx, "")
}
