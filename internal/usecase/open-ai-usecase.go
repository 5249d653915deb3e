package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
	openai_tools "github.com/iamvkosarev/ai-mail-assistant/pkg/openai-tools"

	"github.com/sashabaranov/go-openai"
)

const (
	testMaxTokens   = 50
	testTemperature = float32(0.1)
)

type OpenAIUsecaseDeps struct {
	Logger *logger.Logger
}

type OpenAIUsecase struct {
	OpenAIUsecaseDeps
	cfg     config.HTTP
	pricing Pricing
}

func NewOpenAIUsecase(deps OpenAIUsecaseDeps, cfg config.HTTP, pricing Pricing) *OpenAIUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if pricing == nil {
		pricing = NewPricing(nil)
	}
	return &OpenAIUsecase{
		OpenAIUsecaseDeps: deps,
		cfg:               cfg,
		pricing:           pricing,
	}
}

// Complete sends one chat completion request. Nothing is sent when chat lacks url, key or model.
func (o *OpenAIUsecase) Complete(
	ctx context.Context,
	systemPrompt, prompt string,
	chat model.ChatSettings,
) (*model.Completion, error) {
	if !chat.Ready() {
		return nil, model.ErrChatSettingsMissing
	}
	maxTokens := chat.MaxTokens
	if maxTokens <= 0 {
		maxTokens = model.DefaultMaxTokens
	}
	req := openai.ChatCompletionRequest{
		Model: chat.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: chat.Temperature,
		MaxTokens:   maxTokens,
	}
	return o.send(ctx, chat, req)
}

// TestAPI checks the chat settings with a tiny request.
func (o *OpenAIUsecase) TestAPI(ctx context.Context, chat model.ChatSettings, tr *local.Translator) (
	*model.Completion,
	error,
) {
	if !chat.Ready() {
		return nil, model.ErrChatSettingsMissing
	}
	req := openai.ChatCompletionRequest{
		Model: chat.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: tr.T(MessageTestSystemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: tr.T(MessageTestUserPrompt)},
		},
		Temperature: testTemperature,
		MaxTokens:   testMaxTokens,
	}
	return o.send(ctx, chat, req)
}

func (o *OpenAIUsecase) send(
	ctx context.Context,
	chat model.ChatSettings,
	req openai.ChatCompletionRequest,
) (*model.Completion, error) {
	log := o.Logger.WithContext(ctx)
	client, recorder := openai_tools.NewClient(chat.APIURL, chat.APIKey, openai_tools.ChatCompletionsSuffix, o.cfg.Timeout)

	log.Info("starting chat completion", "model", chat.Model, "prompt_length", promptLength(req.Messages))
	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		err = apiError(model.ServiceChat, recorder, err)
		o.Logger.LogError(ctx, err, "chat completion failed")
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, model.ErrEmptyCompletion
	}

	completion := &model.Completion{
		Content:      strings.TrimSpace(resp.Choices[0].Message.Content),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        chat.Model,
		Elapsed:      elapsed,
	}
	completion.Cost = o.pricing.EstimateCost(chat.Model, completion.InputTokens, completion.OutputTokens)

	log.Info(
		"chat completion finished",
		"model", completion.Model,
		"input_tokens", completion.InputTokens,
		"output_tokens", completion.OutputTokens,
		"elapsed", elapsed.Round(time.Millisecond),
		"cost", completion.Cost,
	)
	return completion, nil
}

// apiError turns a failed go-openai call into *model.APIError when the endpoint answered with an
// error status, keeping the raw response text.
func apiError(service string, recorder *openai_tools.ResponseRecorder, err error) error {
	if status, body, ok := recorder.Failure(); ok {
		return &model.APIError{
			Service:    service,
			StatusCode: status,
			Body:       body,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &model.APIError{
			Service:    service,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
		}
	}
	return fmt.Errorf("failed to call %s api: %w", service, err)
}

func promptLength(messages []openai.ChatCompletionMessage) int {
	n := 0
	for _, message := range messages {
		n += len(message.Content)
	}
	return n
}
