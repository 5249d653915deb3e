package usecase

import (
	"strings"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
	openai_tools "github.com/iamvkosarev/ai-mail-assistant/pkg/openai-tools"

	"github.com/sashabaranov/go-openai"
)

const threadDateLayout = "2006-01-02 15:04"

// TokenCounter counts the prompt tokens of messages for model.
type TokenCounter func(messages []openai.ChatCompletionMessage, model string) (int, error)

type PromptOptions struct {
	Tone          model.Tone
	Length        model.Length
	IncludeSender bool
	// Template overrides the built-in prompt template when non-empty.
	Template   string
	Model      string
	Translator *local.Translator
}

type PromptUsecaseDeps struct {
	Logger      *logger.Logger
	CountTokens TokenCounter
}

type PromptUsecase struct {
	PromptUsecaseDeps
	cfg config.Prompt
}

func NewPromptUsecase(deps PromptUsecaseDeps, cfg config.Prompt) *PromptUsecase {
	if deps.CountTokens == nil {
		deps.CountTokens = openai_tools.CountToken
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &PromptUsecase{
		PromptUsecaseDeps: deps,
		cfg:               cfg,
	}
}

// Build renders the user prompt for ectx. When the result is over the token limit the oldest
// thread messages are left out one at a time.
func (p *PromptUsecase) Build(ectx model.EmailContext, instructions string, opts PromptOptions) string {
	tr := opts.Translator
	template := opts.Template
	if strings.TrimSpace(template) == "" {
		template = tr.T(MessagePromptTemplate)
	}

	senderLine := ""
	if opts.IncludeSender && ectx.Sender != "" {
		senderLine = tr.Format(MessagePromptSender, ectx.Sender)
	}

	values := map[string]string{
		PlaceholderSubject:              ectx.Subject,
		PlaceholderSender:               ectx.Sender,
		PlaceholderSenderLine:           senderLine,
		PlaceholderReceiver:             ectx.Receiver,
		PlaceholderReceiverName:         ectx.ReceiverName,
		PlaceholderReceiverOrganization: ectx.ReceiverOrganization,
		PlaceholderBody:                 StripHTML(ectx.Body),
		PlaceholderInstructions:         instructions,
		PlaceholderTone:                 toneDirective(opts.Tone, tr),
		PlaceholderLength:               lengthDirective(opts.Length, tr),
		PlaceholderLanguageDetect:       tr.T(MessagePromptLanguage),
	}

	thread := ectx.Thread
	for {
		values[PlaceholderThread] = renderThread(thread, tr)
		prompt := RenderTemplate(template, values)
		if len(thread) == 0 || p.cfg.TokenLimit <= 0 || p.countTokens(prompt, opts.Model) <= p.cfg.TokenLimit {
			return prompt
		}
		thread = thread[1:]
		p.Logger.Debug("thread context trimmed due to token limit", "remaining", len(thread))
	}
}

// SystemPrompt renders the configured system prompt, or the default one. Tone and length directives
// the prompt does not place itself are appended.
func (p *PromptUsecase) SystemPrompt(chat model.ChatSettings, opts PromptOptions) string {
	tr := opts.Translator
	text := chat.SystemPrompt
	if strings.TrimSpace(text) == "" {
		text = tr.T(MessageSystemPromptDefault)
	}
	tone := toneDirective(opts.Tone, tr)
	length := lengthDirective(opts.Length, tr)

	rendered := RenderTemplate(
		text, map[string]string{
			PlaceholderTone:   tone,
			PlaceholderLength: length,
		},
	)
	if tone != "" && !HasPlaceholder(text, PlaceholderTone) {
		rendered += "\n\n" + tone
	}
	if length != "" && !HasPlaceholder(text, PlaceholderLength) {
		rendered += "\n\n" + length
	}
	return rendered
}

func (p *PromptUsecase) countTokens(prompt, chatModel string) int {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	count, err := p.CountTokens(messages, chatModel)
	if err != nil {
		p.Logger.Warn("count token error, using estimate", "error", err)
		return openai_tools.EstimateTokens(messages)
	}
	return count
}

func renderThread(thread []model.ThreadMessage, tr *local.Translator) string {
	if len(thread) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(tr.T(MessagePromptThread))
	for _, msg := range thread {
		date := ""
		if !msg.Date.IsZero() {
			date = msg.Date.Format(threadDateLayout)
		}
		sb.WriteString(tr.Format(MessagePromptThreadEntry, msg.Author, date, msg.Subject, StripHTML(msg.Body)))
	}
	return sb.String()
}

func toneDirective(tone model.Tone, tr *local.Translator) string {
	switch tone {
	case model.ToneFormal:
		return tr.T(MessageToneFormal)
	case model.ToneNeutral:
		return tr.T(MessageToneNeutral)
	case model.ToneFriendly:
		return tr.T(MessageToneFriendly)
	case model.ToneCasual:
		return tr.T(MessageToneCasual)
	default:
		return ""
	}
}

func lengthDirective(length model.Length, tr *local.Translator) string {
	switch length {
	case model.LengthShort:
		return tr.T(MessageLengthShort)
	case model.LengthMedium:
		return tr.T(MessageLengthMedium)
	case model.LengthLong:
		return tr.T(MessageLengthLong)
	default:
		return ""
	}
}
