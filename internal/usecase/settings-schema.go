package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
)

const (
	minTemperature = 0
	maxTemperature = 2
)

var importNamespaces = []string{
	model.SettingsKeyChat,
	model.SettingsKeySTT,
	model.SettingsKeyExtension,
	model.SettingsKeyUILanguage,
	model.SettingsKeySystemPrompts,
	model.SettingsKeyTone,
	model.SettingsKeyLength,
	model.SettingsKeyLastPrompt,
	model.SettingsKeyLastStats,
	model.SettingsKeyGeneratedEmails,
}

// Pointer fields tell an absent field apart from a zero value.
type chatDocument struct {
	APIURL         *string  `json:"apiUrl"`
	APIKey         *string  `json:"apiKey"`
	Model          *string  `json:"model"`
	Temperature    *float32 `json:"temperature"`
	MaxTokens      *int     `json:"maxTokens"`
	SystemPrompt   *string  `json:"systemPrompt"`
	PromptTemplate *string  `json:"promptTemplate"`
	// Older exports kept these two in chat.
	ContextSize   *int  `json:"contextSize"`
	IncludeSender *bool `json:"includeSender"`
}

type sttDocument struct {
	APIURL   *string `json:"apiUrl"`
	APIKey   *string `json:"apiKey"`
	Model    *string `json:"model"`
	Language *string `json:"language"`
}

type extensionDocument struct {
	ContextSize           *int  `json:"contextSize"`
	IncludeSender         *bool `json:"includeSender"`
	ClearEmailAfterSubmit *bool `json:"clearEmailAfterSubmit"`
}

func knownNamespace(namespace string) bool {
	for _, known := range importNamespaces {
		if known == namespace {
			return true
		}
	}
	return false
}

// decodeNamespace reads one namespace of doc into its typed value. Namespaces with a default are
// returned with it when absent; the others are returned as nil.
func decodeNamespace(namespace string, doc map[string]json.RawMessage) (any, error) {
	raw, present := doc[namespace]
	switch namespace {
	case model.SettingsKeyChat:
		var chatDoc chatDocument
		if err := decodeField(namespace, raw, present, &chatDoc); err != nil {
			return nil, err
		}
		chat := model.ChatSettings{
			APIURL:         deref(chatDoc.APIURL, ""),
			APIKey:         deref(chatDoc.APIKey, ""),
			Model:          deref(chatDoc.Model, model.DefaultChatModel),
			Temperature:    deref(chatDoc.Temperature, model.DefaultTemperature),
			MaxTokens:      deref(chatDoc.MaxTokens, model.DefaultMaxTokens),
			SystemPrompt:   deref(chatDoc.SystemPrompt, ""),
			PromptTemplate: deref(chatDoc.PromptTemplate, ""),
		}
		if err := validateChat(chat); err != nil {
			return nil, &model.FormatError{Reason: "invalid chat settings", Err: err}
		}
		return chat, nil
	case model.SettingsKeySTT:
		var sttDoc sttDocument
		if err := decodeField(namespace, raw, present, &sttDoc); err != nil {
			return nil, err
		}
		return model.SttSettings{
			APIURL:   deref(sttDoc.APIURL, ""),
			APIKey:   deref(sttDoc.APIKey, ""),
			Model:    deref(sttDoc.Model, model.DefaultSTTModel),
			Language: deref(sttDoc.Language, ""),
		}, nil
	case model.SettingsKeyExtension:
		var extensionDoc extensionDocument
		if err := decodeField(namespace, raw, present, &extensionDoc); err != nil {
			return nil, err
		}
		var legacy chatDocument
		if err := decodeField(model.SettingsKeyChat, doc[model.SettingsKeyChat], true, &legacy); err != nil {
			return nil, err
		}
		if extensionDoc.ContextSize == nil {
			extensionDoc.ContextSize = legacy.ContextSize
		}
		if extensionDoc.IncludeSender == nil {
			extensionDoc.IncludeSender = legacy.IncludeSender
		}
		extension := model.ExtensionSettings{
			ContextSize:           deref(extensionDoc.ContextSize, model.DefaultContextSize),
			IncludeSender:         deref(extensionDoc.IncludeSender, false),
			ClearEmailAfterSubmit: deref(extensionDoc.ClearEmailAfterSubmit, false),
		}
		if err := validateExtension(extension); err != nil {
			return nil, &model.FormatError{Reason: "invalid extension settings", Err: err}
		}
		return extension, nil
	case model.SettingsKeyUILanguage:
		var uiLanguage *string
		if err := decodeField(namespace, raw, present, &uiLanguage); err != nil {
			return nil, err
		}
		value := deref(uiLanguage, model.DefaultUILanguage)
		if !local.Supported(value) {
			return nil, &model.FormatError{Reason: fmt.Sprintf("unsupported ui language %q", value)}
		}
		return value, nil
	case model.SettingsKeyTone:
		var tone *string
		if err := decodeField(namespace, raw, present, &tone); err != nil {
			return nil, err
		}
		value := deref(tone, string(model.ToneNone))
		if !model.ValidTone(value) {
			return nil, &model.FormatError{Reason: fmt.Sprintf("unknown tone %q", value)}
		}
		return model.Tone(value), nil
	case model.SettingsKeyLength:
		var length *string
		if err := decodeField(namespace, raw, present, &length); err != nil {
			return nil, err
		}
		value := deref(length, string(model.LengthNone))
		if !model.ValidLength(value) {
			return nil, &model.FormatError{Reason: fmt.Sprintf("unknown length %q", value)}
		}
		return model.Length(value), nil
	case model.SettingsKeyGeneratedEmails:
		var count *int
		if err := decodeField(namespace, raw, present, &count); err != nil {
			return nil, err
		}
		value := deref(count, 0)
		if value < 0 {
			return nil, &model.FormatError{Reason: "generated emails counter is negative"}
		}
		return value, nil
	case model.SettingsKeySystemPrompts:
		if !present {
			return nil, nil
		}
		var prompts model.SystemPromptLibrary
		if err := decodeField(namespace, raw, present, &prompts); err != nil {
			return nil, err
		}
		if prompts == nil {
			prompts = make(model.SystemPromptLibrary)
		}
		return prompts, nil
	case model.SettingsKeyLastPrompt:
		if !present {
			return nil, nil
		}
		var prompt string
		if err := decodeField(namespace, raw, present, &prompt); err != nil {
			return nil, err
		}
		return prompt, nil
	case model.SettingsKeyLastStats:
		if !present || string(raw) == "null" {
			return nil, nil
		}
		var stats model.GenerationStats
		if err := decodeField(namespace, raw, present, &stats); err != nil {
			return nil, err
		}
		return stats, nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownNamespace, namespace)
	}
}

func decodeField(namespace string, raw json.RawMessage, present bool, v any) error {
	if !present || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &model.FormatError{Reason: fmt.Sprintf("invalid %s settings", namespace), Err: err}
	}
	return nil
}

func validateChat(chat model.ChatSettings) error {
	if chat.Temperature < minTemperature || chat.Temperature > maxTemperature {
		return fmt.Errorf("temperature %v out of range [%d, %d]", chat.Temperature, minTemperature, maxTemperature)
	}
	if chat.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", chat.MaxTokens)
	}
	return nil
}

func validateExtension(extension model.ExtensionSettings) error {
	if extension.ContextSize < 0 {
		return fmt.Errorf("context size must not be negative, got %d", extension.ContextSize)
	}
	return nil
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
