package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
)

// SettingsStorage keeps one JSON document per settings key.
type SettingsStorage interface {
	// Get returns model.ErrSettingNotFound for keys never set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	GetAll(ctx context.Context) (map[string][]byte, error)
	// ReplaceAll drops every stored key and stores values instead.
	ReplaceAll(ctx context.Context, values map[string][]byte) error
}

type SettingsUsecaseDeps struct {
	Storage SettingsStorage
}

type SettingsUsecase struct {
	SettingsUsecaseDeps
	defaults config.Defaults
	now      func() time.Time
}

func NewSettingsUsecase(deps SettingsUsecaseDeps, defaults config.Defaults) *SettingsUsecase {
	return &SettingsUsecase{
		SettingsUsecaseDeps: deps,
		defaults:            defaults,
		now:                 time.Now,
	}
}

func (s *SettingsUsecase) Chat(ctx context.Context) (model.ChatSettings, error) {
	chat := model.ChatSettings{
		APIURL:      s.defaults.ChatAPIURL,
		APIKey:      s.defaults.ChatAPIKey,
		Model:       orDefault(s.defaults.ChatModel, model.DefaultChatModel),
		Temperature: model.DefaultTemperature,
		MaxTokens:   model.DefaultMaxTokens,
	}
	if _, err := s.get(ctx, model.SettingsKeyChat, &chat); err != nil {
		return model.ChatSettings{}, err
	}
	return chat, nil
}

func (s *SettingsUsecase) SetChat(ctx context.Context, chat model.ChatSettings) error {
	if err := validateChat(chat); err != nil {
		return err
	}
	return s.set(ctx, model.SettingsKeyChat, chat)
}

func (s *SettingsUsecase) STT(ctx context.Context) (model.SttSettings, error) {
	stt := model.SttSettings{
		APIURL: s.defaults.STTAPIURL,
		APIKey: s.defaults.ChatAPIKey,
		Model:  orDefault(s.defaults.STTModel, model.DefaultSTTModel),
	}
	if _, err := s.get(ctx, model.SettingsKeySTT, &stt); err != nil {
		return model.SttSettings{}, err
	}
	return stt, nil
}

func (s *SettingsUsecase) SetSTT(ctx context.Context, stt model.SttSettings) error {
	return s.set(ctx, model.SettingsKeySTT, stt)
}

func (s *SettingsUsecase) Extension(ctx context.Context) (model.ExtensionSettings, error) {
	extension := model.ExtensionSettings{
		ContextSize: model.DefaultContextSize,
	}
	if _, err := s.get(ctx, model.SettingsKeyExtension, &extension); err != nil {
		return model.ExtensionSettings{}, err
	}
	return extension, nil
}

func (s *SettingsUsecase) SetExtension(ctx context.Context, extension model.ExtensionSettings) error {
	if err := validateExtension(extension); err != nil {
		return err
	}
	return s.set(ctx, model.SettingsKeyExtension, extension)
}

func (s *SettingsUsecase) UILanguage(ctx context.Context) (string, error) {
	uiLanguage := orDefault(s.defaults.UILanguage, model.DefaultUILanguage)
	if _, err := s.get(ctx, model.SettingsKeyUILanguage, &uiLanguage); err != nil {
		return "", err
	}
	return uiLanguage, nil
}

func (s *SettingsUsecase) SetUILanguage(ctx context.Context, uiLanguage string) error {
	if !local.Supported(uiLanguage) {
		return fmt.Errorf("unsupported ui language %q", uiLanguage)
	}
	return s.set(ctx, model.SettingsKeyUILanguage, uiLanguage)
}

// Translator returns the translator for the stored ui language.
func (s *SettingsUsecase) Translator(ctx context.Context) *local.Translator {
	uiLanguage, err := s.UILanguage(ctx)
	if err != nil {
		uiLanguage = model.DefaultUILanguage
	}
	return NewTranslator(uiLanguage)
}

func (s *SettingsUsecase) Tone(ctx context.Context) (model.Tone, error) {
	var tone string
	if _, err := s.get(ctx, model.SettingsKeyTone, &tone); err != nil {
		return model.ToneNone, err
	}
	return model.ParseTone(tone), nil
}

func (s *SettingsUsecase) SetTone(ctx context.Context, tone model.Tone) error {
	if !model.ValidTone(string(tone)) {
		return fmt.Errorf("unknown tone %q", tone)
	}
	return s.set(ctx, model.SettingsKeyTone, tone)
}

func (s *SettingsUsecase) Length(ctx context.Context) (model.Length, error) {
	var length string
	if _, err := s.get(ctx, model.SettingsKeyLength, &length); err != nil {
		return model.LengthNone, err
	}
	return model.ParseLength(length), nil
}

func (s *SettingsUsecase) SetLength(ctx context.Context, length model.Length) error {
	if !model.ValidLength(string(length)) {
		return fmt.Errorf("unknown length %q", length)
	}
	return s.set(ctx, model.SettingsKeyLength, length)
}

func (s *SettingsUsecase) SystemPrompts(ctx context.Context) (model.SystemPromptLibrary, error) {
	prompts := make(model.SystemPromptLibrary)
	if _, err := s.get(ctx, model.SettingsKeySystemPrompts, &prompts); err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = make(model.SystemPromptLibrary)
	}
	return prompts, nil
}

func (s *SettingsUsecase) SetSystemPrompts(ctx context.Context, prompts model.SystemPromptLibrary) error {
	return s.set(ctx, model.SettingsKeySystemPrompts, prompts)
}

func (s *SettingsUsecase) LastPrompt(ctx context.Context) (string, error) {
	var prompt string
	if _, err := s.get(ctx, model.SettingsKeyLastPrompt, &prompt); err != nil {
		return "", err
	}
	return prompt, nil
}

func (s *SettingsUsecase) SaveLastPrompt(ctx context.Context, prompt string) error {
	return s.set(ctx, model.SettingsKeyLastPrompt, prompt)
}

// LastStats returns nil when nothing was generated yet.
func (s *SettingsUsecase) LastStats(ctx context.Context) (*model.GenerationStats, error) {
	var stats model.GenerationStats
	found, err := s.get(ctx, model.SettingsKeyLastStats, &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (s *SettingsUsecase) SaveStats(ctx context.Context, stats model.GenerationStats) error {
	return s.set(ctx, model.SettingsKeyLastStats, stats)
}

func (s *SettingsUsecase) GeneratedEmails(ctx context.Context) (int, error) {
	var count int
	if _, err := s.get(ctx, model.SettingsKeyGeneratedEmails, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SettingsUsecase) IncrementGeneratedEmails(ctx context.Context) (int, error) {
	count, err := s.GeneratedEmails(ctx)
	if err != nil {
		return 0, err
	}
	count++
	if err = s.set(ctx, model.SettingsKeyGeneratedEmails, count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetAll returns every namespace with defaults applied.
func (s *SettingsUsecase) GetAll(ctx context.Context) (model.Settings, error) {
	var (
		settings model.Settings
		err      error
	)
	if settings.Chat, err = s.Chat(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.STT, err = s.STT(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.Extension, err = s.Extension(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.UILanguage, err = s.UILanguage(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.SystemPrompts, err = s.SystemPrompts(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.Tone, err = s.Tone(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.Length, err = s.Length(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.LastPrompt, err = s.LastPrompt(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.LastStats, err = s.LastStats(ctx); err != nil {
		return model.Settings{}, err
	}
	if settings.GeneratedEmails, err = s.GeneratedEmails(ctx); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// GetNamespace returns one namespace as JSON, defaults applied.
func (s *SettingsUsecase) GetNamespace(ctx context.Context, namespace string) (json.RawMessage, error) {
	var (
		value any
		err   error
	)
	switch namespace {
	case model.SettingsKeyChat:
		value, err = s.Chat(ctx)
	case model.SettingsKeySTT:
		value, err = s.STT(ctx)
	case model.SettingsKeyExtension:
		value, err = s.Extension(ctx)
	case model.SettingsKeyUILanguage:
		value, err = s.UILanguage(ctx)
	case model.SettingsKeySystemPrompts:
		value, err = s.SystemPrompts(ctx)
	case model.SettingsKeyTone:
		value, err = s.Tone(ctx)
	case model.SettingsKeyLength:
		value, err = s.Length(ctx)
	case model.SettingsKeyLastPrompt:
		value, err = s.LastPrompt(ctx)
	case model.SettingsKeyLastStats:
		value, err = s.LastStats(ctx)
	case model.SettingsKeyGeneratedEmails:
		value, err = s.GeneratedEmails(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownNamespace, namespace)
	}
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", namespace, err)
	}
	return raw, nil
}

// SetNamespace validates raw the same way an import does and stores it.
func (s *SettingsUsecase) SetNamespace(ctx context.Context, namespace string, raw json.RawMessage) error {
	if !knownNamespace(namespace) {
		return fmt.Errorf("%w: %s", model.ErrUnknownNamespace, namespace)
	}
	doc := map[string]json.RawMessage{namespace: raw}
	value, err := decodeNamespace(namespace, doc)
	if err != nil {
		return err
	}
	return s.set(ctx, namespace, value)
}

// Export writes the full configuration, secrets included, with an exportInfo envelope.
func (s *SettingsUsecase) Export(ctx context.Context, w io.Writer) error {
	stored, err := s.Storage.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	doc := make(map[string]any, len(stored)+8)
	for key, value := range stored {
		doc[key] = json.RawMessage(value)
	}

	settings, err := s.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	doc[model.SettingsKeyChat] = settings.Chat
	doc[model.SettingsKeySTT] = settings.STT
	doc[model.SettingsKeyExtension] = settings.Extension
	doc[model.SettingsKeyUILanguage] = settings.UILanguage
	doc[model.SettingsKeyTone] = settings.Tone
	doc[model.SettingsKeyLength] = settings.Length
	doc[model.SettingsKeyGeneratedEmails] = settings.GeneratedEmails

	tr := NewTranslator(settings.UILanguage)
	doc[model.SettingsKeyExportInfo] = model.ExportInfo{
		Version:    model.SettingsExportVersion,
		ExportDate: s.now().UTC().Format(time.RFC3339),
		Extension:  model.SettingsExtensionTitle,
		Note:       tr.T(MessageExportNote),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Import replaces the whole configuration with the document read from r. The document must carry a
// chat namespace and pass validation, otherwise storage is left untouched.
func (s *SettingsUsecase) Import(ctx context.Context, r io.Reader) error {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return &model.FormatError{Reason: "not a JSON object", Err: err}
	}
	if _, ok := doc[model.SettingsKeyChat]; !ok {
		return &model.FormatError{Reason: "missing chat settings"}
	}

	values := make(map[string][]byte, len(importNamespaces))
	for _, namespace := range importNamespaces {
		value, err := decodeNamespace(namespace, doc)
		if err != nil {
			return err
		}
		if value == nil {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", namespace, err)
		}
		values[namespace] = raw
	}

	if err := s.Storage.ReplaceAll(ctx, values); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// ExportFileName is the default file name of an export made at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("ai-mail-assistant-settings-%s.json", t.Format("2006-01-02"))
}

func (s *SettingsUsecase) get(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.Storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrSettingNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *SettingsUsecase) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err = s.Storage.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
