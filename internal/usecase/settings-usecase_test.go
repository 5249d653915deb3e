package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	in_memory "github.com/iamvkosarev/ai-mail-assistant/internal/storage/in-memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUsecase_Defaults(t *testing.T) {
	ctx := context.Background()
	settings := NewSettingsUsecase(
		SettingsUsecaseDeps{Storage: in_memory.NewSettingsStorage()},
		config.Defaults{
			ChatAPIURL: "https://api.openai.com/v1/chat/completions",
			ChatAPIKey: "sk-env",
			STTAPIURL:  "https://api.openai.com/v1/audio/transcriptions",
		},
	)

	all, err := settings.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", all.Chat.APIURL)
	assert.Equal(t, "sk-env", all.Chat.APIKey)
	assert.Equal(t, model.DefaultChatModel, all.Chat.Model)
	assert.Equal(t, model.DefaultTemperature, all.Chat.Temperature)
	assert.Equal(t, model.DefaultMaxTokens, all.Chat.MaxTokens)
	assert.Equal(t, "sk-env", all.STT.APIKey, "stt key falls back to the chat key")
	assert.Equal(t, model.DefaultSTTModel, all.STT.Model)
	assert.Equal(t, model.DefaultContextSize, all.Extension.ContextSize)
	assert.Equal(t, model.DefaultUILanguage, all.UILanguage)
	assert.Equal(t, model.ToneNone, all.Tone)
	assert.Equal(t, model.LengthNone, all.Length)
	assert.Empty(t, all.SystemPrompts)
	assert.Empty(t, all.LastPrompt)
	assert.Nil(t, all.LastStats)
	assert.Zero(t, all.GeneratedEmails)
}

func TestSettingsUsecase_SetChatValidates(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	chat := readyChat("https://example.com/v1/chat/completions")
	chat.Temperature = 2.5
	assert.Error(t, settings.SetChat(ctx, chat))

	chat.Temperature = 0.2
	chat.MaxTokens = 0
	assert.Error(t, settings.SetChat(ctx, chat))

	chat.MaxTokens = 100
	require.NoError(t, settings.SetChat(ctx, chat))
	stored, err := settings.Chat(ctx)
	require.NoError(t, err)
	assert.Equal(t, chat, stored)
}

func TestSettingsUsecase_ToneAndLength(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	require.NoError(t, settings.SetTone(ctx, model.ToneFriendly))
	require.NoError(t, settings.SetLength(ctx, model.LengthShort))
	assert.Error(t, settings.SetTone(ctx, model.Tone("angry")))
	assert.Error(t, settings.SetLength(ctx, model.Length("huge")))

	tone, err := settings.Tone(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ToneFriendly, tone)
	length, err := settings.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LengthShort, length)
}

func TestSettingsUsecase_UILanguage(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	assert.Error(t, settings.SetUILanguage(ctx, "fr"))
	require.NoError(t, settings.SetUILanguage(ctx, "de"))
	assert.Equal(t, "Modell: %s", settings.Translator(ctx).T(MessageStatsModel))
}

func TestSettingsUsecase_IncrementGeneratedEmails(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	for want := 1; want <= 3; want++ {
		count, err := settings.IncrementGeneratedEmails(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
	count, err := settings.GeneratedEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSettingsUsecase_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestSettings(t)
	source.now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }

	chat := readyChat("https://example.com/v1/chat/completions")
	chat.SystemPrompt = "Be brief. {tone}"
	stt := model.SttSettings{APIURL: "https://example.com/v1/audio/transcriptions", APIKey: "sk-stt", Model: "whisper-1", Language: "de"}
	extension := model.ExtensionSettings{ContextSize: 3, IncludeSender: true, ClearEmailAfterSubmit: true}
	require.NoError(t, source.SetChat(ctx, chat))
	require.NoError(t, source.SetSTT(ctx, stt))
	require.NoError(t, source.SetExtension(ctx, extension))
	require.NoError(t, source.SetTone(ctx, model.ToneFormal))
	require.NoError(t, source.SetSystemPrompts(ctx, model.SystemPromptLibrary{"short": "Keep it short."}))
	require.NoError(t, source.SaveLastPrompt(ctx, "decline politely"))
	_, err := source.IncrementGeneratedEmails(ctx)
	require.NoError(t, err)

	var exported bytes.Buffer
	require.NoError(t, source.Export(ctx, &exported))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(exported.Bytes(), &doc))
	var info model.ExportInfo
	require.NoError(t, json.Unmarshal(doc[model.SettingsKeyExportInfo], &info))
	assert.Equal(t, model.SettingsExportVersion, info.Version)
	assert.Equal(t, "2024-05-17T09:30:00Z", info.ExportDate)
	assert.Equal(t, model.SettingsExtensionTitle, info.Extension)
	assert.NotEmpty(t, info.Note)

	target := newTestSettings(t)
	require.NoError(t, target.Import(ctx, bytes.NewReader(exported.Bytes())))

	want, err := source.GetAll(ctx)
	require.NoError(t, err)
	got, err := target.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var again bytes.Buffer
	target.now = source.now
	require.NoError(t, target.Export(ctx, &again))
	assert.JSONEq(t, exported.String(), again.String())
}

func TestSettingsUsecase_ImportAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	doc := `{"chat":{"apiUrl":"https://example.com/v1/chat/completions","apiKey":"sk-1","contextSize":7,"includeSender":true}}`
	require.NoError(t, settings.Import(ctx, strings.NewReader(doc)))

	chat, err := settings.Chat(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChatModel, chat.Model)
	assert.Equal(t, model.DefaultTemperature, chat.Temperature)
	assert.Equal(t, model.DefaultMaxTokens, chat.MaxTokens)

	extension, err := settings.Extension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, extension.ContextSize)
	assert.True(t, extension.IncludeSender)
}

func TestSettingsUsecase_ImportReplacesEverything(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)
	require.NoError(t, settings.SaveLastPrompt(ctx, "old prompt"))
	require.NoError(t, settings.SetTone(ctx, model.ToneCasual))

	require.NoError(t, settings.Import(ctx, strings.NewReader(`{"chat":{}}`)))

	lastPrompt, err := settings.LastPrompt(ctx)
	require.NoError(t, err)
	assert.Empty(t, lastPrompt)
	tone, err := settings.Tone(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ToneNone, tone)
}

func TestSettingsUsecase_ImportRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `chat = 1`},
		{name: "missing chat", doc: `{"stt":{}}`},
		{name: "chat not an object", doc: `{"chat":"x"}`},
		{name: "temperature out of range", doc: `{"chat":{"temperature":3}}`},
		{name: "max tokens zero", doc: `{"chat":{"maxTokens":0}}`},
		{name: "unknown tone", doc: `{"chat":{},"tone":"angry"}`},
		{name: "unknown length", doc: `{"chat":{},"length":"epic"}`},
		{name: "unsupported ui language", doc: `{"chat":{},"uiLanguage":"fr"}`},
		{name: "negative context size", doc: `{"chat":{},"extension":{"contextSize":-1}}`},
		{name: "negative counter", doc: `{"chat":{},"generatedEmails":-2}`},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				ctx := context.Background()
				settings := newTestSettings(t)
				require.NoError(t, settings.SaveLastPrompt(ctx, "kept"))

				err := settings.Import(ctx, strings.NewReader(tt.doc))
				var formatErr *model.FormatError
				require.ErrorAs(t, err, &formatErr)

				lastPrompt, err := settings.LastPrompt(ctx)
				require.NoError(t, err)
				assert.Equal(t, "kept", lastPrompt, "storage is untouched after a rejected import")
			},
		)
	}
}

func TestSettingsUsecase_Namespaces(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)

	_, err := settings.GetNamespace(ctx, "theme")
	assert.ErrorIs(t, err, model.ErrUnknownNamespace)
	assert.ErrorIs(t, settings.SetNamespace(ctx, "theme", json.RawMessage(`{}`)), model.ErrUnknownNamespace)

	var formatErr *model.FormatError
	assert.ErrorAs(t, settings.SetNamespace(ctx, model.SettingsKeyTone, json.RawMessage(`"loud"`)), &formatErr)

	require.NoError(t, settings.SetNamespace(ctx, model.SettingsKeyExtension, json.RawMessage(`{"contextSize":2}`)))
	raw, err := settings.GetNamespace(ctx, model.SettingsKeyExtension)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contextSize":2,"includeSender":false,"clearEmailAfterSubmit":false}`, string(raw))
}

func TestExportFileName(t *testing.T) {
	name := ExportFileName(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "ai-mail-assistant-settings-2024-01-02.json", name)
}
