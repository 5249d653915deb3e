package model

const (
	DefaultChatModel       = "gpt-4o-mini"
	DefaultTemperature     = float32(1.0)
	DefaultMaxTokens       = 2000
	DefaultSTTModel        = "whisper-1"
	DefaultContextSize     = 5
	DefaultUILanguage      = "en"
	SettingsExportVersion  = "1.0"
	SettingsExtensionTitle = "AI Mail Assistant"
)

// Storage keys of the persisted configuration.
const (
	SettingsKeyChat            = "chat"
	SettingsKeySTT             = "stt"
	SettingsKeyExtension       = "extension"
	SettingsKeyUILanguage      = "uiLanguage"
	SettingsKeySystemPrompts   = "systemPrompts"
	SettingsKeyTone            = "tone"
	SettingsKeyLength          = "length"
	SettingsKeyLastPrompt      = "lastPrompt"
	SettingsKeyLastStats       = "lastStats"
	SettingsKeyGeneratedEmails = "generatedEmails"
	SettingsKeyExportInfo      = "exportInfo"
)

type ChatSettings struct {
	APIURL         string  `json:"apiUrl"`
	APIKey         string  `json:"apiKey"`
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	SystemPrompt   string  `json:"systemPrompt"`
	PromptTemplate string  `json:"promptTemplate,omitempty"`
}

// Ready reports whether the fields a completion call needs are set.
func (c ChatSettings) Ready() bool {
	return c.APIURL != "" && c.APIKey != "" && c.Model != ""
}

type SttSettings struct {
	APIURL   string `json:"apiUrl"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

func (s SttSettings) Ready() bool {
	return s.APIURL != "" && s.APIKey != "" && s.Model != ""
}

type ExtensionSettings struct {
	ContextSize           int  `json:"contextSize"`
	IncludeSender         bool `json:"includeSender"`
	ClearEmailAfterSubmit bool `json:"clearEmailAfterSubmit"`
}

type SystemPromptLibrary map[string]string

type ExportInfo struct {
	Version    string `json:"version"`
	ExportDate string `json:"exportDate"`
	Extension  string `json:"extension"`
	Note       string `json:"note"`
}

// Settings is the full persisted configuration.
type Settings struct {
	Chat            ChatSettings        `json:"chat"`
	STT             SttSettings         `json:"stt"`
	Extension       ExtensionSettings   `json:"extension"`
	UILanguage      string              `json:"uiLanguage"`
	SystemPrompts   SystemPromptLibrary `json:"systemPrompts"`
	Tone            Tone                `json:"tone"`
	Length          Length              `json:"length"`
	LastPrompt      string              `json:"lastPrompt"`
	LastStats       *GenerationStats    `json:"lastStats,omitempty"`
	GeneratedEmails int                 `json:"generatedEmails"`
}
