package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type Storage struct {
	// Backend is one of "sqlite", "redis" or "memory".
	Backend    string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH" env-default:"mail-assistant.db"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Mailbox struct {
	MessagePath string `yaml:"message_path" env:"MAILBOX_MESSAGE"`
	ComposePath string `yaml:"compose_path" env:"MAILBOX_DRAFT"`
	MailDir     string `yaml:"mail_dir" env:"MAILBOX_DIR"`
	DraftsDir   string `yaml:"drafts_dir" env:"MAILBOX_DRAFTS_DIR" env-default:"drafts"`
}

type Identity struct {
	Name         string `yaml:"name" env:"IDENTITY_NAME"`
	Email        string `yaml:"email" env:"IDENTITY_EMAIL"`
	Organization string `yaml:"organization" env:"IDENTITY_ORGANIZATION"`
}

type Recording struct {
	Command     []string      `yaml:"command" env:"RECORDING_COMMAND" env-separator:" " env-default:"arecord -q -f S16_LE -r 16000 -c 1 -t wav -"`
	MaxDuration time.Duration `yaml:"max_duration" env:"RECORDING_MAX_DURATION" env-default:"60s"`
}

type Prompt struct {
	TokenLimit int `yaml:"token_limit" env:"PROMPT_TOKEN_LIMIT" env-default:"12000"`
}

type HTTP struct {
	// Timeout of zero leaves requests bounded only by the caller's context.
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"0s"`
}

type Price struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Defaults seed the chat and stt namespaces until the user saves their own settings.
type Defaults struct {
	ChatAPIURL string `yaml:"chat_api_url" env:"CHAT_API_URL" env-default:"https://api.openai.com/v1/chat/completions"`
	ChatAPIKey string `yaml:"-" env:"OPENAI_API_KEY"`
	ChatModel  string `yaml:"chat_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	STTAPIURL  string `yaml:"stt_api_url" env:"STT_API_URL" env-default:"https://api.openai.com/v1/audio/transcriptions"`
	STTModel   string `yaml:"stt_model" env:"STT_MODEL" env-default:"whisper-1"`
	UILanguage string `yaml:"ui_language" env:"UI_LANGUAGE" env-default:"en"`
}

type Config struct {
	Log       Log              `yaml:"log"`
	Storage   Storage          `yaml:"storage"`
	Redis     Redis            `yaml:"redis"`
	Mailbox   Mailbox          `yaml:"mailbox"`
	Identity  Identity         `yaml:"identity"`
	Recording Recording        `yaml:"recording"`
	Prompt    Prompt           `yaml:"prompt"`
	HTTP      HTTP             `yaml:"http"`
	Pricing   map[string]Price `yaml:"pricing"`
	Defaults  Defaults         `yaml:"defaults"`
}

// LoadConfig reads cfgPath when it exists and then applies the environment on top.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			if err = cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
			}
			return &cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", cfgPath, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return &cfg, nil
}
