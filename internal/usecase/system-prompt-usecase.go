package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
)

type SystemPromptUsecaseDeps struct {
	Settings *SettingsUsecase
}

// SystemPromptUsecase manages the named system prompts the user keeps next to the active one.
type SystemPromptUsecase struct {
	SystemPromptUsecaseDeps
}

func NewSystemPromptUsecase(deps SystemPromptUsecaseDeps) *SystemPromptUsecase {
	return &SystemPromptUsecase{
		SystemPromptUsecaseDeps: deps,
	}
}

func (s *SystemPromptUsecase) List(ctx context.Context) ([]string, error) {
	prompts, err := s.Settings.SystemPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system prompts: %w", err)
	}
	names := make([]string, 0, len(prompts))
	for name := range prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *SystemPromptUsecase) Get(ctx context.Context, name string) (string, error) {
	prompts, err := s.Settings.SystemPrompts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get system prompts: %w", err)
	}
	text, ok := prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrSystemPromptNotFound, name)
	}
	return text, nil
}

// Save adds or overwrites a named prompt.
func (s *SystemPromptUsecase) Save(ctx context.Context, name, text string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ErrEmptySystemPromptName
	}
	prompts, err := s.Settings.SystemPrompts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get system prompts: %w", err)
	}
	prompts[name] = text
	if err = s.Settings.SetSystemPrompts(ctx, prompts); err != nil {
		return fmt.Errorf("failed to save system prompt %s: %w", name, err)
	}
	return nil
}

func (s *SystemPromptUsecase) Delete(ctx context.Context, name string) error {
	prompts, err := s.Settings.SystemPrompts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get system prompts: %w", err)
	}
	if _, ok := prompts[name]; !ok {
		return fmt.Errorf("%w: %s", model.ErrSystemPromptNotFound, name)
	}
	delete(prompts, name)
	if err = s.Settings.SetSystemPrompts(ctx, prompts); err != nil {
		return fmt.Errorf("failed to delete system prompt %s: %w", name, err)
	}
	return nil
}

// Apply makes the named prompt the active chat system prompt.
func (s *SystemPromptUsecase) Apply(ctx context.Context, name string) error {
	text, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	chat, err := s.Settings.Chat(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chat settings: %w", err)
	}
	chat.SystemPrompt = text
	if err = s.Settings.SetChat(ctx, chat); err != nil {
		return fmt.Errorf("failed to apply system prompt %s: %w", name, err)
	}
	return nil
}
