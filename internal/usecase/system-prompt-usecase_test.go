package usecase

import (
	"context"
	"testing"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPromptUsecase(t *testing.T) {
	ctx := context.Background()
	settings := newTestSettings(t)
	prompts := NewSystemPromptUsecase(SystemPromptUsecaseDeps{Settings: settings})

	names, err := prompts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, prompts.Save(ctx, "support", "You answer support requests."))
	require.NoError(t, prompts.Save(ctx, " sales ", "You answer sales questions."))
	assert.ErrorIs(t, prompts.Save(ctx, "  ", "nameless"), model.ErrEmptySystemPromptName)

	names, err = prompts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "support"}, names)

	text, err := prompts.Get(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "You answer sales questions.", text)

	require.NoError(t, prompts.Save(ctx, "sales", "Updated."))
	text, err = prompts.Get(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "Updated.", text)

	require.NoError(t, prompts.Apply(ctx, "support"))
	chat, err := settings.Chat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "You answer support requests.", chat.SystemPrompt)

	require.NoError(t, prompts.Delete(ctx, "support"))
	_, err = prompts.Get(ctx, "support")
	assert.ErrorIs(t, err, model.ErrSystemPromptNotFound)
	assert.ErrorIs(t, prompts.Delete(ctx, "support"), model.ErrSystemPromptNotFound)
	assert.ErrorIs(t, prompts.Apply(ctx, "support"), model.ErrSystemPromptNotFound)
}
