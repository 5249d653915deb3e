package in_memory

import (
	"context"
	"testing"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewSettingsStorage()

	_, err := storage.Get(ctx, "chat")
	assert.ErrorIs(t, err, model.ErrSettingNotFound)

	require.NoError(t, storage.Set(ctx, "chat", []byte(`{"model":"gpt-4o"}`)))
	require.NoError(t, storage.Set(ctx, "tone", []byte(`"formal"`)))

	value, err := storage.Get(ctx, "chat")
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"gpt-4o"}`, string(value))

	value[0] = 'x'
	value, err = storage.Get(ctx, "chat")
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"gpt-4o"}`, string(value))

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, storage.ReplaceAll(ctx, map[string][]byte{"length": []byte(`"short"`)}))
	_, err = storage.Get(ctx, "chat")
	assert.ErrorIs(t, err, model.ErrSettingNotFound)
	all, err = storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"length": []byte(`"short"`)}, all)
}
