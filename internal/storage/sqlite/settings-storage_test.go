package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *SettingsStorage {
	t.Helper()
	storage, err := Open(context.Background(), filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestSettingsStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	_, err := storage.Get(ctx, "chat")
	assert.ErrorIs(t, err, model.ErrSettingNotFound)

	require.NoError(t, storage.Set(ctx, "chat", []byte(`{"model":"gpt-4o"}`)))
	require.NoError(t, storage.Set(ctx, "chat", []byte(`{"model":"gpt-4o-mini"}`)))

	value, err := storage.Get(ctx, "chat")
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"gpt-4o-mini"}`, string(value))
}

func TestSettingsStorage_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	require.NoError(t, storage.Set(ctx, "chat", []byte(`{}`)))
	require.NoError(t, storage.Set(ctx, "tone", []byte(`"formal"`)))

	require.NoError(
		t, storage.ReplaceAll(
			ctx, map[string][]byte{
				"length":          []byte(`"short"`),
				"generatedEmails": []byte(`3`),
			},
		),
	)

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(
		t, map[string][]byte{
			"length":          []byte(`"short"`),
			"generatedEmails": []byte(`3`),
		}, all,
	)
}

func TestSettingsStorage_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	storage, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, storage.Set(ctx, "uiLanguage", []byte(`"de"`)))
	require.NoError(t, storage.Close())

	storage, err = Open(ctx, path)
	require.NoError(t, err)
	defer storage.Close()
	value, err := storage.Get(ctx, "uiLanguage")
	require.NoError(t, err)
	assert.Equal(t, `"de"`, string(value))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}
