package in_memory

import (
	"context"
	"sync"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
)

type SettingsStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewSettingsStorage() *SettingsStorage {
	return &SettingsStorage{
		values: make(map[string][]byte),
	}
}

func (s *SettingsStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, model.ErrSettingNotFound
	}
	return clone(value), nil
}

func (s *SettingsStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = clone(value)
	return nil
}

func (s *SettingsStorage) GetAll(_ context.Context) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[string][]byte, len(s.values))
	for key, value := range s.values {
		values[key] = clone(value)
	}
	return values, nil
}

func (s *SettingsStorage) ReplaceAll(_ context.Context, values map[string][]byte) error {
	replaced := make(map[string][]byte, len(values))
	for key, value := range values {
		replaced[key] = clone(value)
	}
	s.mu.Lock()
	s.values = replaced
	s.mu.Unlock()
	return nil
}

func clone(value []byte) []byte {
	return append([]byte(nil), value...)
}
