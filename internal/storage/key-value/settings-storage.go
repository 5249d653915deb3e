package key_value

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	settingsKeyPrefix = "settings_"
	scanCount         = 100
)

type SettingsStorage struct {
	rdb *redis.Client
}

func NewSettingsStorage(rdb *redis.Client) *SettingsStorage {
	return &SettingsStorage{
		rdb: rdb,
	}
}

func (s *SettingsStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, getSettingKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSettingNotFound
		} else {
			return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
		}
	}
	return value, nil
}

func (s *SettingsStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, getSettingKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStorage) GetAll(ctx context.Context) (map[string][]byte, error) {
	keys, err := s.settingKeys(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string][]byte, len(keys))
	for _, redisKey := range keys {
		value, err := s.rdb.Get(ctx, redisKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get setting %s: %w", redisKey, err)
		}
		values[strings.TrimPrefix(redisKey, settingsKeyPrefix)] = value
	}
	return values, nil
}

func (s *SettingsStorage) ReplaceAll(ctx context.Context, values map[string][]byte) error {
	keys, err := s.settingKeys(ctx)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(
		ctx, func(pipe redis.Pipeliner) error {
			if len(keys) > 0 {
				pipe.Del(ctx, keys...)
			}
			for key, value := range values {
				pipe.Set(ctx, getSettingKey(key), value, 0)
			}
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

func (s *SettingsStorage) settingKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, settingsKeyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}
	return keys, nil
}

func getSettingKey(key string) string {
	return fmt.Sprintf("%s%s", settingsKeyPrefix, key)
}
