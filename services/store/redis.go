package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements StateStore on Redis: one string key per target for
// the current snapshot, one list per target for the pruned history.
type RedisStore struct {
	client           *redis.Client
	keyPrefix        string
	historyMaxLength int64
}

// NewRedisStore creates a new Redis-backed state store
func NewRedisStore(addr string, db int, keyPrefix string, historyMaxLength int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client:           client,
		keyPrefix:        keyPrefix,
		historyMaxLength: int64(historyMaxLength),
	}
}

func (s *RedisStore) stateKey(target string) string {
	return s.keyPrefix + ":state:" + target
}

func (s *RedisStore) historyKey(target string) string {
	return s.keyPrefix + ":history:" + target
}

// CurrentSnapshot returns the last stored snapshot for a target
func (s *RedisStore) CurrentSnapshot(ctx context.Context, target string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.stateKey(target)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveSnapshot replaces the stored snapshot for the snapshot's target
func (s *RedisStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(snapshot.Target), data, 0).Err()
}

// AppendHistory prepends a change event and trims the list to the maximum length
func (s *RedisStore) AppendHistory(ctx context.Context, target string, entry *HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := s.historyKey(target)
	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return s.client.LTrim(ctx, key, 0, s.historyMaxLength-1).Err()
}

// History returns up to limit entries, newest first
func (s *RedisStore) History(ctx context.Context, target string, limit int64) ([]HistoryEntry, error) {
	if limit <= 0 || limit > s.historyMaxLength {
		limit = s.historyMaxLength
	}

	items, err := s.client.LRange(ctx, s.historyKey(target), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(items))
	for _, item := range items {
		var entry HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
