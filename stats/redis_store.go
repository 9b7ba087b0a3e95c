package stats

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultRedisPrefix is the key prefix used when RedisStore.Prefix is empty.
const DefaultRedisPrefix = "relay:"

// RedisStore is a Store backed by a Redis server.
//
// Running totals are kept in a hash, and the most recent entries are kept in
// a list, newest first.
type RedisStore struct {
	Client *redis.Client

	// Prefix is prepended to every key.
	Prefix string

	// LogSize is the maximum number of entries kept in the log list. A value
	// of zero or less keeps every entry.
	LogSize int64
}

var _ EntryLister = (*RedisStore)(nil)

// Record appends an entry to the log.
func (store *RedisStore) Record(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "could not encode log entry")
	}

	totals := store.key("totals")
	log := store.key("log")

	_, err = store.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, totals, "requests", 1)
		if entry.Size > 0 {
			pipe.HIncrBy(ctx, totals, "bytes", entry.Size)
		}

		pipe.LPush(ctx, log, data)
		if store.LogSize > 0 {
			pipe.LTrim(ctx, log, 0, store.LogSize-1)
		}

		return nil
	})

	return errors.Wrap(err, "could not record log entry")
}

// Entries returns up to n of the most recent log entries, newest first.
func (store *RedisStore) Entries(ctx context.Context, n int64) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	items, err := store.Client.LRange(ctx, store.key("log"), 0, n-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "could not read log entries")
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, errors.Wrap(err, "could not decode log entry")
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// TotalBytes returns the sum of the sizes of all logged responses.
func (store *RedisStore) TotalBytes(ctx context.Context) (int64, error) {
	total, err := store.Client.HGet(ctx, store.key("totals"), "bytes").Int64()
	if err == redis.Nil {
		return 0, nil
	}

	return total, errors.Wrap(err, "could not query total bytes")
}

// Ping checks that the Redis server is reachable.
func (store *RedisStore) Ping(ctx context.Context) error {
	return store.Client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (store *RedisStore) Close() error {
	return store.Client.Close()
}

func (store *RedisStore) key(name string) string {
	prefix := store.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return prefix + name
}
