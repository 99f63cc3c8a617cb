package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// RedisStore keeps the bank under three keys:
//
//	<prefix>:questions  JSON array
//	<prefix>:hints      hash of topic -> markdown
//	<prefix>:pin        bcrypt hash
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Repo = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ipquiz"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, password, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(client, prefix), nil
}

func (r *RedisStore) key(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	data, err := r.client.Get(ctx, r.key("questions")).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	bank := quiz.Bank{}
	if err := json.Unmarshal([]byte(data), &bank); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return bank, nil
}

func (r *RedisStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	if bank == nil {
		bank = quiz.Bank{}
	}
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	if err := r.client.Set(ctx, r.key("questions"), data, 0).Err(); err != nil {
		return fmt.Errorf("set questions: %w", err)
	}
	return nil
}

// LoadHints reads the hint hash. A marker field distinguishes an empty map
// from one that was never saved.
func (r *RedisStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	fields, err := r.client.HGetAll(ctx, r.key("hints")).Result()
	if err != nil {
		return nil, fmt.Errorf("get hints: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	hints := quiz.HintMap{}
	for k, v := range fields {
		if k == hintsMarker {
			continue
		}
		hints[k] = v
	}
	return hints, nil
}

const hintsMarker = "\x00saved"

func (r *RedisStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	values := make([]any, 0, 2*len(hints)+2)
	values = append(values, hintsMarker, "1")
	for k, v := range hints {
		values = append(values, k, v)
	}

	key := r.key("hints")
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace hints: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadPINHash(ctx context.Context) (string, error) {
	hash, err := r.client.Get(ctx, r.key("pin")).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get pin: %w", err)
	}
	return hash, nil
}

func (r *RedisStore) SavePINHash(ctx context.Context, hash string) error {
	if err := r.client.Set(ctx, r.key("pin"), hash, 0).Err(); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
