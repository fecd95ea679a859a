package draftcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

const keyPrefix = "registrationData:"

// RedisClient is the subset of redis commands the store needs.
type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}

var _ RedisClient = (*redClient)(nil)

type redClient struct {
	cli *redis.Client
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (RedisClient, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("draftcache: redis ping: %w", err)
	}
	return &redClient{cli: c}, nil
}

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redClient) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *redClient) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *redClient) Close() error { return c.cli.Close() }

// RedisStore keeps the draft JSON in redis under registrationData:<uuid>; the
// browser holds only the signed uuid.
type RedisStore struct {
	client RedisClient
	codec  cookieCodec
}

// NewRedisStore builds a RedisStore on client.
func NewRedisStore(client RedisClient, cfg Config) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, codec: codec}, nil
}

func (s *RedisStore) stateKey(id string) string {
	return keyPrefix + id
}

func (s *RedisStore) currentID(r *http.Request) string {
	var id string
	if ok, err := s.codec.read(r, &id); !ok || err != nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// Save stores d, reusing the browser's key when it has one.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, d form.RegistrationDraft) error {
	id := s.currentID(r)
	if id == "" {
		id = uuid.NewString()
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.client.Set(r.Context(), s.stateKey(id), data, s.codec.ttl); err != nil {
		return fmt.Errorf("draftcache: redis set: %w", err)
	}
	return s.codec.write(w, id)
}

// Load fetches the draft for the browser's key.
func (s *RedisStore) Load(r *http.Request) (form.RegistrationDraft, bool, error) {
	id := s.currentID(r)
	if id == "" {
		return form.RegistrationDraft{}, false, nil
	}
	raw, err := s.client.Get(r.Context(), s.stateKey(id))
	if errors.Is(err, redis.Nil) {
		return form.RegistrationDraft{}, false, nil
	}
	if err != nil {
		return form.RegistrationDraft{}, false, fmt.Errorf("draftcache: redis get: %w", err)
	}
	var d form.RegistrationDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return form.RegistrationDraft{}, false, fmt.Errorf("draftcache: decode: %w", err)
	}
	return d, true, nil
}

// Clear deletes the stored draft and expires the cookie.
func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	defer s.codec.expire(w)
	id := s.currentID(r)
	if id == "" {
		return nil
	}
	if err := s.client.Del(r.Context(), s.stateKey(id)); err != nil {
		return fmt.Errorf("draftcache: redis del: %w", err)
	}
	return nil
}
