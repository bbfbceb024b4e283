package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/model"
)

const (
	defaultRequestTimeout = 2 * time.Second
	defaultMaxRetries     = 3
	defaultRetryInterval  = 50 * time.Millisecond
	connectionTimeout     = 5 * time.Second
)

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

// RedisConfig configures the Redis-backed repository.
type RedisConfig struct {
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	Prefix         string        `mapstructure:"prefix"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	MaxRetries     int           `mapstructure:"maxRetries"`
	RetryInterval  time.Duration `mapstructure:"retryInterval"`
	Seed           bool          `mapstructure:"seed"`
}

func (c *RedisConfig) setDefaults() {
	if c.Prefix == "" {
		c.Prefix = "folio"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRetryInterval
	}
}

// NewRedisClient connects and pings. Client-side retries are disabled because
// the repository retries whole reads itself.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Address,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisRepository reads posts stored by Seed:
//
//	<prefix>:order  list of id keys in seed order
//	<prefix>:posts  hash id key -> JSON post
//	<prefix>:slugs  hash slug -> id key
type RedisRepository struct {
	client redis.UniversalClient
	cfg    RedisConfig
	log    logger.Logger
}

// NewRedisRepository wraps client. The client's lifetime stays with the caller.
func NewRedisRepository(client redis.UniversalClient, cfg RedisConfig, log logger.Logger) *RedisRepository {
	cfg.setDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisRepository{
		client: client,
		cfg:    cfg,
		log:    log.With(logger.String("repository", "redis")),
	}
}

func (r *RedisRepository) orderKey() string { return r.cfg.Prefix + ":order" }
func (r *RedisRepository) postsKey() string { return r.cfg.Prefix + ":posts" }
func (r *RedisRepository) slugsKey() string { return r.cfg.Prefix + ":slugs" }

// Seed replaces the stored collection with posts in one transaction.
func (r *RedisRepository) Seed(ctx context.Context, posts []model.Post) error {
	if err := Validate(posts); err != nil {
		return err
	}

	order := make([]interface{}, 0, len(posts))
	bodies := make(map[string]interface{}, len(posts))
	slugs := make(map[string]interface{}, len(posts))
	for _, p := range posts {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode post %s: %w", p.ID, err)
		}
		key := p.ID.Key()
		order = append(order, key)
		bodies[key] = data
		if p.HasSlug() {
			slugs[p.Slug] = key
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.orderKey(), r.postsKey(), r.slugsKey())
		if len(order) == 0 {
			return nil
		}
		pipe.RPush(ctx, r.orderKey(), order...)
		pipe.HSet(ctx, r.postsKey(), bodies)
		if len(slugs) > 0 {
			pipe.HSet(ctx, r.slugsKey(), slugs)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed redis posts: %w", err)
	}
	r.log.Info("Seeded posts", logger.Int("count", len(posts)))
	return nil
}

// ListPosts reads the collection in seed order.
func (r *RedisRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := retryRead(ctx, r, "list posts", func(ctx context.Context) ([]model.Post, error) {
		keys, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return []model.Post{}, nil
		}
		raw, err := r.client.HMGet(ctx, r.postsKey(), keys...).Result()
		if err != nil {
			return nil, err
		}
		posts := make([]model.Post, 0, len(raw))
		for i, v := range raw {
			s, ok := v.(string)
			if !ok {
				return nil, backoff.Permanent(fmt.Errorf("post %s listed but not stored", keys[i]))
			}
			p, err := decodePost(s)
			if err != nil {
				return nil, err
			}
			posts = append(posts, p)
		}
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostBySlug resolves slug through the slug index.
func (r *RedisRepository) GetPostBySlug(ctx context.Context, slug string) (model.Post, bool, error) {
	if slug == "" {
		return model.Post{}, false, nil
	}
	res, err := retryRead(ctx, r, "get post by slug", func(ctx context.Context) (Lookup, error) {
		key, err := r.client.HGet(ctx, r.slugsKey(), slug).Result()
		if errors.Is(err, redis.Nil) {
			return Lookup{}, nil
		}
		if err != nil {
			return Lookup{}, err
		}
		s, err := r.client.HGet(ctx, r.postsKey(), key).Result()
		if errors.Is(err, redis.Nil) {
			return Lookup{}, nil
		}
		if err != nil {
			return Lookup{}, err
		}
		p, err := decodePost(s)
		if err != nil {
			return Lookup{}, err
		}
		return Lookup{Post: p, Found: true}, nil
	})
	if err != nil {
		return model.Post{}, false, err
	}
	return res.Post, res.Found, nil
}

// retryRead runs read with a per-attempt timeout and bounded exponential
// backoff. The caller's cancellation ends retries at once and is returned
// as is; anything else that survives the retries wraps ErrUnavailable.
func retryRead[T any](ctx context.Context, r *RedisRepository, op string, read func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.RetryInterval
	b.MaxElapsedTime = 0

	attempt := 0
	v, err := backoff.RetryWithData(func() (T, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
		v, err := read(actx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(ctx.Err())
		}
		r.log.Warn("Redis read failed",
			logger.String("op", op),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		return v, err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx))
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		var zero T
		return zero, ctx.Err()
	}
	var zero T
	return zero, unavailable(op, err)
}

func decodePost(s string) (model.Post, error) {
	var p model.Post
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return model.Post{}, backoff.Permanent(fmt.Errorf("decode stored post: %w", err))
	}
	return p, nil
}
