package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/render"
)

// openRepository builds the repository cfg selects. closeFn releases any
// backend connection and is never nil.
func openRepository(ctx context.Context, cfg config.Config, latency time.Duration, log logger.Logger) (repo post.Repository, closeFn func() error, err error) {
	noop := func() error { return nil }

	if cfg.Content.Source != content.SourceRedis {
		posts, err := content.Load(cfg.Content, log)
		if err != nil {
			return nil, noop, err
		}
		mem, err := post.NewMemoryRepository(posts, post.WithLatency(latency))
		if err != nil {
			return nil, noop, fmt.Errorf("invalid seed: %w", err)
		}
		log.Info("Loaded posts", logger.String("source", cfg.Content.Source), logger.Int("count", mem.Len()))
		return mem, noop, nil
	}

	client, err := post.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, noop, err
	}
	rr := post.NewRedisRepository(client, cfg.Redis, log)
	if cfg.Redis.Seed {
		posts, err := content.Load(cfg.Content, log)
		if err != nil {
			client.Close()
			return nil, noop, err
		}
		if err := rr.Seed(ctx, posts); err != nil {
			client.Close()
			return nil, noop, err
		}
	}
	log.Info("Using Redis posts", logger.String("address", cfg.Redis.Address),
		logger.String("prefix", cfg.Redis.Prefix), logger.Bool("seeded", cfg.Redis.Seed))
	return rr, client.Close, nil
}

func newRenderer(cfg config.Config) (*render.Renderer, error) {
	return render.New(render.Options{
		SiteTitle:  cfg.SiteTitle,
		BaseURL:    cfg.BaseURL,
		DateLayout: cfg.DateLayout,
	})
}
