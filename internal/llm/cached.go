package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/cache"
)

// Cached serves completions from Store when present and records new ones.
// Failed generations are never cached.
type Cached struct {
	Inner Generator
	Store *cache.CompletionCache
	// Model is part of the cache key so switching models misses.
	Model string
}

func (c *Cached) Name() string { return c.Inner.Name() }

func (c *Cached) Complete(ctx context.Context, prompt string) (string, error) {
	if c.Store == nil {
		return c.Inner.Complete(ctx, prompt)
	}
	key := cache.CompletionKey(c.Inner.Name(), c.Model, prompt)
	hit, err := c.Store.Get(ctx, key)
	switch {
	case err == nil:
		log.Debug().Str("provider", c.Inner.Name()).Str("key", key[:12]).Msg("completion cache hit")
		return hit.Text, nil
	case !errors.Is(err, cache.ErrMiss):
		log.Warn().Err(err).Msg("completion cache read failed")
	}
	text, err := c.Inner.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.Store.Put(ctx, key, cache.Completion{Provider: c.Inner.Name(), Model: c.Model, Text: text}); err != nil {
		log.Warn().Err(err).Msg("completion cache write failed")
	}
	return text, nil
}
