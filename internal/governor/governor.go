// Package governor wraps provider calls with inter-call pacing, failure
// logging and error classification. Each call returns either a value or a
// taxonomy error; nothing escapes as a panic.
package governor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/budget"
	"github.com/hyperifyio/goleads/internal/failure"
	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/search"
)

const (
	DefaultGenerateDelay = 20 * time.Second
	DefaultSearchDelay   = 1 * time.Second
)

// Options configures pacing. Zero delays disable pacing for that class.
type Options struct {
	SearchDelay   time.Duration
	GenerateDelay time.Duration
	// Model is only used to size-check prompts in debug logs.
	Model string
}

// Governor owns one pacer per provider class. Page fetches are not paced.
type Governor struct {
	search search.Provider
	pages  fetch.PageFetcher
	gen    llm.Generator
	model  string

	searchPace *pacer
	genPace    *pacer
}

func New(opts Options, s search.Provider, f fetch.PageFetcher, g llm.Generator) *Governor {
	return &Governor{
		search:     s,
		pages:      f,
		gen:        g,
		model:      opts.Model,
		searchPace: newPacer(opts.SearchDelay),
		genPace:    newPacer(opts.GenerateDelay),
	}
}

// Searcher returns the paced search capability.
func (g *Governor) Searcher() search.Provider { return searcher{g} }

// Fetcher returns the page fetch capability with classification and logging.
func (g *Governor) Fetcher() fetch.PageFetcher { return fetcher{g} }

// Generator returns the paced text generation capability.
func (g *Governor) Generator() llm.Generator { return generator{g} }

type searcher struct{ g *Governor }

func (s searcher) Name() string { return s.g.search.Name() }

func (s searcher) Search(ctx context.Context, query string, limit int) (res []search.Result, err error) {
	g := s.g
	if waited, werr := g.searchPace.wait(ctx); werr != nil {
		return nil, &failure.NetworkError{URL: g.search.Name(), Err: werr}
	} else if waited > 0 {
		log.Debug().Str("provider", g.search.Name()).Dur("waited", waited).Msg("search paced")
	}
	// the search delay applies after failed calls too
	defer g.searchPace.mark()
	defer recoverInto(&err, func(p any) error {
		return &failure.NetworkError{URL: g.search.Name(), Err: fmt.Errorf("panic: %v", p)}
	})

	start := time.Now()
	res, err = g.search.Search(ctx, query, limit)
	if err != nil {
		err = classify(err, func(e error) error { return &failure.NetworkError{URL: g.search.Name(), Err: e} })
		log.Warn().Str("provider", g.search.Name()).Str("query", query).Str("kind", string(failure.KindOf(err))).Err(err).Msg("search failed")
		return nil, err
	}
	log.Debug().Str("provider", g.search.Name()).Str("query", query).Int("results", len(res)).Dur("took", time.Since(start)).Msg("search ok")
	return res, nil
}

type fetcher struct{ g *Governor }

func (f fetcher) FetchPage(ctx context.Context, url string) (text string, err error) {
	g := f.g
	defer recoverInto(&err, func(p any) error {
		return &failure.NetworkError{URL: url, Err: fmt.Errorf("panic: %v", p)}
	})
	start := time.Now()
	text, err = g.pages.FetchPage(ctx, url)
	if err != nil {
		err = classify(err, func(e error) error { return &failure.NetworkError{URL: url, Err: e} })
		log.Warn().Str("url", url).Str("kind", string(failure.KindOf(err))).Err(err).Msg("fetch failed")
		return "", err
	}
	log.Debug().Str("url", url).Int("chars", len(text)).Dur("took", time.Since(start)).Msg("fetch ok")
	return text, nil
}

type generator struct{ g *Governor }

func (gn generator) Name() string { return gn.g.gen.Name() }

func (gn generator) Complete(ctx context.Context, prompt string) (text string, err error) {
	g := gn.g
	if waited, werr := g.genPace.wait(ctx); werr != nil {
		return "", &failure.GenerationError{Provider: g.gen.Name(), Err: werr}
	} else if waited > 0 {
		log.Debug().Str("provider", g.gen.Name()).Dur("waited", waited).Msg("generation paced")
	}
	defer recoverInto(&err, func(p any) error {
		return &failure.GenerationError{Provider: g.gen.Name(), Err: fmt.Errorf("panic: %v", p)}
	})

	tokens := budget.EstimateTokens(prompt)
	ev := log.Debug().Str("provider", g.gen.Name()).Int("prompt_tokens_est", tokens)
	if g.model != "" && !budget.FitsInContext(g.model, llm.DefaultMaxTokens, tokens) {
		ev = log.Warn().Str("provider", g.gen.Name()).Int("prompt_tokens_est", tokens).Str("model", g.model)
	}
	ev.Msg("generation request")

	start := time.Now()
	text, err = g.gen.Complete(ctx, prompt)
	if err != nil {
		err = classify(err, func(e error) error { return &failure.GenerationError{Provider: g.gen.Name(), Err: e} })
		log.Warn().Str("provider", g.gen.Name()).Str("kind", string(failure.KindOf(err))).Err(err).Msg("generation failed")
		return "", err
	}
	g.genPace.mark()
	log.Debug().Str("provider", g.gen.Name()).Int("chars", len(text)).Dur("took", time.Since(start)).Msg("generation ok")
	return text, nil
}

// classify keeps taxonomy errors as they are and wraps anything else with
// wrap, so callers can always derive a failure.Kind.
func classify(err error, wrap func(error) error) error {
	if failure.KindOf(err) != failure.KindUnknown {
		return err
	}
	return wrap(err)
}

func recoverInto(err *error, conv func(any) error) {
	if p := recover(); p != nil {
		*err = conv(p)
		log.Error().Interface("panic", p).Msg("provider panicked")
	}
}
