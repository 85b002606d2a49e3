// Package pipeline runs the lead pipeline: discover source pages, extract
// candidate names, resolve and deduplicate sites, enrich leads. Stages run in
// that fixed order, one at a time, each merging its output into the state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/failure"
	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/governor"
	"github.com/hyperifyio/goleads/internal/lead"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/normalize"
	"github.com/hyperifyio/goleads/internal/prompts"
	"github.com/hyperifyio/goleads/internal/search"
)

// Phase is the engine's lifecycle position.
type Phase int

const (
	NotStarted Phase = iota
	Running
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Stage is one step of the pipeline. Run must only write the fields named by
// Owns.
type Stage interface {
	Name() string
	Owns() FieldSet
	Run(ctx context.Context, st State) (Partial, error)
}

// Config holds the tunables. Zero values take the defaults below, so the
// zero Config paces search and generation with the governor defaults. Set a
// delay to NoDelay to disable pacing for that class.
type Config struct {
	LeadsToFind   int
	SourcePages   int
	MaxCandidates int
	ExtractChars  int
	EnrichChars   int
	SearchDelay   time.Duration
	GenerateDelay time.Duration
	// Model is passed to the governor for prompt size checks.
	Model   string
	Prompts prompts.Set
}

const (
	DefaultLeadsToFind   = 5
	DefaultSourcePages   = 3
	DefaultMaxCandidates = 15
	DefaultExtractChars  = 4000
	DefaultEnrichChars   = 3000
)

// NoDelay disables pacing when used as SearchDelay or GenerateDelay.
const NoDelay time.Duration = -1

// WithDefaults fills zero values. A negative delay is kept and means no pacing.
func (c Config) WithDefaults() Config {
	if c.SearchDelay == 0 {
		c.SearchDelay = governor.DefaultSearchDelay
	}
	if c.GenerateDelay == 0 {
		c.GenerateDelay = governor.DefaultGenerateDelay
	}
	if c.LeadsToFind == 0 {
		c.LeadsToFind = DefaultLeadsToFind
	}
	if c.SourcePages == 0 {
		c.SourcePages = DefaultSourcePages
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	if c.ExtractChars == 0 {
		c.ExtractChars = DefaultExtractChars
	}
	if c.EnrichChars == 0 {
		c.EnrichChars = DefaultEnrichChars
	}
	if c.Prompts == (prompts.Set{}) {
		c.Prompts = prompts.Default()
	}
	return c
}

// Deps are the provider capabilities. The engine wraps them in a governor.
type Deps struct {
	Search    search.Provider
	Pages     fetch.PageFetcher
	Generator llm.Generator
}

// ErrAlreadyRun is returned by Run on an engine that has run before.
var ErrAlreadyRun = errors.New("pipeline: engine already run")

// Engine executes the fixed stage sequence once.
type Engine struct {
	cfg    Config
	stages []Stage
	phase  Phase
	stage  int
}

// New validates cfg and deps and builds the four stages.
func New(cfg Config, deps Deps) (*Engine, error) {
	cfg = cfg.WithDefaults()
	if deps.Search == nil || deps.Pages == nil || deps.Generator == nil {
		return nil, errors.New("pipeline: search, page fetcher and generator are required")
	}
	if cfg.LeadsToFind < 1 {
		return nil, fmt.Errorf("pipeline: leads to find must be at least 1, got %d", cfg.LeadsToFind)
	}
	if cfg.SourcePages < 1 || cfg.MaxCandidates < 1 || cfg.ExtractChars < 1 || cfg.EnrichChars < 1 {
		return nil, errors.New("pipeline: page, candidate and character limits must be positive")
	}
	gov := governor.New(governor.Options{
		SearchDelay:   max(cfg.SearchDelay, 0),
		GenerateDelay: max(cfg.GenerateDelay, 0),
		Model:         cfg.Model,
	}, deps.Search, deps.Pages, deps.Generator)
	s, f, g := gov.Searcher(), gov.Fetcher(), gov.Generator()
	return &Engine{
		cfg: cfg,
		stages: []Stage{
			&discoverStage{search: s, pages: cfg.SourcePages},
			&extractStage{pages: f, gen: g, prompts: cfg.Prompts, chars: cfg.ExtractChars, max: cfg.MaxCandidates},
			&resolveStage{search: s, target: cfg.LeadsToFind},
			&enrichStage{pages: f, gen: g, prompts: cfg.Prompts, chars: cfg.EnrichChars},
		},
	}, nil
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase { return e.phase }

// Stage returns the 1-based index of the running or last run stage.
func (e *Engine) Stage() int { return e.stage }

// Run executes all stages and returns the final leads. Any error escaping a
// stage, including a panic, aborts the run with *failure.PipelineFatalError
// and the partial state is dropped.
func (e *Engine) Run(ctx context.Context, criteria lead.Criteria) ([]lead.Lead, error) {
	if e.phase != NotStarted {
		return nil, ErrAlreadyRun
	}
	e.phase = Running
	st := State{Criteria: criteria}
	start := time.Now()
	for i, s := range e.stages {
		e.stage = i + 1
		if err := ctx.Err(); err != nil {
			return e.fail(s.Name(), err)
		}
		log.Info().Int("stage", e.stage).Str("name", s.Name()).Msg("stage started")
		stageStart := time.Now()
		p, err := runStage(ctx, s, st.clone())
		if err != nil {
			return e.fail(s.Name(), err)
		}
		if err := merge(&st, p, s.Owns()); err != nil {
			return e.fail(s.Name(), err)
		}
		if err := e.checkInvariants(st); err != nil {
			return e.fail(s.Name(), err)
		}
		log.Info().Int("stage", e.stage).Str("name", s.Name()).
			Int("source_urls", len(st.SourceURLs)).
			Int("candidates", len(st.CandidateNames)).
			Int("leads", len(st.Leads)).
			Dur("took", time.Since(stageStart)).
			Msg("stage done")
	}
	e.phase = Completed
	log.Info().Int("leads", len(st.Leads)).Dur("took", time.Since(start)).Msg("pipeline completed")
	return st.Leads, nil
}

func (e *Engine) fail(stage string, err error) ([]lead.Lead, error) {
	e.phase = Failed
	var fe *failure.PipelineFatalError
	if !errors.As(err, &fe) {
		err = &failure.PipelineFatalError{Stage: stage, Err: err}
	}
	log.Error().Err(err).Str("stage", stage).Msg("pipeline aborted")
	return nil, err
}

func runStage(ctx context.Context, s Stage, st State) (p Partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Run(ctx, st)
}

// checkInvariants guards the lead list: bounded length, unique sites, unique
// candidate names.
func (e *Engine) checkInvariants(st State) error {
	if len(st.Leads) > e.cfg.LeadsToFind {
		return fmt.Errorf("%d leads exceed the target of %d", len(st.Leads), e.cfg.LeadsToFind)
	}
	seen := make(map[normalize.Key]struct{}, len(st.Leads))
	for _, l := range st.Leads {
		k := normalize.URL(l.Website)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate lead site %q", k)
		}
		seen[k] = struct{}{}
	}
	names := newNameSet()
	for _, n := range st.CandidateNames {
		if !names.add(n) {
			return fmt.Errorf("duplicate candidate name %q", n)
		}
	}
	return nil
}
