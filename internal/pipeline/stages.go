package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/extract"
	"github.com/hyperifyio/goleads/internal/failure"
	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/lead"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/normalize"
	"github.com/hyperifyio/goleads/internal/parse"
	"github.com/hyperifyio/goleads/internal/prompts"
	"github.com/hyperifyio/goleads/internal/search"
)

// discoverStage finds pages that list companies matching the criteria. A
// failed search is fatal: nothing downstream can run without it.
type discoverStage struct {
	search search.Provider
	pages  int
}

func (s *discoverStage) Name() string   { return "discover" }
func (s *discoverStage) Owns() FieldSet { return FieldSourceURLs }

func (s *discoverStage) Run(ctx context.Context, st State) (Partial, error) {
	c := st.Criteria
	query := prompts.DiscoveryQuery(c.Industry(), c.Size(), c.Location())
	results, err := s.search.Search(ctx, query, s.pages)
	if err != nil {
		return Partial{}, &failure.PipelineFatalError{Stage: s.Name(), Err: fmt.Errorf("discovery search: %w", err)}
	}
	urls := make([]string, 0, s.pages)
	for _, r := range results {
		if len(urls) == s.pages {
			break
		}
		if r.URL == "" {
			continue
		}
		urls = append(urls, r.URL)
	}
	log.Info().Str("query", query).Int("pages", len(urls)).Msg("found source pages")
	var p Partial
	p.SetSourceURLs(urls)
	return p, nil
}

// extractStage reads each source page and collects company names from it.
// A page that cannot be fetched or summarized contributes nothing.
type extractStage struct {
	pages   fetch.PageFetcher
	gen     llm.Generator
	prompts prompts.Set
	chars   int
	max     int
}

func (s *extractStage) Name() string   { return "extract" }
func (s *extractStage) Owns() FieldSet { return FieldCandidateNames }

func (s *extractStage) Run(ctx context.Context, st State) (Partial, error) {
	names := newNameSet()
	for _, u := range st.SourceURLs {
		text, err := s.pages.FetchPage(ctx, u)
		if err != nil {
			log.Warn().Str("url", u).Str("kind", string(failure.KindOf(err))).Msg("skipping source page")
			continue
		}
		resp, err := s.gen.Complete(ctx, s.prompts.ExtractNames(extract.Truncate(text, s.chars)))
		if err != nil {
			log.Warn().Str("url", u).Str("kind", string(failure.KindOf(err))).Msg("name extraction failed")
			continue
		}
		added := 0
		for _, n := range parse.Names(resp) {
			if names.add(n) {
				added++
			}
		}
		log.Info().Str("url", u).Int("new_names", added).Msg("extracted candidate names")
	}
	var p Partial
	p.SetCandidateNames(names.first(s.max))
	return p, nil
}

// resolveStage finds each candidate's site and keeps the first candidate per
// normalized site, stopping once the target is reached.
type resolveStage struct {
	search search.Provider
	target int
}

func (s *resolveStage) Name() string   { return "resolve" }
func (s *resolveStage) Owns() FieldSet { return FieldLeads }

func (s *resolveStage) Run(ctx context.Context, st State) (Partial, error) {
	leads := make([]lead.Lead, 0, s.target)
	seen := make(map[normalize.Key]string)
	for _, name := range st.CandidateNames {
		if len(leads) >= s.target {
			break
		}
		results, err := s.search.Search(ctx, prompts.WebsiteQuery(name), 1)
		if err != nil {
			log.Warn().Str("name", name).Str("kind", string(failure.KindOf(err))).Msg("site search failed, skipping")
			continue
		}
		if len(results) == 0 || results[0].URL == "" {
			log.Info().Str("name", name).Msg("no site found, skipping")
			continue
		}
		site := results[0].URL
		key := normalize.URL(site)
		if prev, dup := seen[key]; dup {
			log.Info().Str("name", name).Str("website", site).Str("same_as", prev).Msg("skipping duplicate site")
			continue
		}
		seen[key] = name
		leads = append(leads, lead.New(name, site))
		log.Info().Str("name", name).Str("website", site).Msg("found lead")
	}
	var p Partial
	p.SetLeads(leads)
	return p, nil
}

// enrichStage adds insights, a score and an outreach message to each lead.
// Any failure marks all three fields of that lead and moves on.
type enrichStage struct {
	pages   fetch.PageFetcher
	gen     llm.Generator
	prompts prompts.Set
	chars   int
}

func (s *enrichStage) Name() string   { return "enrich" }
func (s *enrichStage) Owns() FieldSet { return FieldLeads }

func (s *enrichStage) Run(ctx context.Context, st State) (Partial, error) {
	leads := append([]lead.Lead(nil), st.Leads...)
	for i := range leads {
		l := &leads[i]
		if err := s.enrichOne(ctx, l); err != nil {
			kind := failure.KindOf(err)
			l.Fail(kind)
			log.Warn().Str("name", l.Name).Str("website", l.Website).Str("kind", string(kind)).Err(err).Msg("lead enrichment failed")
			continue
		}
		log.Info().Str("name", l.Name).Msg("lead enriched")
	}
	var p Partial
	p.SetLeads(leads)
	return p, nil
}

func (s *enrichStage) enrichOne(ctx context.Context, l *lead.Lead) error {
	text, err := s.pages.FetchPage(ctx, l.Website)
	if err != nil {
		return err
	}
	insights, err := s.gen.Complete(ctx, s.prompts.SummarizeSite(extract.Truncate(text, s.chars)))
	if err != nil {
		return fmt.Errorf("insights: %w", err)
	}
	l.Insights = lead.Ok(insights)

	scoreText, err := s.gen.Complete(ctx, s.prompts.ScoreLead(insights))
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	score := parse.FirstLine(scoreText)
	if _, _, perr := parse.Score(score); errors.Is(perr, parse.ErrNoScore) {
		log.Warn().Str("name", l.Name).Str("score", score).Msg("score line has no 1-10 value")
	}
	l.Score = lead.Ok(score)

	message, err := s.gen.Complete(ctx, s.prompts.DraftMessage(l.Name, insights, score))
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	l.Message = lead.Ok(message)
	return nil
}
