// Package pipeline wires acquisition, extraction, recurrence expansion,
// name resolution, and deduplication into one batch run over the declared
// sources.
//
// Sources are processed strictly sequentially, one browser page at a time,
// to bound memory and stay inside the rate limits of both the scraped
// sites and the extraction service. Every failure short of missing startup
// configuration is source-scoped: one broken source never prevents the
// rest from being processed or appended.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/villagefoodie/foodie-events/internal/acquire"
	"github.com/villagefoodie/foodie-events/internal/browser"
	"github.com/villagefoodie/foodie-events/internal/dedupe"
	"github.com/villagefoodie/foodie-events/internal/event"
	"github.com/villagefoodie/foodie-events/internal/recur"
	"github.com/villagefoodie/foodie-events/internal/registry"
	"github.com/villagefoodie/foodie-events/internal/source"
	"github.com/villagefoodie/foodie-events/internal/store"
)

// minCorpusLen is the threshold under which a corpus counts as empty and
// the pipeline falls back to free-text instructions or skips the source.
const minCorpusLen = 50

const defaultNavigationTimeout = 25 * time.Second

// PageOpener hands out browser pages, one per source.
type PageOpener interface {
	NewPage() (browser.Page, error)
}

// Extractor is the structured-extraction capability the pipeline consumes.
type Extractor interface {
	Rules(ctx context.Context, sourceName, instructions string) ([]recur.Rule, error)
	Events(ctx context.Context, sourceName, corpus string, trucks, venues []string) ([]event.CandidateEvent, error)
}

// Tabs names the store tabs a run reads and writes.
type Tabs struct {
	Events string
	Trucks string
	Venues string
}

func defaultTabs() Tabs {
	return Tabs{Events: store.TabEvents, Trucks: store.TabTrucks, Venues: store.TabVenues}
}

// Runner executes one scrape run. Zero-value optional fields fall back to
// production defaults.
type Runner struct {
	Store     store.RowStore
	Browser   PageOpener
	Extractor Extractor
	Log       *slog.Logger

	// Tabs overrides the store tab names.
	Tabs Tabs

	// NavigationTimeout bounds each page load. Default 25s.
	NavigationTimeout time.Duration

	// MaxSources truncates the manifest when positive; useful for testing
	// a new strategy against a single source.
	MaxSources int

	// Now supplies the clock for recurrence expansion. Default time.Now.
	Now func() time.Time

	// NewAcquirer builds the acquirer for a strategy. Default acquire.New.
	NewAcquirer func(acquire.Strategy) acquire.Acquirer
}

// Summary reports what a run did.
type Summary struct {
	Sources    int
	Skipped    int
	Failed     int
	Accepted   int
	Duplicates int
}

// Run processes every declared source and performs exactly one append of
// the accumulated batch. An empty batch writes nothing.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := r.log()
	tabs := r.Tabs
	if tabs == (Tabs{}) {
		tabs = defaultTabs()
	}

	truckRows, err := r.Store.ReadRows(ctx, tabs.Trucks)
	if err != nil {
		return nil, fmt.Errorf("reading trucks: %w", err)
	}
	venueRows, err := r.Store.ReadRows(ctx, tabs.Venues)
	if err != nil {
		return nil, fmt.Errorf("reading venues: %w", err)
	}
	eventRows, err := r.Store.ReadRows(ctx, tabs.Events)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}

	reg := registry.FromRows(truckRows, venueRows)
	index := dedupe.NewIndex()
	seeded := index.Seed(eventRows)

	sources := source.FromRows(truckRows, venueRows)
	if r.MaxSources > 0 && len(sources) > r.MaxSources {
		sources = sources[:r.MaxSources]
	}

	log.Info("run starting",
		"sources", len(sources),
		"known_trucks", len(reg.Trucks),
		"known_venues", len(reg.Venues),
		"existing_events", seeded)

	summary := &Summary{Sources: len(sources)}
	var batch [][]string

	for i, src := range sources {
		log.Info("processing source",
			"source", src.Name,
			"strategy", acquire.ParseStrategy(src.Strategy).String(),
			"position", fmt.Sprintf("%d/%d", i+1, len(sources)))

		accepted, dups, err := r.processSource(ctx, src, reg, index, &batch)
		switch {
		case err != nil:
			summary.Failed++
			log.Error("source failed, continuing", "source", src.Name, "error", err)
		case accepted == 0 && dups == 0:
			summary.Skipped++
		default:
			summary.Accepted += accepted
			summary.Duplicates += dups
			log.Info("source done", "source", src.Name, "new", accepted, "duplicates", dups)
		}
	}

	if len(batch) > 0 {
		if err := r.Store.AppendRows(ctx, tabs.Events, batch); err != nil {
			return summary, fmt.Errorf("appending %d events: %w", len(batch), err)
		}
		log.Info("batch appended", "rows", len(batch))
	} else {
		log.Info("no new events found")
	}

	return summary, nil
}

// processSource runs the full per-source pipeline and feeds accepted rows
// into the shared batch. All errors it returns are source-scoped.
func (r *Runner) processSource(ctx context.Context, src source.Source, reg *registry.Registry, index *dedupe.Index, batch *[][]string) (accepted, dups int, err error) {
	candidates, err := r.extractCandidates(ctx, src, reg)
	if err != nil {
		return 0, 0, err
	}

	for _, cand := range candidates {
		resolved, ok := r.resolve(src, reg, cand)
		if !ok {
			continue
		}
		if index.Accept(resolved.DateStart, resolved.TruckName, resolved.VenueName) {
			*batch = append(*batch, resolved.Row())
			accepted++
		} else {
			dups++
		}
	}
	return accepted, dups, nil
}

// extractCandidates acquires the source's corpus and picks the extraction
// mode: direct events from page text, recurrence rules from instructions,
// or a logged skip when neither is usable.
func (r *Runner) extractCandidates(ctx context.Context, src source.Source, reg *registry.Registry) ([]event.CandidateEvent, error) {
	log := r.log()
	strategy := acquire.ParseStrategy(src.Strategy)

	corpus := ""
	if strategy != acquire.StrategyManual {
		corpus = r.acquireCorpus(src, strategy)
	}

	if len(corpus) < minCorpusLen {
		if !src.HasInstructions() {
			log.Info("empty source and no usable instructions, skipping", "source", src.Name)
			return nil, nil
		}
		return r.expandRules(ctx, src)
	}

	return r.Extractor.Events(ctx, src.Name, corpus, reg.Trucks, reg.Venues)
}

// acquireCorpus opens a page, navigates, and runs the strategy. The page is
// closed on every path; navigation failures downgrade to whatever partial
// content the strategy can still read.
func (r *Runner) acquireCorpus(src source.Source, strategy acquire.Strategy) string {
	log := r.log()

	page, err := r.Browser.NewPage()
	if err != nil {
		log.Error("opening page failed", "source", src.Name, "error", err)
		return ""
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("closing page failed", "source", src.Name, "error", err)
		}
	}()

	timeout := r.NavigationTimeout
	if timeout <= 0 {
		timeout = defaultNavigationTimeout
	}
	if err := page.Navigate(src.URL, timeout); err != nil {
		log.Warn("navigation failed, proceeding with partial content",
			"source", src.Name, "url", src.URL, "error", err)
	}

	return r.newAcquirer(strategy).Acquire(page)
}

// expandRules extracts recurrence rules from the source's instructions and
// materializes them into dated candidate events. An unparsable start time
// becomes the "Contact Venue" sentinel with an empty end time.
func (r *Runner) expandRules(ctx context.Context, src source.Source) ([]event.CandidateEvent, error) {
	rules, err := r.Extractor.Rules(ctx, src.Name, src.Instructions)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	if r.Now != nil {
		today = r.Now()
	}

	var candidates []event.CandidateEvent
	for _, rule := range rules {
		timeStart, ok := event.ParseTime(rule.RawTimeStart)
		timeEnd := ""
		if !ok {
			timeStart = event.ContactVenue
		} else if end, ok := event.ParseTime(rule.RawTimeEnd); ok {
			timeEnd = end
		} else {
			timeEnd = event.ContactVenue
		}

		for _, date := range recur.Expand(rule, today) {
			candidates = append(candidates, event.CandidateEvent{
				DateStart: date,
				TimeStart: timeStart,
				TimeEnd:   timeEnd,
				TruckName: src.Name,
				VenueName: rule.Venue,
			})
		}
	}
	return candidates, nil
}

// resolve canonicalizes a candidate's names and date. Candidates without
// a truck name are dropped; unknown trucks are kept and flagged in the
// notes.
func (r *Runner) resolve(src source.Source, reg *registry.Registry, cand event.CandidateEvent) (event.ResolvedEvent, bool) {
	truckRaw := strings.TrimSpace(cand.TruckName)
	venueRaw := strings.TrimSpace(cand.VenueName)
	if truckRaw == "" {
		return event.ResolvedEvent{}, false
	}

	truck, isNew := reg.ResolveTruck(truckRaw, src.Name)
	notes := cand.Notes
	if isNew {
		notes = strings.TrimSpace(notes + " " + event.NewTruckNote)
		r.log().Warn("unknown truck, flagging for review", "source", src.Name, "truck", truckRaw)
	}

	return event.ResolvedEvent{
		DateStart: event.StandardizeDate(cand.DateStart),
		TimeStart: cand.TimeStart,
		TimeEnd:   cand.TimeEnd,
		TruckName: truck,
		VenueName: reg.ResolveVenue(venueRaw),
		Notes:     notes,
	}, true
}

func (r *Runner) newAcquirer(s acquire.Strategy) acquire.Acquirer {
	if r.NewAcquirer != nil {
		return r.NewAcquirer(s)
	}
	return acquire.New(s, r.log())
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
