package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/villagefoodie/foodie-events/internal/acquire"
	"github.com/villagefoodie/foodie-events/internal/browser"
	"github.com/villagefoodie/foodie-events/internal/event"
	"github.com/villagefoodie/foodie-events/internal/recur"
	"github.com/ysmood/gson"
)

type fakeStore struct {
	tabs    map[string][][]string
	appends int
}

func (s *fakeStore) ReadRows(ctx context.Context, tab string) ([][]string, error) {
	return s.tabs[tab], nil
}

func (s *fakeStore) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	s.appends++
	s.tabs[tab] = append(s.tabs[tab], rows...)
	return nil
}

type fakePage struct {
	closed int
}

func (p *fakePage) Navigate(string, time.Duration) error { return nil }
func (p *fakePage) Eval(string) (gson.JSON, error)       { return gson.New(""), nil }
func (p *fakePage) HTML() (string, error)                { return "", nil }
func (p *fakePage) Frames() ([]browser.Frame, error)     { return nil, nil }
func (p *fakePage) Close() error                         { p.closed++; return nil }

type fakeOpener struct {
	pages []*fakePage
}

func (o *fakeOpener) NewPage() (browser.Page, error) {
	p := &fakePage{}
	o.pages = append(o.pages, p)
	return p, nil
}

// stubAcquirer returns a fixed corpus regardless of the page.
type stubAcquirer struct {
	corpus string
}

func (a *stubAcquirer) Acquire(browser.Page) string { return a.corpus }

type fakeExtractor struct {
	eventsBySource map[string][]event.CandidateEvent
	rulesBySource  map[string][]recur.Rule
	eventCalls     int
	ruleCalls      int
	err            error
}

func (e *fakeExtractor) Rules(ctx context.Context, sourceName, instructions string) ([]recur.Rule, error) {
	e.ruleCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.rulesBySource[sourceName], nil
}

func (e *fakeExtractor) Events(ctx context.Context, sourceName, corpus string, trucks, venues []string) ([]event.CandidateEvent, error) {
	e.eventCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.eventsBySource[sourceName], nil
}

func truckRow(name, url, instructions string) []string {
	row := make([]string, 12)
	row[0] = name
	row[4] = url
	row[10] = instructions
	return row
}

func newRunner(st *fakeStore, ex Extractor, corpus string) (*Runner, *fakeOpener) {
	opener := &fakeOpener{}
	return &Runner{
		Store:       st,
		Browser:     opener,
		Extractor:   ex,
		Log:         slog.New(slog.DiscardHandler),
		NewAcquirer: func(acquire.Strategy) acquire.Acquirer { return &stubAcquirer{corpus: corpus} },
	}, opener
}

var longCorpus = strings.Repeat("upcoming events ", 20)

func TestRunDeduplicatesAcrossSources(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {
			truckRow("Cheese Wagon", "https://cheese.example", ""),
			truckRow("Taco Van", "https://taco.example", ""),
		},
	}}

	// Both sources report the same (date, truck, venue) with different
	// time text; exactly one row may survive.
	ex := &fakeExtractor{eventsBySource: map[string][]event.CandidateEvent{
		"Cheese Wagon": {{
			DateStart: "5/7/2024", TimeStart: "17:00", TruckName: "Cheese Wagon", VenueName: "The Pub",
		}},
		"Taco Van": {{
			DateStart: "05/07/2024", TimeStart: "18:30", TruckName: "cheese wagon", VenueName: "the pub",
		}},
	}}

	r, opener := newRunner(st, ex, longCorpus)
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Accepted != 1 || summary.Duplicates != 1 {
		t.Errorf("summary = %+v, want 1 accepted, 1 duplicate", summary)
	}
	if st.appends != 1 {
		t.Errorf("store saw %d appends, want exactly 1", st.appends)
	}
	if got := len(st.tabs["Events"]); got != 1 {
		t.Errorf("Events tab has %d rows, want 1", got)
	} else if date := st.tabs["Events"][0][0]; date != "05/07/2024" {
		t.Errorf("appended date = %q, want standardized form", date)
	}

	// One page per non-manual source, each closed.
	if len(opener.pages) != 2 {
		t.Fatalf("opened %d pages, want 2", len(opener.pages))
	}
	for i, p := range opener.pages {
		if p.closed != 1 {
			t.Errorf("page %d closed %d times, want 1", i, p.closed)
		}
	}
}

func TestRunSeedsFromExistingEvents(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {truckRow("Cheese Wagon", "https://cheese.example", "")},
		"Events": {{"01/02/2024", "17:00", "20:00", "Cheese Wagon", "The Pub", ""}},
	}}
	ex := &fakeExtractor{eventsBySource: map[string][]event.CandidateEvent{
		"Cheese Wagon": {{
			DateStart: "1/2/2024", TimeStart: "19:00", TruckName: "Cheese Wagon", VenueName: "The Pub",
		}},
	}}

	r, _ := newRunner(st, ex, longCorpus)
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Duplicates != 1 || summary.Accepted != 0 {
		t.Errorf("summary = %+v, want the candidate classified duplicate", summary)
	}
	if st.appends != 0 {
		t.Errorf("empty batch performed %d appends, want 0", st.appends)
	}
}

func TestRunRuleMode(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {truckRow("Cheese Wagon", "", "every friday at The Pub from 5pm to 7ish")},
		"Venues": {{"The Pub"}},
	}}
	ex := &fakeExtractor{rulesBySource: map[string][]recur.Rule{
		"Cheese Wagon": {{
			Day: "friday", Freq: "weekly", Venue: "The Pub",
			RawTimeStart: "5pm", RawTimeEnd: "7ish",
		}},
	}}

	r, opener := newRunner(st, ex, "")
	r.Now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if ex.ruleCalls != 1 || ex.eventCalls != 0 {
		t.Errorf("rule mode used %d rule calls and %d event calls", ex.ruleCalls, ex.eventCalls)
	}
	if summary.Accepted != 4 {
		t.Fatalf("summary = %+v, want 4 weekly occurrences accepted", summary)
	}

	rows := st.tabs["Events"]
	if len(rows) != 4 {
		t.Fatalf("Events tab has %d rows, want 4", len(rows))
	}
	first := rows[0]
	if first[0] != "07/06/2024" || first[1] != "17:00" || first[2] != "19:00" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[3] != "Cheese Wagon" || first[4] != "The Pub" {
		t.Errorf("unexpected names in row: %v", first)
	}

	// The about:blank page is opened and closed like any other.
	if len(opener.pages) != 1 || opener.pages[0].closed != 1 {
		t.Errorf("opened %d pages, want 1 opened and closed", len(opener.pages))
	}
}

func TestRunRuleModeUnparsableTime(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {truckRow("Cheese Wagon", "", "fridays at The Pub, time varies")},
	}}
	ex := &fakeExtractor{rulesBySource: map[string][]recur.Rule{
		"Cheese Wagon": {{
			Day: "friday", Freq: "weekly", Venue: "The Pub", RawTimeStart: "whenever",
		}},
	}}

	r, _ := newRunner(st, ex, "")
	r.Now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	rows := st.tabs["Events"]
	if len(rows) == 0 {
		t.Fatal("expected expanded rows")
	}
	if rows[0][1] != event.ContactVenue {
		t.Errorf("TimeStart = %q, want %q", rows[0][1], event.ContactVenue)
	}
	if rows[0][2] != "" {
		t.Errorf("TimeEnd = %q, want empty when start is unparsable", rows[0][2])
	}
}

func TestRunSkipsEmptySource(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {truckRow("Silent Truck", "https://silent.example", "")},
	}}
	ex := &fakeExtractor{}

	r, _ := newRunner(st, ex, "") // empty corpus, no instructions
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
	if ex.eventCalls != 0 || ex.ruleCalls != 0 {
		t.Error("extractor should not be called for an empty source")
	}
}

func TestRunIsolatesFailingSource(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {
			truckRow("Broken Truck", "https://broken.example", ""),
			truckRow("Good Truck", "https://good.example", ""),
		},
	}}

	ex := &failFirstExtractor{
		good: map[string][]event.CandidateEvent{
			"Good Truck": {{DateStart: "5/7/2024", TruckName: "Good Truck", VenueName: "The Pub"}},
		},
	}

	r, _ := newRunner(st, ex, longCorpus)
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 failed", summary)
	}
	if summary.Accepted != 1 {
		t.Errorf("summary = %+v, want the healthy source's event accepted", summary)
	}
}

// failFirstExtractor fails extraction for Broken Truck only.
type failFirstExtractor struct {
	good map[string][]event.CandidateEvent
}

func (e *failFirstExtractor) Rules(ctx context.Context, sourceName, instructions string) ([]recur.Rule, error) {
	return nil, errors.New("unexpected rule extraction")
}

func (e *failFirstExtractor) Events(ctx context.Context, sourceName, corpus string, trucks, venues []string) ([]event.CandidateEvent, error) {
	if sourceName == "Broken Truck" {
		return nil, errors.New("extraction exhausted retries")
	}
	return e.good[sourceName], nil
}

func TestResolveFlagsNewTruck(t *testing.T) {
	st := &fakeStore{tabs: map[string][][]string{
		"Trucks": {truckRow("Cheese Wagon", "https://cheese.example", "")},
	}}
	ex := &fakeExtractor{eventsBySource: map[string][]event.CandidateEvent{
		"Cheese Wagon": {{DateStart: "5/7/2024", TruckName: "Mystery Van", VenueName: ""}},
	}}

	r, _ := newRunner(st, ex, longCorpus)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	rows := st.tabs["Events"]
	if len(rows) != 1 {
		t.Fatalf("Events tab has %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row[3] != "Mystery Van" {
		t.Errorf("truck = %q, want raw name kept", row[3])
	}
	if row[4] != "Unknown" {
		t.Errorf("venue = %q, want Unknown for empty venue", row[4])
	}
	if !strings.Contains(row[5], event.NewTruckNote) {
		t.Errorf("notes = %q, want the new-truck flag", row[5])
	}
}
