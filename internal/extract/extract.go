// Package extract performs AI-assisted structured extraction: free-text
// scheduling instructions become recurrence rules, scraped page text
// becomes candidate events.
//
// The remote model is treated as an unreliable JSON endpoint. Calls go
// through a bounded constant-delay retry policy, responses are decoded
// leniently (bare arrays, fenced arrays, or arrays wrapped in an object),
// and per-rule validation happens here so the orchestrator only ever sees
// well-formed variants.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/villagefoodie/foodie-events/internal/event"
	"github.com/villagefoodie/foodie-events/internal/recur"
)

// maxCorpusChars caps the page text sent to the model.
const maxCorpusChars = 150000

const (
	defaultAttempts = 3
	defaultDelay    = 5 * time.Second
)

// Generator is the remote structured-generation capability: prompt in,
// text that should parse as JSON out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client extracts structured data through a Generator with retries.
type Client struct {
	gen Generator
	log *slog.Logger

	// attempts and delay define the retry policy: total attempts and the
	// fixed pause between them.
	attempts uint64
	delay    time.Duration
}

// New creates a Client with the production retry policy (3 attempts,
// 5 second delay).
func New(gen Generator, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{gen: gen, log: log, attempts: defaultAttempts, delay: defaultDelay}
}

// Rules extracts recurrence rules from a source's free-text scheduling
// instructions. Rules missing a frequency or weekday are dropped.
func (c *Client) Rules(ctx context.Context, sourceName, instructions string) ([]recur.Rule, error) {
	var rules []recur.Rule
	if err := c.generateJSON(ctx, rulePrompt(sourceName, instructions), &rules); err != nil {
		return nil, fmt.Errorf("extracting rules for %s: %w", sourceName, err)
	}

	valid := rules[:0]
	for _, r := range rules {
		if !r.Valid() {
			c.log.Warn("dropping malformed rule", "source", sourceName, "rule", r)
			continue
		}
		valid = append(valid, r)
	}
	return valid, nil
}

// Events extracts candidate events directly from a scraped text corpus. The
// canonical truck and venue vocabularies are passed to the model so it can
// fuzzy-match names while extracting.
func (c *Client) Events(ctx context.Context, sourceName, corpus string, trucks, venues []string) ([]event.CandidateEvent, error) {
	if len(corpus) > maxCorpusChars {
		corpus = corpus[:maxCorpusChars]
	}

	var events []event.CandidateEvent
	if err := c.generateJSON(ctx, eventPrompt(sourceName, corpus, trucks, venues), &events); err != nil {
		return nil, fmt.Errorf("extracting events for %s: %w", sourceName, err)
	}
	return events, nil
}

// generateJSON calls the generator and decodes the response, retrying both
// transport and parse failures under the client's policy.
func (c *Client) generateJSON(ctx context.Context, prompt string, out any) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), c.attempts-1), ctx)

	return backoff.Retry(func() error {
		raw, err := c.gen.Generate(ctx, prompt)
		if err != nil {
			c.log.Warn("generation call failed, will retry", "error", err)
			return err
		}
		if err := decodeArray(raw, out); err != nil {
			c.log.Warn("generation returned malformed JSON, will retry", "error", err)
			return err
		}
		return nil
	}, policy)
}

// wrapperKeys are tried in order when a JSON-object response wraps the
// array the caller asked for.
var wrapperKeys = []string{"events", "rules", "data", "items", "results"}

// decodeArray unmarshals a model response into out (a pointer to a slice).
// It tolerates markdown code fences and a single level of object wrapping.
func decodeArray(raw string, out any) error {
	s := strings.TrimSpace(raw)
	s = trimFence(s)

	if strings.HasPrefix(s, "[") {
		return json.Unmarshal([]byte(s), out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &wrapper); err != nil {
		return err
	}
	for _, key := range wrapperKeys {
		if v, ok := wrapper[key]; ok && isArray(v) {
			return json.Unmarshal(v, out)
		}
	}
	for _, v := range wrapper {
		if isArray(v) {
			return json.Unmarshal(v, out)
		}
	}
	return errors.New("response contains no JSON array")
}

func isArray(v json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(v)), "[")
}

func trimFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
