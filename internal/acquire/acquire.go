// Package acquire turns a loaded page into a plain-text corpus using one of
// four interchangeable strategies: lazy scrolling, pagination clicking,
// frame dumping, or manual (no network at all).
//
// Acquisition is best-effort by contract. A strategy never returns an
// error: navigation hiccups, failed evaluations, and unreachable frames are
// logged and degrade to partial or empty text, which the orchestrator
// treats as "no data".
package acquire

import (
	"log/slog"
	"strings"
	"time"

	"github.com/villagefoodie/foodie-events/internal/browser"
)

// Strategy selects an acquisition behavior.
type Strategy int

const (
	// StrategyScrollLazy scrolls the page in fixed increments to flush out
	// lazily loaded content, then reads all visible text. The default.
	StrategyScrollLazy Strategy = iota

	// StrategyClickNext repeatedly clicks "load more"/"next" style
	// pagination controls, accumulating text after each click.
	StrategyClickNext

	// StrategyFrameDump concatenates the main document with the visible
	// text of every child frame.
	StrategyFrameDump

	// StrategyManual performs no navigation or extraction; only the
	// source's free-text instructions are used.
	StrategyManual
)

// ParseStrategy maps a declared strategy key to a Strategy. The key is
// case- and whitespace-normalized; anything unrecognized resolves to
// StrategyScrollLazy.
func ParseStrategy(key string) Strategy {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "click_next":
		return StrategyClickNext
	case "frames":
		return StrategyFrameDump
	case "manual":
		return StrategyManual
	default:
		return StrategyScrollLazy
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyClickNext:
		return "click_next"
	case StrategyFrameDump:
		return "frames"
	case StrategyManual:
		return "manual"
	default:
		return "scroll_lazy"
	}
}

// Acquirer produces a best-effort text corpus from a page.
type Acquirer interface {
	Acquire(page browser.Page) string
}

// New returns the Acquirer for a strategy with production delays.
func New(s Strategy, log *slog.Logger) Acquirer {
	if log == nil {
		log = slog.Default()
	}
	switch s {
	case StrategyClickNext:
		return &ClickNext{Log: log, Wait: 5 * time.Second}
	case StrategyFrameDump:
		return &FrameDump{Log: log}
	case StrategyManual:
		return &Manual{}
	default:
		return &ScrollLazy{Log: log, Settle: 3 * time.Second}
	}
}
