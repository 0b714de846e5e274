package acquire

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/villagefoodie/foodie-events/internal/browser"
)

// readTextScript returns all text currently visible on the page.
const readTextScript = `() => document.body.innerText`

// scrollScript scrolls in 150px steps every 100ms until the accumulated
// distance reaches 1.5x the page height, or gives up after 15 seconds.
const scrollScript = `async () => {
	await new Promise((resolve) => {
		let total = 0;
		const distance = 150;
		const timer = setInterval(() => {
			const height = document.body.scrollHeight;
			window.scrollBy(0, distance);
			total += distance;
			if (total >= height * 1.5) { clearInterval(timer); resolve(); }
		}, 100);
		setTimeout(() => { clearInterval(timer); resolve(); }, 15000);
	});
}`

// clickScript hunts for a visible pagination control: a clickable element
// (button, link, click handler, or button role) whose short trimmed text is
// in the pagination vocabulary and not a back/previous label. It clicks the
// last candidate and reports whether anything was clicked.
const clickScript = `() => {
	const all = Array.from(document.querySelectorAll('*'));
	const candidates = all.filter((el) => {
		if (!el.offsetParent) return false;
		const text = (el.innerText || '').trim().toLowerCase();
		if (text.length > 50) return false;
		const clickable = ['BUTTON', 'A'].includes(el.tagName) ||
			el.onclick !== null || el.getAttribute('role') === 'button';
		const trigger = text === 'more events' || text === 'load more' ||
			text === 'older entries' || text === 'next' ||
			text === '›' || text === '»';
		const back = text.includes('prev') || text.includes('back') || text.includes('newer');
		return clickable && trigger && !back;
	});
	if (candidates.length > 0) {
		candidates[candidates.length - 1].click();
		return true;
	}
	return false;
}`

// maxClickRounds bounds click-based pagination; there is no retry.
const maxClickRounds = 4

// minFrameText filters out empty or chrome-only frames.
const minFrameText = 50

// ScrollLazy acquires by deep-scrolling the page, waiting Settle for lazy
// content to land, then reading the visible text.
type ScrollLazy struct {
	Log    *slog.Logger
	Settle time.Duration
}

func (s *ScrollLazy) Acquire(page browser.Page) string {
	if _, err := page.Eval(scrollScript); err != nil {
		s.Log.Warn("scroll failed, reading what loaded", "error", err)
	}
	time.Sleep(s.Settle)

	text, err := page.Eval(readTextScript)
	if err != nil {
		s.Log.Warn("reading page text failed", "error", err)
		return ""
	}
	return text.Str()
}

// ClickNext acquires the initial text, then clicks pagination controls up
// to maxClickRounds times, waiting Wait after each click before appending
// the newly visible text.
type ClickNext struct {
	Log  *slog.Logger
	Wait time.Duration
}

func (c *ClickNext) Acquire(page browser.Page) string {
	var sb strings.Builder

	text, err := page.Eval(readTextScript)
	if err != nil {
		c.Log.Warn("reading page text failed", "error", err)
	} else {
		sb.WriteString(text.Str())
	}

	for i := 0; i < maxClickRounds; i++ {
		clicked, err := page.Eval(clickScript)
		if err != nil {
			c.Log.Warn("pagination click failed", "round", i+1, "error", err)
			break
		}
		if !clicked.Bool() {
			break
		}

		time.Sleep(c.Wait)

		more, err := page.Eval(readTextScript)
		if err != nil {
			c.Log.Warn("reading paginated text failed", "round", i+1, "error", err)
			break
		}
		fmt.Fprintf(&sb, "\n\n--- PAGE %d START ---\n%s", i+2, more.Str())
	}

	return sb.String()
}

// FrameDump acquires the main document's text plus the visible text of
// every child frame, skipping frames that fail to evaluate.
type FrameDump struct {
	Log *slog.Logger
}

func (f *FrameDump) Acquire(page browser.Page) string {
	var sb strings.Builder

	if html, err := page.HTML(); err != nil {
		f.Log.Warn("reading main document failed", "error", err)
	} else if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err != nil {
		sb.WriteString(html)
	} else {
		sb.WriteString(doc.Text())
	}

	frames, err := page.Frames()
	if err != nil {
		f.Log.Warn("enumerating frames failed", "error", err)
		return sb.String()
	}
	for _, frame := range frames {
		text, err := frame.Text()
		if err != nil {
			continue
		}
		if len(text) > minFrameText {
			fmt.Fprintf(&sb, "\n --- FRAME DATA --- \n%s\n", text)
		}
	}

	return sb.String()
}

// Manual never touches the page; the source's free-text instructions are
// the only input.
type Manual struct{}

func (m *Manual) Acquire(browser.Page) string {
	return ""
}
