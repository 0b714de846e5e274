package browser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// Page is the capability the acquisition strategies consume: navigate,
// evaluate JavaScript, enumerate child frames, close. Implementations
// convert their own failures into errors the caller downgrades to partial
// or empty text.
type Page interface {
	// Navigate loads the URL and waits for it to settle, up to timeout.
	Navigate(url string, timeout time.Duration) error

	// Eval runs a JavaScript function on the page and returns its value.
	// Returned promises are awaited.
	Eval(js string) (gson.JSON, error)

	// HTML returns the rendered HTML of the main document.
	HTML() (string, error)

	// Frames enumerates the page's child frames.
	Frames() ([]Frame, error)

	// Close releases the page.
	Close() error
}

// Frame is a child frame of a Page.
type Frame interface {
	// Text returns the frame's visible text.
	Text() (string, error)
}

const (
	// insecureWaitCeiling bounds the load wait for plaintext http sources,
	// so one unresponsive site cannot stall the whole run.
	insecureWaitCeiling = 12 * time.Second

	// settleDelay gives late scripts a moment after the load event.
	settleDelay = 2 * time.Second

	frameTextTimeout = 10 * time.Second
)

type rodPage struct {
	page *rod.Page
	log  *slog.Logger
}

func (p *rodPage) Navigate(url string, timeout time.Duration) error {
	if err := p.page.Timeout(timeout).Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}

	wait := p.page.Timeout(timeout)
	if strings.HasPrefix(url, "http:") {
		wait = p.page.Timeout(insecureWaitCeiling)
	}
	if err := wait.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	time.Sleep(settleDelay)
	return nil
}

func (p *rodPage) Eval(js string) (gson.JSON, error) {
	obj, err := p.page.Eval(js)
	if err != nil {
		return gson.New(nil), fmt.Errorf("evaluating script: %w", err)
	}
	return obj.Value, nil
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) Frames() ([]Frame, error) {
	els, err := p.page.Elements("iframe")
	if err != nil {
		return nil, fmt.Errorf("finding frames: %w", err)
	}

	frames := make([]Frame, 0, len(els))
	for _, el := range els {
		fp, err := el.Frame()
		if err != nil {
			p.log.Debug("skipping unreachable frame", "error", err)
			continue
		}
		frames = append(frames, &rodFrame{page: fp})
	}
	return frames, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodFrame struct {
	page *rod.Page
}

func (f *rodFrame) Text() (string, error) {
	obj, err := f.page.Timeout(frameTextTimeout).Eval(`() => document.body.innerText`)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}
