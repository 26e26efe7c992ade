package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// textPollInterval is how often WaitForText re-reads the page while
// waiting for a marker to appear.
const textPollInterval = 250 * time.Millisecond

// Rod is the Surface implementation backed by a DevTools-protocol
// browser via rod. One Rod drives one page.
type Rod struct {
	browser     *rod.Browser
	page        *rod.Page
	downloadDir string
}

// Connect attaches to a running browser over its DevTools websocket URL
// and opens a fresh page. Downloads are staged under a private temp dir.
func Connect(controlURL string) (*Rod, error) {
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect %s: %w", controlURL, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	dir, err := os.MkdirTemp("", "cosecha-download-*")
	if err != nil {
		return nil, fmt.Errorf("browser: download dir: %w", err)
	}

	return &Rod{browser: b, page: page, downloadDir: dir}, nil
}

// Close closes the page and removes the download staging dir. The
// underlying browser process is left to its owner.
func (r *Rod) Close() error {
	os.RemoveAll(r.downloadDir)
	return r.page.Close()
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	page := r.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}
	return nil
}

func (r *Rod) Locate(ctx context.Context, selector string) (Element, error) {
	has, el, err := r.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: locate %q: %w", selector, err)
	}
	if !has {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &rodElement{el: el}, nil
}

func (r *Rod) LocateAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := r.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: locate all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (r *Rod) WaitForText(ctx context.Context, marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		text, err := r.PageText(ctx)
		if err == nil && strings.Contains(text, marker) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: marker %q after %s", ErrWaitTimeout, marker, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(textPollInterval):
		}
	}
}

func (r *Rod) PageText(ctx context.Context) (string, error) {
	res, err := r.page.Context(ctx).Eval(`() => document.body.innerText`)
	if err != nil {
		return "", fmt.Errorf("browser: page text: %w", err)
	}
	return res.Value.Str(), nil
}

func (r *Rod) CurrentURL(ctx context.Context) (string, error) {
	info, err := r.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// AwaitDownload arms the browser's download trap, runs the trigger, and
// reads the completed file from the staging dir.
func (r *Rod) AwaitDownload(ctx context.Context, timeout time.Duration, trigger func() error) ([]byte, string, error) {
	wait := r.browser.WaitDownload(r.downloadDir)

	if err := trigger(); err != nil {
		return nil, "", err
	}

	type result struct {
		info *proto.PageDownloadWillBegin
	}
	done := make(chan result, 1)
	go func() { done <- result{info: wait()} }()

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case <-time.After(timeout):
		return nil, "", fmt.Errorf("%w: download after %s", ErrWaitTimeout, timeout)
	case res := <-done:
		if res.info == nil {
			return nil, "", fmt.Errorf("browser: download did not begin")
		}
		path := filepath.Join(r.downloadDir, res.info.GUID)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("browser: read download: %w", err)
		}
		os.Remove(path)
		return data, res.info.SuggestedFilename, nil
	}
}

func (r *Rod) Cookies(ctx context.Context) ([]Cookie, error) {
	cookies, err := r.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("browser: cookies: %w", err)
	}
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return out, nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("browser: element text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *rodElement) Attr(ctx context.Context, name string) (string, error) {
	attr, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", fmt.Errorf("browser: attribute %q: %w", name, err)
	}
	if attr == nil {
		return "", nil
	}
	return *attr, nil
}

func (e *rodElement) All(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: descendants %q: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}
