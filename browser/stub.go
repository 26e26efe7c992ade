package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Rendering is one scripted state of a stub page: its visible text plus
// the elements each selector resolves to.
type Rendering struct {
	Text     string
	Elements map[string][]*StubElement
}

// StubElement is a scripted element. OnClick runs on every click and
// typically swaps the stub's rendering, mimicking a re-render.
type StubElement struct {
	TextValue string
	Attrs     map[string]string
	Children  map[string][]*StubElement
	OnClick   func()
	ClickErr  error
	Clicks    int
}

// Stub is a scripted in-memory Surface. Tests drive the pipeline by
// swapping renderings from OnClick handlers; no transport is involved.
type Stub struct {
	rendering *Rendering
	url       string
	Navigated []string
	CookieJar []Cookie

	offered      []byte
	offeredName  string
	downloadArms int
}

// NewStub creates a stub showing the given initial rendering.
func NewStub(initial *Rendering) *Stub {
	return &Stub{rendering: initial}
}

// SetRendering swaps the current rendering, as a page re-render would.
func (s *Stub) SetRendering(r *Rendering) { s.rendering = r }

// OfferDownload stages the bytes the next armed download will yield.
// Call it from the OnClick of the element that starts a download.
func (s *Stub) OfferDownload(data []byte, name string) {
	s.offered = data
	s.offeredName = name
}

func (s *Stub) Navigate(_ context.Context, url string) error {
	s.url = url
	s.Navigated = append(s.Navigated, url)
	return nil
}

func (s *Stub) Locate(_ context.Context, selector string) (Element, error) {
	els := s.rendering.Elements[selector]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return els[0], nil
}

func (s *Stub) LocateAll(_ context.Context, selector string) ([]Element, error) {
	els := s.rendering.Elements[selector]
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

// WaitForText resolves against the current rendering without sleeping:
// a scripted click has already swapped the rendering by the time the
// pipeline waits, so an absent marker means the script never provides it.
func (s *Stub) WaitForText(_ context.Context, marker string, timeout time.Duration) error {
	if strings.Contains(s.rendering.Text, marker) {
		return nil
	}
	return fmt.Errorf("%w: marker %q after %s", ErrWaitTimeout, marker, timeout)
}

func (s *Stub) PageText(context.Context) (string, error) {
	return s.rendering.Text, nil
}

func (s *Stub) CurrentURL(context.Context) (string, error) {
	return s.url, nil
}

func (s *Stub) AwaitDownload(_ context.Context, timeout time.Duration, trigger func() error) ([]byte, string, error) {
	s.offered = nil
	s.offeredName = ""
	s.downloadArms++

	if err := trigger(); err != nil {
		return nil, "", err
	}
	if s.offered == nil {
		return nil, "", fmt.Errorf("%w: download after %s", ErrWaitTimeout, timeout)
	}
	return s.offered, s.offeredName, nil
}

func (s *Stub) Cookies(context.Context) ([]Cookie, error) {
	return s.CookieJar, nil
}

func (e *StubElement) Click(context.Context) error {
	e.Clicks++
	if e.ClickErr != nil {
		return e.ClickErr
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *StubElement) Text(context.Context) (string, error) {
	return strings.TrimSpace(e.TextValue), nil
}

func (e *StubElement) Attr(_ context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *StubElement) All(_ context.Context, selector string) ([]Element, error) {
	children := e.Children[selector]
	out := make([]Element, 0, len(children))
	for _, el := range children {
		out = append(out, el)
	}
	return out, nil
}
