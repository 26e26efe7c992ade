// Package browser defines the automation surface the harvest pipeline
// drives, plus a rod-backed implementation and a scripted in-memory
// implementation for tests. Pipeline code depends only on the Surface
// interface, never on transport details.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no element matched a locator in the current
// rendering of the page.
var ErrNotFound = errors.New("browser: element not found")

// ErrWaitTimeout reports that a bounded wait expired before its
// condition held.
var ErrWaitTimeout = errors.New("browser: wait timed out")

// Cookie is one session cookie of the authenticated page.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Element is one located node of the page. A handle is only valid for
// the rendering it was located in; after any re-render the caller must
// re-locate by business key, never reuse a stale handle.
type Element interface {
	// Click dispatches a click and returns once it is delivered.
	Click(ctx context.Context) error

	// Text returns the trimmed visible text of the element.
	Text(ctx context.Context) (string, error)

	// Attr returns the named attribute, or "" when absent.
	Attr(ctx context.Context, name string) (string, error)

	// All locates descendant elements by CSS selector, in document order.
	All(ctx context.Context, selector string) ([]Element, error)
}

// Surface is the page-level automation port.
type Surface interface {
	// Navigate loads the URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error

	// Locate finds the first element matching the CSS selector, or
	// ErrNotFound.
	Locate(ctx context.Context, selector string) (Element, error)

	// LocateAll finds every element matching the CSS selector, in
	// document order. An empty result is not an error.
	LocateAll(ctx context.Context, selector string) ([]Element, error)

	// WaitForText blocks until the page text contains the marker or the
	// timeout expires (ErrWaitTimeout).
	WaitForText(ctx context.Context, marker string, timeout time.Duration) error

	// PageText returns the full visible text of the current rendering.
	PageText(ctx context.Context) (string, error)

	// CurrentURL returns the URL of the current page.
	CurrentURL(ctx context.Context) (string, error)

	// AwaitDownload runs trigger and waits for the download it starts,
	// returning the file bytes and the suggested filename.
	AwaitDownload(ctx context.Context, timeout time.Duration, trigger func() error) ([]byte, string, error)

	// Cookies returns the cookies of the current page.
	Cookies(ctx context.Context) ([]Cookie, error)
}
