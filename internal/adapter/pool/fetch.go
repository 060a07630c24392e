package pool

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

// fallbackClient is used only when the pooled transport fails; it is not
// kept alive or reused, matching the "one-shot, non-pooled" contract.
var fallbackClient = &http.Client{Timeout: 30 * time.Second}

// Fetcher resolves the pool for a URL's origin and issues the request, falling
// back to a one-shot client on transport failure or pool exhaustion (§4.2).
type Fetcher struct {
	manager *Manager
}

// NewFetcher builds a Fetcher over manager.
func NewFetcher(manager *Manager) *Fetcher {
	return &Fetcher{manager: manager}
}

// Request resolves rawURL's origin, issues method with headers, and
// streams the response back without buffering the body.
func (f *Fetcher) Request(ctx context.Context, method, rawURL string, headers http.Header) (*http.Response, error) {
	origin, err := domain.DeriveOrigin(rawURL)
	if err != nil {
		return nil, fmt.Errorf("pool request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pool request: build request: %w", err)
	}
	req.Header = headers.Clone()

	p, err := f.manager.Acquire(ctx, origin)
	if err == nil {
		resp, doErr := p.Do(req)
		if doErr == nil {
			return resp, nil
		}
	}

	// Fallback: a fresh request on a one-shot client, per §4.2 and §9.
	fallbackReq, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pool request: build fallback request: %w", err)
	}
	fallbackReq.Header = headers.Clone()

	resp, err := fallbackClient.Do(fallbackReq)
	if err != nil {
		return nil, fmt.Errorf("pool request: fallback fetch failed: %w", err)
	}
	return resp, nil
}
