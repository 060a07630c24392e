// Package prefetch implements the prefetch orchestrator (§4.5): on every
// media-playlist rewrite it fans out an unbounded, detached, concurrent
// prefetch for each referenced segment/key URL and warms the cache.
package prefetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/adapter/headers"
	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/domain"
	"github.com/kestrelstream/hlsproxy/internal/core/ports"
	"github.com/kestrelstream/hlsproxy/internal/env"
	"github.com/kestrelstream/hlsproxy/pkg/eventbus"
)

// Event is published to the bus once per completed prefetch task,
// success or failure, so operators can observe warming without affecting
// the client-visible response.
type Event struct {
	URL     string
	Success bool
	Err     error
}

// Fetcher is the subset of the connection pool's fetch surface the
// orchestrator needs.
type Fetcher interface {
	Request(ctx context.Context, method, rawURL string, headers http.Header) (*http.Response, error)
}

// Orchestrator couples the rewriter's prefetch URL list to the segment
// cache, via a pooled fetch per URL.
type Orchestrator struct {
	cache   ports.SegmentCache
	fetcher Fetcher
	policy  headers.Policy
	bus     *eventbus.EventBus[Event]
	log     *slog.Logger
}

// New constructs an Orchestrator. bus may be nil, in which case prefetch
// completions are simply not published anywhere.
func New(cache ports.SegmentCache, fetcher Fetcher, bus *eventbus.EventBus[Event], log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cache:   cache,
		fetcher: fetcher,
		policy:  headers.New(),
		bus:     bus,
		log:     log,
	}
}

// Prefetch runs cleanup on the cache, then fans out one detached
// goroutine per URL in urls, skipping entries already live in the cache.
// DISABLE_CACHE is read fresh on every call, never cached (§4.5).
func (o *Orchestrator) Prefetch(ctx context.Context, headerJSON string, urls []string) {
	if env.GetEnvOrDefault(constants.EnvDisableCache, "") == constants.EnvDisabledValue {
		return
	}
	if len(urls) == 0 {
		return
	}

	o.cache.Cleanup()

	clientHeaders, err := headers.DecodeClientHeaderJSON(headerJSON)
	if err != nil {
		clientHeaders = http.Header{}
	}
	outbound := o.policy.BuildOutbound(clientHeaders)
	for _, u := range urls {
		go o.prefetchOne(context.Background(), u, outbound)
	}
}

func (o *Orchestrator) prefetchOne(ctx context.Context, url string, outbound http.Header) {
	key, err := domain.NormalizeCacheKey(url)
	if err != nil {
		o.publish(Event{URL: url, Success: false, Err: err})
		return
	}

	if _, hit := o.cache.Get(key); hit {
		o.publish(Event{URL: url, Success: true})
		return
	}

	resp, err := o.fetcher.Request(ctx, http.MethodGet, url, outbound)
	if err != nil {
		o.log.Warn("prefetch failed", "url", url, "error", err)
		o.publish(Event{URL: url, Success: false, Err: err})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		o.log.Warn("prefetch upstream non-2xx", "url", url, "status", resp.StatusCode)
		o.publish(Event{URL: url, Success: false})
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		o.log.Warn("prefetch body read failed", "url", url, "error", err)
		o.publish(Event{URL: url, Success: false, Err: err})
		return
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		respHeaders[name] = resp.Header.Get(name)
	}

	o.cache.Set(key, domain.CacheEntry{
		Bytes:      body,
		Headers:    respHeaders,
		InsertedAt: time.Now().UnixMilli(),
		SizeBytes:  int64(len(body)),
	})
	o.publish(Event{URL: url, Success: true})
}

func (o *Orchestrator) publish(e Event) {
	if o.bus == nil {
		return
	}
	o.bus.PublishAsync(e)
}
