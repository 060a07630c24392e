package ports

import (
	"context"
	"net/http"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

// SegmentCache is the concurrent LRU segment/manifest cache (§4.3).
type SegmentCache interface {
	Get(key string) (domain.CacheEntry, bool)
	Set(key string, entry domain.CacheEntry)
	Delete(key string) bool
	Clear()
	Cleanup() int
	Stats() domain.CacheStats
	// Close stops the periodic sweep goroutine; the cache must not be used
	// afterwards.
	Close()
}

// ManifestRewriter parses an M3U8 playlist body and returns the rewritten
// body with every relative URI resolved against rc and re-pointed at this
// proxy (§4.4).
type ManifestRewriter interface {
	Rewrite(body []byte, rc domain.RewriteContext) (domain.RewriteResult, error)
}

// PrefetchOrchestrator fans the segment/key URLs a manifest rewrite
// produced out to the SegmentCache, detached from the request that
// triggered it (§4.5).
type PrefetchOrchestrator interface {
	Prefetch(ctx context.Context, headerJSON string, urls []string)
}

// HeaderPolicy builds the outbound request headers for an upstream fetch
// from the client's inbound headers and scrubs a response header set
// before it is relayed back to the client (§4.1).
type HeaderPolicy interface {
	BuildOutbound(clientHeaders http.Header) http.Header
	Scrub(h http.Header) http.Header
}

// SegmentFetcher performs a single upstream request through the
// per-origin connection pool, falling back to a one-shot client on pool failure or
// transport error (§4.2, §9).
type SegmentFetcher interface {
	Request(ctx context.Context, method, rawURL string, headers http.Header) (*http.Response, error)
}
