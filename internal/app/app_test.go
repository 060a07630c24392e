package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelstream/hlsproxy/internal/adapter/cache"
	"github.com/kestrelstream/hlsproxy/internal/adapter/headers"
	"github.com/kestrelstream/hlsproxy/internal/adapter/pool"
	"github.com/kestrelstream/hlsproxy/internal/adapter/prefetch"
	"github.com/kestrelstream/hlsproxy/internal/adapter/rewriter"
	"github.com/kestrelstream/hlsproxy/internal/config"
	"github.com/kestrelstream/hlsproxy/internal/logger"
	"github.com/kestrelstream/hlsproxy/internal/router"
	"github.com/kestrelstream/hlsproxy/pkg/eventbus"
	"github.com/kestrelstream/hlsproxy/theme"
)

// newTestApplication builds an Application wired the way New does, minus
// the HTTP listener, so handlers can be exercised directly via httptest.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Cache.ExpiryMs = 0
	cfg.Cache.MaxEntries = 100
	cfg.Cache.MaxMemoryBytes = 1 << 20

	segmentCache := cache.New(cache.Config{
		MaxEntries:     cfg.Cache.MaxEntries,
		MaxMemoryBytes: cfg.Cache.MaxMemoryBytes,
		ExpiryMs:       cfg.Cache.ExpiryMs,
	})
	t.Cleanup(segmentCache.Close)

	poolMgr := pool.NewManager(pool.Config{
		MaxConnections:            cfg.Pool.MaxConnections,
		MaxPipelinedPerConnection: cfg.Pool.MaxPipelinedPerConnection,
		KeepAliveIdle:             cfg.Pool.KeepAliveIdle,
		DialTimeout:               cfg.Pool.DialTimeout,
	})
	t.Cleanup(poolMgr.CloseAll)

	fetcher := pool.NewFetcher(poolMgr)
	bus := eventbus.New[prefetch.Event]()
	orchestrator := prefetch.New(segmentCache, fetcher, bus, slog.Default())

	styled := logger.NewStyledLogger(slog.New(slog.NewTextHandler(discardWriter{}, nil)), theme.Default())

	return &Application{
		StartTime:  time.Now(),
		config:     cfg,
		logger:     styled,
		registry:   router.NewRouteRegistry(styled),
		cache:      segmentCache,
		poolMgr:    poolMgr,
		fetcher:    fetcher,
		rewriter:   rewriter.New(),
		policy:     headers.New(),
		bus:        bus,
		prefetcher: orchestrator,
		errCh:      make(chan error, 1),
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestManifestProxyHandler_MasterRewrite(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1,RESOLUTION=1280x720\nvariant.m3u8\n"))
	}))
	defer origin.Close()

	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/m3u8-proxy?url="+origin.URL+"/a/b.m3u8&headers=%7B%7D", nil)
	rr := httptest.NewRecorder()
	a.manifestProxyHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/m3u8-proxy?url=")
	assert.Equal(t, "application/vnd.apple.mpegurl", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestManifestProxyHandler_MissingURL(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/m3u8-proxy", nil)
	rr := httptest.NewRecorder()
	a.manifestProxyHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestManifestProxyHandler_UpstreamFailure(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer origin.Close()

	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/m3u8-proxy?url="+origin.URL+"/a/b.m3u8", nil)
	rr := httptest.NewRecorder()
	a.manifestProxyHandler(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestManifestProxyHandler_OptionsPreflight(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodOptions, "/m3u8-proxy", nil)
	rr := httptest.NewRecorder()
	a.manifestProxyHandler(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSegmentProxyHandler_MissOnlyThenHit(t *testing.T) {
	var hits int
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("segment-bytes"))
	}))
	defer origin.Close()

	a := newTestApplication(t)
	url := origin.URL + "/seg1.ts"

	req := httptest.NewRequest(http.MethodGet, "/ts-proxy?url="+url, nil)
	rr := httptest.NewRecorder()
	a.segmentProxyHandler(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "segment-bytes", rr.Body.String())

	// Second request should be served from cache, without a second origin hit.
	req2 := httptest.NewRequest(http.MethodGet, "/ts-proxy?url="+url, nil)
	rr2 := httptest.NewRecorder()
	a.segmentProxyHandler(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)
	assert.Equal(t, "segment-bytes", rr2.Body.String())

	assert.Equal(t, 1, hits)
}

func TestCacheStatsHandler(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/cache-stats", nil)
	rr := httptest.NewRecorder()
	a.cacheStatsHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "entries")
	assert.Contains(t, rr.Body.String(), "expiryHours")
}

func TestStreamHandler_MissingDestination(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rr := httptest.NewRecorder()
	a.streamHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStreamHandler_Passthrough(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stream-bytes"))
	}))
	defer origin.Close()

	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/stream?destination="+origin.URL, nil)
	rr := httptest.NewRecorder()
	a.streamHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "stream-bytes", rr.Body.String())
}
