package app

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/adapter/headers"
	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/domain"
	"github.com/kestrelstream/hlsproxy/internal/core/proxyerr"
	"github.com/kestrelstream/hlsproxy/internal/env"
	"github.com/kestrelstream/hlsproxy/pkg/pool"
)

// segmentBufferPool reuses the scratch buffer a cache-bound segment body
// is teed into, so warming the cache on a hot path doesn't allocate one
// per request on top of the final cached slice.
var segmentBufferPool = pool.NewLitePool(func() *bytes.Buffer {
	return new(bytes.Buffer)
})

// segmentProxyHandler implements GET /ts-proxy (§6): replay from cache on
// hit, otherwise fetch via the pool, stream to the client, and
// opportunistically warm the cache.
func (a *Application) segmentProxyHandler(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		a.writeProxyError(w, r, proxyerr.BadRequest("url parameter is required"))
		return
	}
	headerJSON := r.URL.Query().Get("headers")

	disableCache := env.GetEnvOrDefault(constants.EnvDisableCache, "") == constants.EnvDisabledValue

	cacheKey, keyErr := domain.NormalizeCacheKey(rawURL)
	if !disableCache && keyErr == nil {
		if hit, ok := a.cache.Get(cacheKey); ok {
			a.logger.InfoCacheHit("segment cache hit", cacheKey)
			for name, value := range hit.Headers {
				w.Header().Set(name, value)
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(hit.Bytes)
			return
		}
		a.logger.InfoCacheMiss("segment cache miss", cacheKey)
	}

	clientHeaders, err := headers.DecodeClientHeaderJSON(headerJSON)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.BadRequest("invalid headers parameter: "+err.Error()))
		return
	}
	outbound := a.policy.BuildOutbound(clientHeaders)

	resp, err := a.fetcher.Request(r.Context(), http.MethodGet, rawURL, outbound)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.TransportFailure(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.writeProxyError(w, r, proxyerr.UpstreamFailure(resp.StatusCode, resp.Status))
		return
	}

	scrubbed := a.policy.Scrub(resp.Header)
	for name, values := range scrubbed {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(http.StatusOK)

	if disableCache || keyErr != nil {
		_, _ = io.Copy(w, resp.Body)
		return
	}

	// Tee the body to the client while also buffering it for the cache, so
	// the client receives bytes as they arrive instead of after the whole
	// segment has been read.
	buf := segmentBufferPool.Get()
	defer segmentBufferPool.Put(buf)

	if _, err := io.Copy(buf, io.TeeReader(resp.Body, w)); err != nil {
		return
	}
	body := append([]byte(nil), buf.Bytes()...)

	respHeaders := make(map[string]string, len(scrubbed))
	for name := range scrubbed {
		respHeaders[name] = scrubbed.Get(name)
	}
	a.cache.Set(cacheKey, domain.CacheEntry{
		Bytes:      body,
		Headers:    respHeaders,
		InsertedAt: time.Now().UnixMilli(),
		SizeBytes:  int64(len(body)),
	})
}
