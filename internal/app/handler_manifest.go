package app

import (
	"context"
	"io"
	"net/http"

	"github.com/kestrelstream/hlsproxy/internal/adapter/headers"
	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/domain"
	"github.com/kestrelstream/hlsproxy/internal/core/proxyerr"
	"github.com/kestrelstream/hlsproxy/internal/env"
)

// manifestProxyHandler implements GET /m3u8-proxy (§6): fetch, rewrite,
// queue the prefetch, respond.
func (a *Application) manifestProxyHandler(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if env.GetEnvOrDefault(constants.EnvDisableM3U8, "") == constants.EnvDisabledValue {
		a.writeProxyError(w, r, proxyerr.Disabled("M3U8 proxying is disabled"))
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		a.writeProxyError(w, r, proxyerr.BadRequest("url parameter is required"))
		return
	}
	headerJSON := r.URL.Query().Get("headers")

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
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.logger.WarnWithOrigin("upstream returned non-2xx for manifest fetch", rawURL,
			"status", resp.StatusCode, "body", string(body))
		a.writeProxyError(w, r, proxyerr.UpstreamFailure(resp.StatusCode, resp.Status))
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.TransportFailure(err))
		return
	}

	rc := domain.RewriteContext{
		ManifestURL:      rawURL,
		ProxyBaseURL:     proxyBaseURL(r),
		ClientHeaderJSON: headerJSON,
	}
	result, err := a.rewriter.Rewrite(body, rc)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.BadRequest("manifest rewrite failed: "+err.Error()))
		return
	}

	// Prefetching is detached from this request's lifetime: the response
	// is written below regardless of how long warming takes (§4.5).
	a.prefetcher.Prefetch(context.Background(), headerJSON, result.PrefetchURLs)

	w.Header().Set(ContentTypeHeader, constants.ManifestContentType)
	w.Header().Set(constants.HeaderCacheCtrl, constants.NoStoreCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}
