package app

import (
	"io"
	"net/http"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/proxyerr"
	"github.com/kestrelstream/hlsproxy/internal/env"
)

// streamClient is a plain, non-pooled client: the generic path carries an
// arbitrary method and body, which the segment/manifest pool's Fetcher
// does not support.
var streamClient = &http.Client{Timeout: 2 * time.Minute}

// streamHandler implements the generic pass-through proxy at
// POST/GET /stream?destination=<url>. It is explicitly out of core scope
// (§6): no caching, no rewriting, no prefetch — it forwards the request
// body (if any) and relays the response verbatim.
//
// Outbound headers merge in left-to-right precedence per §9: the fixed
// default User-Agent first, then the caller's own request headers, so a
// caller-supplied header always wins a name collision.
func (a *Application) streamHandler(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	if destination == "" {
		a.writeProxyError(w, r, proxyerr.BadRequest("destination parameter is required"))
		return
	}

	outbound := make(http.Header)
	outbound.Set(constants.HeaderUserAgent, constants.DefaultUserAgent)
	for name, values := range r.Header {
		outbound.Del(name)
		for _, v := range values {
			outbound.Add(name, v)
		}
	}

	if env.GetEnvOrDefault(constants.EnvReqDebug, "") == constants.EnvDisabledValue {
		a.logger.Info("generic proxy outbound request", "method", r.Method, "url", destination, "headers", outbound)
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, destination, r.Body)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.BadRequest("invalid destination: "+err.Error()))
		return
	}
	req.Header = outbound

	resp, err := streamClient.Do(req)
	if err != nil {
		a.writeProxyError(w, r, proxyerr.TransportFailure(err))
		return
	}
	defer resp.Body.Close()

	for name, values := range a.policy.Scrub(resp.Header) {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
