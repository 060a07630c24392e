package app

import (
	"fmt"
	"net/http"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/proxyerr"
)

// writeCORSHeaders applies the fixed ACAO/ACAH/ACAM triple that the
// manifest and segment endpoints answer with, including on their OPTIONS
// preflight (§6).
func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set(constants.HeaderACAOrigin, "*")
	w.Header().Set(constants.HeaderACAHeaders, "*")
	w.Header().Set(constants.HeaderACAMethods, "*")
}

// writeProxyError maps err to its designated HTTP status and writes a
// plain-text statusMessage body (§7).
func (a *Application) writeProxyError(w http.ResponseWriter, r *http.Request, err error) {
	status := proxyerr.StatusCodeOf(err)
	a.logger.Warn("proxy request failed", "path", r.URL.Path, "query", r.URL.RawQuery, "status", status, "error", err)

	w.Header().Set(ContentTypeHeader, ContentTypeText)
	w.WriteHeader(status)
	fmt.Fprint(w, err.Error())
}

// proxyBaseURL derives this service's own externally-visible base URL
// from the incoming request, so rewritten manifests point back at
// whatever host/scheme the client actually used to reach the proxy.
func proxyBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
