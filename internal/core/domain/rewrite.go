package domain

// RewriteContext carries everything the Manifest Rewriter needs to turn
// upstream-relative URIs into fully-qualified, proxied ones (§4.4).
type RewriteContext struct {
	// ManifestURL is the absolute URL the manifest was fetched from; it is
	// the base against which relative URIs in the manifest are resolved.
	ManifestURL string

	// ProxyBaseURL is this service's own external base URL, e.g.
	// "https://proxy.example.com", used to build the /ts-proxy and
	// recursive /m3u8-proxy links emitted in the rewritten manifest.
	ProxyBaseURL string

	// ClientHeaderJSON is the client's "headers" query parameter, a JSON
	// object of extra headers (X-Cookie, X-Referer, ...), carried verbatim
	// into the emitted links so a later segment fetch can replay them
	// without a server-side session (§4.1).
	ClientHeaderJSON string
}

// PoolKey identifies a connection pool in the registry; it is always
// derived from an Origin so two URLs sharing scheme+host(+port) share one
// pool (§4.2).
type PoolKey = Origin

// RewriteResult is the outcome of rewriting one manifest: the rewritten
// body, its classification, and every absolute URL the prefetch
// orchestrator should warm the cache with (§4.4).
type RewriteResult struct {
	Body         []byte
	Kind         PlaylistKind
	PrefetchURLs []string
}
