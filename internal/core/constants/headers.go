package constants

// Canonical header names used by the header policy (§4.1) and the proxy
// handlers. Kept as constants so the escape-hatch table and the blacklist
// in internal/adapter/headers read as data, not scattered string literals.
const (
	HeaderUserAgent   = "User-Agent"
	HeaderCookie      = "Cookie"
	HeaderReferer     = "Referer"
	HeaderOrigin      = "Origin"
	HeaderXRealIP     = "X-Real-Ip"
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"

	HeaderXRequestID  = "X-Request-ID"
	HeaderAcceptEnc   = "Accept-Encoding"

	HeaderACAOrigin  = "Access-Control-Allow-Origin"
	HeaderACAHeaders = "Access-Control-Allow-Headers"
	HeaderACAMethods = "Access-Control-Allow-Methods"
	HeaderCacheCtrl  = "Cache-Control"
)

// DefaultUserAgent is the bit-exact outbound default (§6).
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:93.0) Gecko/20100101 Firefox/93.0"

// ManifestContentType is the bit-exact content type for rewritten manifests (§6).
const ManifestContentType = "application/vnd.apple.mpegurl"

// NoStoreCacheControl is the bit-exact Cache-Control value for manifest responses and /cache-stats.
const NoStoreCacheControl = "no-cache, no-store, must-revalidate"
