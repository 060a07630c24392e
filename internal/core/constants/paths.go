package constants

// Route paths wired by internal/app and consulted by the
// logging middleware to decide log verbosity (§6).
const (
	PathManifestProxy = "/m3u8-proxy"
	PathSegmentProxy  = "/ts-proxy"
	PathCacheStats    = "/cache-stats"
	PathStream        = "/stream"
)

// ContextRequestIDKey is the context key the logging middleware stores
// the per-request ID under, separate from the constant header name.
const ContextRequestIDKey = "request_id"
