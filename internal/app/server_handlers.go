package app

import (
	"github.com/kestrelstream/hlsproxy/internal/core/constants"
)

func (a *Application) registerRoutes() {
	a.registry.RegisterWithMethod(constants.PathManifestProxy, a.manifestProxyHandler, "Fetches and rewrites an HLS manifest", "GET")
	a.registry.RegisterWithMethod(constants.PathSegmentProxy, a.segmentProxyHandler, "Fetches (or replays from cache) a segment or key", "GET")
	a.registry.RegisterWithMethod(constants.PathCacheStats, a.cacheStatsHandler, "Reports segment cache occupancy and limits", "GET")
	a.registry.RegisterWithMethod(constants.PathStream, a.streamHandler, "Generic passthrough stream (out of core scope)", "GET/POST")
}
