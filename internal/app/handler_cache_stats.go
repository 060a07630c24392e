package app

import (
	"encoding/json"
	"net/http"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
)

// cacheStatsHandler implements GET /cache-stats (§6): run cleanup, then
// report the cache's occupancy and limits.
func (a *Application) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	a.cache.Cleanup()
	stats := a.cache.Stats()

	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.Header().Set(constants.HeaderCacheCtrl, constants.NoStoreCacheControl)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(stats)
}
