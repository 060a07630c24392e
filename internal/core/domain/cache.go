package domain

// CacheEntry holds one cached segment or manifest body together with the
// subset of upstream response headers the proxy replays to clients, and
// the bookkeeping the LRU needs to evict and expire it (§3).
type CacheEntry struct {
	Bytes      []byte
	Headers    map[string]string
	InsertedAt int64 // unix millis, monotonic within a process
	SizeBytes  int64
}

// CacheStats is the snapshot returned by /cache-stats (§4.3, §6).
type CacheStats struct {
	Entries     int     `json:"entries"`
	TotalMB     float64 `json:"totalMB"`
	AvgEntryKB  float64 `json:"avgEntryKB"`
	MaxEntries  int     `json:"maxEntries"`
	MaxMB       float64 `json:"maxMB"`
	CurrentMB   float64 `json:"currentMB"`
	ExpiryHours float64 `json:"expiryHours"`
}
