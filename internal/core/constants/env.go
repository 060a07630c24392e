package constants

// Environment variable switches from spec.md §6. Read fresh on every
// invocation by the components that consult them — never cached at
// startup (see internal/env).
const (
	EnvDisableCache = "DISABLE_CACHE"
	EnvDisableM3U8  = "DISABLE_M3U8"
	EnvReqDebug     = "REQ_DEBUG"

	EnvDisabledValue = "true"
)

const (
	DefaultPoolMaxConnections            = 10
	DefaultPoolMaxPipelinedPerConnection = 5
	DefaultPoolKeepAliveIdleMs           = 30_000

	DefaultCacheMaxEntries    = 2000
	DefaultCacheMaxMemoryMiB  = 500
	DefaultCacheExpiryHours   = 2
	DefaultCacheSweepInterval = 30 // minutes
)
