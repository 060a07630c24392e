package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Origin      OriginConfig      `yaml:"origin"`
	Cache       CacheConfig       `yaml:"cache"`
	Pool        PoolConfig        `yaml:"pool"`
	Logging     LoggingConfig     `yaml:"logging"`
	Engineering EngineeringConfig `yaml:"engineering"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string              `yaml:"host"`
	Port            int                 `yaml:"port"`
	ReadTimeout     time.Duration       `yaml:"read_timeout"`
	WriteTimeout    time.Duration       `yaml:"write_timeout"`
	ShutdownTimeout time.Duration       `yaml:"shutdown_timeout"`
	RequestLimits   ServerRequestLimits `yaml:"request_limits"`
	RateLimits      ServerRateLimits    `yaml:"rate_limits"`
}

// ServerRequestLimits defines request size and validation limits.
type ServerRequestLimits struct {
	MaxBodySize   int64 `yaml:"max_body_size"`
	MaxHeaderSize int64 `yaml:"max_header_size"`
}

// ServerRateLimits defines rate limiting configuration for the inbound
// client-facing edge of the proxy.
type ServerRateLimits struct {
	GlobalRequestsPerMinute int           `yaml:"global_requests_per_minute"`
	PerIPRequestsPerMinute  int           `yaml:"per_ip_requests_per_minute"`
	BurstSize               int           `yaml:"burst_size"`
	CleanupInterval         time.Duration `yaml:"cleanup_interval"`
	IPExtractionTrustProxy  bool          `yaml:"ip_extraction_trust_proxy"`
}

// OriginConfig holds origin-fetch timeouts. FetchTimeout is only compared
// with Server.WriteTimeout at startup to log a warning; FallbackTimeout is
// not read. Neither value is passed to the connection pool or its
// fallback client.
type OriginConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout"`
}

// CacheConfig holds the segment cache's footprint bounds (§4.3).
type CacheConfig struct {
	MaxEntries     int           `yaml:"max_entries"`
	MaxMemoryBytes int64         `yaml:"max_memory_bytes"`
	ExpiryMs       int64         `yaml:"expiry_ms"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// PoolConfig holds the per-origin connection pool's tuning knobs (§4.2).
type PoolConfig struct {
	MaxConnections            int           `yaml:"max_connections"`
	MaxPipelinedPerConnection int           `yaml:"max_pipelined_per_connection"`
	KeepAliveIdle             time.Duration `yaml:"keep_alive_idle"`
	DialTimeout               time.Duration `yaml:"dial_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Theme      string `yaml:"theme"`
	LogDir     string `yaml:"log_dir"`
	FileOutput bool   `yaml:"file_output"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	PrettyLogs bool   `yaml:"pretty_logs"`
}

// EngineeringConfig holds development/debugging configuration.
type EngineeringConfig struct {
	ShowNerdStats bool `yaml:"show_nerdstats"`
	Profiler      bool `yaml:"profiler"`
}
