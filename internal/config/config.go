package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
)

const (
	DefaultPort = 8900
	DefaultHost = "0.0.0.0"

	DefaultFileWriteDelay = 150 * time.Millisecond // Small delay to ensure file write is complete
)

var (
	lastReload  time.Time
	reloadMutex sync.Mutex
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute, // segments can be large, origins can be slow
			ShutdownTimeout: 10 * time.Second,
			RequestLimits: ServerRequestLimits{
				MaxBodySize:   1 << 20, // 1MiB
				MaxHeaderSize: 1 << 16,
			},
			RateLimits: ServerRateLimits{
				GlobalRequestsPerMinute: 0, // disabled by default
				PerIPRequestsPerMinute:  0,
				BurstSize:               0,
				CleanupInterval:         5 * time.Minute,
				IPExtractionTrustProxy:  false,
			},
		},
		Origin: OriginConfig{
			FetchTimeout:    30 * time.Second,
			FallbackTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			MaxEntries:     constants.DefaultCacheMaxEntries,
			MaxMemoryBytes: constants.DefaultCacheMaxMemoryMiB << 20,
			ExpiryMs:       int64((time.Duration(constants.DefaultCacheExpiryHours) * time.Hour).Milliseconds()),
			SweepInterval:  time.Duration(constants.DefaultCacheSweepInterval) * time.Minute,
		},
		Pool: PoolConfig{
			MaxConnections:            constants.DefaultPoolMaxConnections,
			MaxPipelinedPerConnection: constants.DefaultPoolMaxPipelinedPerConnection,
			KeepAliveIdle:             time.Duration(constants.DefaultPoolKeepAliveIdleMs) * time.Millisecond,
			DialTimeout:               10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Theme:      "default",
			LogDir:     "./logs",
			FileOutput: true,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			PrettyLogs: true,
		},
		Engineering: EngineeringConfig{
			ShowNerdStats: true,
			Profiler:      false,
		},
	}
}

// Load loads configuration from file and environment variables, wiring
// onConfigChange as a debounced callback for hot config reload.
func Load(onConfigChange func()) (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("PROXY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, check if we have PROXY_CONFIG_FILE env var
		if configFile := os.Getenv("PROXY_CONFIG_FILE"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	viper.WatchConfig()

	if onConfigChange != nil {
		viper.OnConfigChange(func(e fsnotify.Event) {
			reloadMutex.Lock()
			defer reloadMutex.Unlock()

			// lame debounce to avoid rapid-fire reloads
			now := time.Now()
			if now.Sub(lastReload) < 500*time.Millisecond {
				return // Ignore miultiple rapid changes
			}
			lastReload = now

			// looks like on windows this event is triggered
			// before the file is fully written, not sure why
			time.Sleep(DefaultFileWriteDelay)
			onConfigChange()
		})
	}
	return config, nil
}
