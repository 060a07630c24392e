package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != DefaultHost {
		t.Errorf("Expected host %s, got %s", DefaultHost, cfg.Server.Host)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected port %d, got %d", DefaultPort, cfg.Server.Port)
	}

	if cfg.Cache.MaxEntries <= 0 {
		t.Errorf("Expected a positive default cache entry budget, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.MaxMemoryBytes <= 0 {
		t.Errorf("Expected a positive default cache memory budget, got %d", cfg.Cache.MaxMemoryBytes)
	}

	if cfg.Pool.MaxConnections <= 0 {
		t.Errorf("Expected a positive default pool connection budget, got %d", cfg.Pool.MaxConnections)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Theme != "default" {
		t.Errorf("Expected log theme 'default', got %s", cfg.Logging.Theme)
	}

	if cfg.Engineering.ShowNerdStats != true {
		t.Error("Expected ShowNerdStats to be true by default")
	}
}

func TestLoadConfig_WithoutFile(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Expected default host %s, got %s", DefaultHost, cfg.Server.Host)
	}
}

func TestLoadConfig_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("PROXY_SERVER_PORT", "9100")
	t.Setenv("PROXY_LOGGING_LEVEL", "debug")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Expected port overridden to 9100, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level overridden to debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_MissingConfigFileEnvVarIsFatal(t *testing.T) {
	t.Setenv("PROXY_CONFIG_FILE", "/nonexistent/path/to/config.yaml")
	if _, err := Load(nil); err == nil {
		t.Error("Expected an error for a PROXY_CONFIG_FILE that does not exist")
	}
}

func TestMain(m *testing.M) {
	// viper is a package-level singleton; tests in this file run sequentially.
	os.Exit(m.Run())
}
