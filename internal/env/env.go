// Package env reads process environment variables with typed defaults.
// Nothing here is cached: every call re-reads os.Getenv, matching the
// proxy's requirement that runtime switches like DISABLE_CACHE take
// effect immediately on the next request.
package env

import (
	"os"
	"strconv"
)

// GetEnvOrDefault returns the value of key, or def if it is unset.
func GetEnvOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// GetEnvBoolOrDefault parses key as a bool, or returns def if it is unset
// or unparseable.
func GetEnvBoolOrDefault(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

// GetEnvIntOrDefault parses key as an int, or returns def if it is unset
// or unparseable.
func GetEnvIntOrDefault(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
