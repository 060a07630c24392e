package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("HLSPROXY_TEST_STR", "value")
	assert.Equal(t, "value", GetEnvOrDefault("HLSPROXY_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnvOrDefault("HLSPROXY_TEST_STR_UNSET", "fallback"))
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	t.Setenv("HLSPROXY_TEST_BOOL", "true")
	assert.True(t, GetEnvBoolOrDefault("HLSPROXY_TEST_BOOL", false))

	t.Setenv("HLSPROXY_TEST_BOOL_BAD", "not-a-bool")
	assert.True(t, GetEnvBoolOrDefault("HLSPROXY_TEST_BOOL_BAD", true))

	assert.False(t, GetEnvBoolOrDefault("HLSPROXY_TEST_BOOL_UNSET", false))
}

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("HLSPROXY_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvIntOrDefault("HLSPROXY_TEST_INT", 0))

	t.Setenv("HLSPROXY_TEST_INT_BAD", "nope")
	assert.Equal(t, 7, GetEnvIntOrDefault("HLSPROXY_TEST_INT_BAD", 7))

	assert.Equal(t, 9, GetEnvIntOrDefault("HLSPROXY_TEST_INT_UNSET", 9))
}
