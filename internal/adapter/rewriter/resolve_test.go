package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_WithBase(t *testing.T) {
	got, err := resolve("variant.m3u8", "https://o.test/a/b.m3u8")
	require.NoError(t, err)
	assert.Equal(t, "https://o.test/a/variant.m3u8", got)
}

func TestResolve_IdempotentOnAbsoluteInput(t *testing.T) {
	got, err := resolve("https://o.test/a/variant.m3u8", "https://o.test/a/b.m3u8")
	require.NoError(t, err)
	assert.Equal(t, "https://o.test/a/variant.m3u8", got)
}

// TestResolve_StandaloneDefaultsToHTTP mirrors property 5: with no base,
// a bare host/path resolves to an http:// URL because its port isn't 443.
func TestResolve_StandaloneDefaultsToHTTP(t *testing.T) {
	got, err := resolve("example.com/path", "")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path", got)
}

func TestResolve_StandalonePort443UsesHTTPS(t *testing.T) {
	got, err := resolve("example.com:443/path", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:443/path", got)
}

// TestResolve_RejectsMalformedScheme mirrors property 5's required rejection.
func TestResolve_RejectsMalformedScheme(t *testing.T) {
	_, err := resolve("http:/notenoughslashes", "")
	assert.Error(t, err)
}

// TestResolve_RejectsEmptyHostname mirrors property 5's required rejection.
func TestResolve_RejectsEmptyHostname(t *testing.T) {
	_, err := resolve("http://:1/", "")
	assert.Error(t, err)
}

func TestResolve_AcceptsAlreadySchemedStandaloneURL(t *testing.T) {
	got, err := resolve("https://cdn.test/seg.ts", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/seg.ts", got)
}
