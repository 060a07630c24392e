package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURIComponent_EscapesReservedCharacters(t *testing.T) {
	assert.Equal(t, "https%3A%2F%2Fo.test%2Fa%2Fvariant.m3u8", encodeURIComponent("https://o.test/a/variant.m3u8"))
}

func TestEncodeURIComponent_LeavesUnreservedAlone(t *testing.T) {
	assert.Equal(t, "abcXYZ012-._~", encodeURIComponent("abcXYZ012-._~"))
}

func TestEncodeURIComponent_EncodesJSON(t *testing.T) {
	assert.Equal(t, "%7B%7D", encodeURIComponent("{}"))
}
