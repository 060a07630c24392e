package headers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
)

func TestBuildOutbound_DefaultUserAgent(t *testing.T) {
	p := New()
	out := p.BuildOutbound(http.Header{})
	assert.Equal(t, constants.DefaultUserAgent, out.Get(constants.HeaderUserAgent))
}

func TestBuildOutbound_EscapeHatchTranslation(t *testing.T) {
	p := New()
	client := http.Header{}
	client.Set("X-Cookie", "session=abc")
	client.Set("X-Referer", "https://player.test/")
	client.Set("X-User-Agent", "CustomPlayer/1.0")

	out := p.BuildOutbound(client)

	assert.Equal(t, "session=abc", out.Get(constants.HeaderCookie))
	assert.Equal(t, "https://player.test/", out.Get(constants.HeaderReferer))
	assert.Equal(t, "CustomPlayer/1.0", out.Get(constants.HeaderUserAgent))
}

func TestBuildOutbound_UnrecognisedHeadersNotForwarded(t *testing.T) {
	p := New()
	client := http.Header{}
	client.Set("X-Something-Else", "nope")

	out := p.BuildOutbound(client)
	assert.Empty(t, out.Get("X-Something-Else"))
}

// TestScrub_S7 mirrors scenario S7 from the manifest rewrite design: a
// forwarded-for header is dropped, the zstd token is stripped from
// Accept-Encoding while other tokens survive, and the escape-hatch name
// itself never reaches the outbound set.
func TestScrub_S7(t *testing.T) {
	p := New()
	in := http.Header{}
	in.Set("X-Forwarded-For", "1.2.3.4")
	in.Set("Accept-Encoding", "gzip, zstd, br")
	in.Set("X-Cookie", "c=1")

	out := p.Scrub(in)

	assert.Empty(t, out.Get("X-Forwarded-For"))
	assert.Equal(t, "gzip, br", out.Get("Accept-Encoding"))
	assert.Empty(t, out.Get("X-Cookie"))
}

func TestScrub_BlacklistIsCaseInsensitive(t *testing.T) {
	p := New()
	in := http.Header{}
	in.Set("CF-Connecting-IP", "1.2.3.4")
	in.Set("Content-Length", "100")

	out := p.Scrub(in)

	assert.Empty(t, out.Get("CF-Connecting-IP"))
	assert.Empty(t, out.Get("Content-Length"))
}

func TestScrub_PreservesUnblockedHeaders(t *testing.T) {
	p := New()
	in := http.Header{}
	in.Set("Content-Type", "video/mp2t")

	out := p.Scrub(in)
	assert.Equal(t, "video/mp2t", out.Get("Content-Type"))
}
