// Package rewriter implements the HLS manifest classifier and rewriter
// (§4.4): it classifies a playlist as master or media, resolves every
// embedded URI against the manifest's own URL, and points each one back
// at this proxy's /m3u8-proxy or /ts-proxy endpoints.
package rewriter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

// firstAbsoluteURL extracts the first https?://... token up to a quote or
// whitespace boundary; this is the heuristic extraction from §4.4/§9 —
// deliberately fragile for protocol-relative or quoted-with-whitespace URIs.
var firstAbsoluteURL = regexp.MustCompile(`https?://[^"\s]+`)

// Rewriter is the stateless manifest transform described in §4.4.
type Rewriter struct{}

// New constructs a Rewriter. There is no configuration to carry.
func New() Rewriter {
	return Rewriter{}
}

// Rewrite parses body line-by-line and returns the rewritten manifest
// together with the list of absolute URLs to prefetch.
func (Rewriter) Rewrite(body []byte, rc domain.RewriteContext) (domain.RewriteResult, error) {
	text := string(body)
	kind := classify(text)

	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	var prefetch []string

	for i, line := range lines {
		rewritten, emit := rewriteLine(line, kind, rc)
		out[i] = rewritten
		if emit != "" {
			prefetch = append(prefetch, emit)
		}
	}

	return domain.RewriteResult{
		Body:         []byte(strings.Join(out, "\n")),
		Kind:         kind,
		PrefetchURLs: prefetch,
	}, nil
}

// classify treats any manifest containing the literal "RESOLUTION=" as a
// master playlist; everything else is a media playlist (§4.4).
func classify(text string) domain.PlaylistKind {
	if strings.Contains(text, "RESOLUTION=") {
		return domain.PlaylistMaster
	}
	return domain.PlaylistMedia
}

func lineKindOf(line string) domain.LineKind {
	switch {
	case strings.TrimSpace(line) == "":
		return domain.LineBlank
	case strings.HasPrefix(line, "#EXT-X-KEY") || strings.HasPrefix(line, "#EXT-X-MEDIA"):
		return domain.LineDirective
	case strings.HasPrefix(line, "#"):
		return domain.LineComment
	default:
		return domain.LineURI
	}
}

// rewriteLine dispatches a single line per the master/media tables in
// §4.4, returning the (possibly unchanged) output line and, when the line
// should also be queued for prefetch, the absolute URL to prefetch.
func rewriteLine(line string, kind domain.PlaylistKind, rc domain.RewriteContext) (out string, prefetchURL string) {
	switch lineKindOf(line) {
	case domain.LineBlank, domain.LineComment:
		return line, ""

	case domain.LineDirective:
		return rewriteDirective(line, kind, rc)

	case domain.LineURI:
		resolved, err := resolve(line, rc.ManifestURL)
		if err != nil {
			// Unresolvable URIs pass through verbatim (§4.4).
			return line, ""
		}
		if kind == domain.PlaylistMaster {
			return manifestProxyURL(rc, resolved), ""
		}
		return segmentProxyURL(rc, resolved), resolved

	default:
		return line, ""
	}
}

func rewriteDirective(line string, kind domain.PlaylistKind, rc domain.RewriteContext) (string, string) {
	match := firstAbsoluteURL.FindString(line)
	if match == "" {
		return line, ""
	}

	switch {
	case strings.HasPrefix(line, "#EXT-X-KEY"):
		rewritten := strings.Replace(line, match, segmentProxyURL(rc, match), 1)
		if kind == domain.PlaylistMedia {
			return rewritten, match
		}
		return rewritten, ""

	case strings.HasPrefix(line, "#EXT-X-MEDIA") && kind == domain.PlaylistMaster:
		// Media alternates (audio/subtitle renditions) are themselves
		// playlists, referenced only from master playlists (§4.4).
		rewritten := strings.Replace(line, match, manifestProxyURL(rc, match), 1)
		return rewritten, ""

	default:
		return line, ""
	}
}

func manifestProxyURL(rc domain.RewriteContext, absolute string) string {
	return fmt.Sprintf("%s%s?url=%s&headers=%s",
		rc.ProxyBaseURL, constants.PathManifestProxy, encodeURIComponent(absolute), encodeURIComponent(rc.ClientHeaderJSON))
}

func segmentProxyURL(rc domain.RewriteContext, absolute string) string {
	return fmt.Sprintf("%s%s?url=%s&headers=%s",
		rc.ProxyBaseURL, constants.PathSegmentProxy, encodeURIComponent(absolute), encodeURIComponent(rc.ClientHeaderJSON))
}
