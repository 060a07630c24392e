package domain

// LineKind classifies one line of an M3U8 playlist for the rewriter's
// dispatch loop (§4.4).
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line, passed through verbatim.
	LineBlank LineKind = iota
	// LineDirective is an "#EXT-X-KEY" or "#EXT-X-MEDIA" tag line, which
	// may embed a URI attribute.
	LineDirective
	// LineComment is any other "#" line, including other tags such as
	// EXT-X-STREAM-INF; it is passed through verbatim.
	LineComment
	// LineURI is a bare URI line: a variant playlist or a segment reference.
	LineURI
)

// String names the kind for logging.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineDirective:
		return "directive"
	case LineComment:
		return "comment"
	case LineURI:
		return "uri"
	default:
		return "unknown"
	}
}

// PlaylistLine is one classified line of a parsed manifest, in original
// order. Rewritten holds the output line once the rewriter has resolved
// and re-encoded any embedded URI; it equals Raw when nothing changed.
type PlaylistLine struct {
	Kind       LineKind
	Raw        string
	Rewritten  string
	IsMaster   bool // true once classification has identified the manifest as a master playlist
}

// PlaylistKind distinguishes the two manifest shapes the rewriter handles.
type PlaylistKind int

const (
	PlaylistMedia PlaylistKind = iota
	PlaylistMaster
)
