package rewriter

import (
	"fmt"
	"net/url"
	"regexp"
)

// standaloneURI matches a URI lacking a base to resolve against: an
// optional scheme, an authority (host, optionally with a 0-5 digit
// port), and the remainder of the path/query (§4.4). The trailing group
// only matches at "/", "?" or end of input, so the port is always
// followed by one of those.
var standaloneURI = regexp.MustCompile(`^(?:(https?:)?//)?(([^/?]+?)(?::(\d{0,5}))?)([/?].*|$)`)

// resolve implements the §4.4 URI resolution algorithm: RFC 3986
// resolution against base when one is supplied, otherwise the bespoke
// standalone heuristic below.
func resolve(candidate, base string) (string, error) {
	if base != "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("resolve: invalid base %q: %w", base, err)
		}
		ref, err := url.Parse(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve: invalid candidate %q: %w", candidate, err)
		}
		return baseURL.ResolveReference(ref).String(), nil
	}
	return resolveStandalone(candidate)
}

func resolveStandalone(candidate string) (string, error) {
	m := standaloneURI.FindStringSubmatch(candidate)
	if m == nil {
		return "", fmt.Errorf("resolve: %q does not match the standalone URI shape", candidate)
	}

	scheme := m[1]
	port := m[4]

	built := candidate
	if scheme == "" {
		// An "http:" or "https:" prefix not followed by "//" is malformed,
		// e.g. "http:/notenoughslashes".
		if schemeWithoutSlashes(candidate) {
			return "", fmt.Errorf("resolve: %q is malformed (scheme without //)", candidate)
		}

		prefixed := candidate
		if !hasDoubleSlashPrefix(candidate) {
			prefixed = "//" + candidate
		}
		if port == "443" {
			built = "https:" + prefixed
		} else {
			built = "http:" + prefixed
		}
	}

	u, err := url.Parse(built)
	if err != nil {
		return "", fmt.Errorf("resolve: %q could not be parsed: %w", candidate, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("resolve: %q has no hostname", candidate)
	}
	return u.String(), nil
}

// schemeWithoutSlashes detects a literal "http:" or "https:" prefix that
// is not immediately followed by "//", e.g. "http:/notenoughslashes".
func schemeWithoutSlashes(candidate string) bool {
	for _, scheme := range []string{"https:", "http:"} {
		switch {
		case candidate == scheme:
			return true
		case len(candidate) > len(scheme) && candidate[:len(scheme)] == scheme:
			return len(candidate) < len(scheme)+2 || candidate[len(scheme):len(scheme)+2] != "//"
		}
	}
	return false
}

func hasDoubleSlashPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '/' && s[1] == '/'
}
