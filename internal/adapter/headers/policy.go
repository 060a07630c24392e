// Package headers implements the escape-hatch translation table and the
// outbound blacklist that together form the header policy (§4.1).
package headers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kestrelstream/hlsproxy/internal/core/constants"
)

// escapeHatch maps an inbound client header name to the canonical outbound
// name the proxy will send upstream. The table is exhaustive and fixed.
var escapeHatch = map[string]string{
	"x-cookie":     constants.HeaderCookie,
	"x-referer":    constants.HeaderReferer,
	"x-origin":     constants.HeaderOrigin,
	"x-user-agent": constants.HeaderUserAgent,
	"x-x-real-ip":  constants.HeaderXRealIP,
}

// blacklist never leaves this proxy on an outbound request, case-insensitive.
var blacklist = map[string]struct{}{
	"cf-connecting-ip":   {},
	"cf-worker":          {},
	"cf-ray":             {},
	"cf-visitor":         {},
	"cf-ew-via":          {},
	"cdn-loop":           {},
	"x-amzn-trace-id":    {},
	"cf-ipcountry":       {},
	"x-forwarded-for":    {},
	"x-forwarded-host":   {},
	"x-forwarded-proto":  {},
	"forwarded":          {},
	"x-real-ip":          {},
	"content-length":     {},
}

func init() {
	// Escape-hatch headers must never be forwarded in their original,
	// unescaped form: X-Cookie itself is blacklisted even though Cookie
	// is the translated destination.
	for inbound := range escapeHatch {
		blacklist[inbound] = struct{}{}
	}
}

// Policy is the stateless header policy described in §4.1. It carries no
// fields; BuildOutbound and Scrub are pure functions of their arguments.
type Policy struct{}

// New constructs a Policy. There is nothing to configure.
func New() Policy {
	return Policy{}
}

// BuildOutbound produces the canonical outbound header set from the
// client's request headers: a fixed default User-Agent, then any
// escape-hatch translations present in clientHeaders.
func (Policy) BuildOutbound(clientHeaders http.Header) http.Header {
	out := make(http.Header)
	out.Set(constants.HeaderUserAgent, constants.DefaultUserAgent)

	for inbound, outbound := range escapeHatch {
		if v := firstHeader(clientHeaders, inbound); v != "" {
			out.Set(outbound, v)
		}
	}
	return out
}

// Scrub returns a copy of h with every blacklisted header removed and the
// zstd token stripped from Accept-Encoding, leaving other tokens intact
// and in order.
func (Policy) Scrub(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if _, blocked := blacklist[lower]; blocked {
			continue
		}
		if lower == "accept-encoding" {
			out[name] = stripZstd(values)
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}

func stripZstd(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		tokens := strings.Split(v, ",")
		kept := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if strings.EqualFold(strings.TrimSpace(t), "zstd") {
				continue
			}
			kept = append(kept, strings.TrimSpace(t))
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, strings.Join(kept, ", "))
	}
	return out
}

// DecodeClientHeaderJSON parses the "headers" query parameter's JSON
// object (X-Cookie, X-Referer, ...) into an http.Header the escape-hatch
// table can translate, per §4.4/§6.
func DecodeClientHeaderJSON(raw string) (http.Header, error) {
	h := make(http.Header)
	if raw == "" {
		return h, nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode client header JSON: %w", err)
	}
	for name, value := range fields {
		h.Set(name, value)
	}
	return h, nil
}

func firstHeader(h http.Header, lowerName string) string {
	for name, values := range h {
		if strings.EqualFold(name, lowerName) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
