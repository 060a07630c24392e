package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Origin identifies the scheme://host[:port] triple that keys the pool
// registry. It is derived once from a URL and is immutable thereafter.
type Origin struct {
	Scheme string
	Host   string // lower-cased, explicit default port stripped
	Port   string // empty when the default port for Scheme is used
}

// String renders the canonical origin key, e.g. "https://cdn.example.com"
// or "http://cdn.example.com:8080".
func (o Origin) String() string {
	if o.Port == "" {
		return o.Scheme + "://" + o.Host
	}
	return fmt.Sprintf("%s://%s:%s", o.Scheme, o.Host, o.Port)
}

// DeriveOrigin parses rawURL and returns its Origin. The host is
// lower-cased and an explicit port matching the scheme's default (80 for
// http, 443 for https) is dropped, so that "https://Example.com:443" and
// "https://example.com" key the same pool.
func DeriveOrigin(rawURL string) (Origin, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Origin{}, fmt.Errorf("derive origin: %w", err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return Origin{}, fmt.Errorf("derive origin: %q is not absolute", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	if isDefaultPort(scheme, port) {
		port = ""
	}

	return Origin{Scheme: scheme, Host: host, Port: port}, nil
}

func isDefaultPort(scheme, port string) bool {
	switch {
	case port == "":
		return true
	case scheme == "https" && port == "443":
		return true
	case scheme == "http" && port == "80":
		return true
	}
	return false
}

// NormalizeCacheKey produces the CacheKey for an absolute segment or key
// URL: scheme, lower-cased host, explicit default port removed, path and
// query preserved exactly (§3).
func NormalizeCacheKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize cache key: %w", err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("normalize cache key: %q is not absolute", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	authority := host
	if !isDefaultPort(scheme, port) {
		authority = host + ":" + port
	}

	key := scheme + "://" + authority + u.EscapedPath()
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key, nil
}
