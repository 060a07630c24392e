// Package pool implements the per-origin connection pool manager (§4.2):
// one tuned, keep-alive http.Transport per origin, constructed at most
// once even under a thundering herd of concurrent first callers.
package pool

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

// Config mirrors the production defaults from §4.2.
type Config struct {
	MaxConnections            int
	MaxPipelinedPerConnection int
	KeepAliveIdle             time.Duration
	DialTimeout               time.Duration
}

// Pool wraps a single origin's pooled http.Client.
type Pool struct {
	origin domain.Origin
	client *http.Client
}

// Origin returns the origin this pool serves.
func (p *Pool) Origin() domain.Origin {
	return p.origin
}

// Do issues req on the pooled transport.
func (p *Pool) Do(req *http.Request) (*http.Response, error) {
	return p.client.Do(req)
}

// Close idles out the pool's transport, releasing its connections.
func (p *Pool) Close() {
	if t, ok := p.client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func newPool(origin domain.Origin, cfg Config) *Pool {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAliveIdle,
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if tcp, ok := conn.(*net.TCPConn); ok {
				_ = tcp.SetNoDelay(true)
				_ = tcp.SetKeepAlive(true)
				_ = tcp.SetKeepAlivePeriod(cfg.KeepAliveIdle)
			}
			return conn, nil
		},
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConnsPerHost: cfg.MaxConnections,
		MaxIdleConns:        cfg.MaxConnections * 4,
		IdleConnTimeout:     cfg.KeepAliveIdle,
	}

	return &Pool{
		origin: origin,
		client: &http.Client{Transport: transport},
	}
}

// Manager is the process-wide pool registry. Construction of a given
// origin's pool happens at most once even under concurrent Acquire calls;
// a lost race discards the loser's pool without exposing it, via
// singleflight (§4.2).
type Manager struct {
	cfg Config

	mu    sync.RWMutex
	pools map[domain.Origin]*Pool

	sf singleflight.Group
}

// NewManager constructs an empty registry.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:   cfg,
		pools: make(map[domain.Origin]*Pool),
	}
}

// Acquire returns the Pool for origin, constructing it on first use.
func (m *Manager) Acquire(ctx context.Context, origin domain.Origin) (*Pool, error) {
	m.mu.RLock()
	if p, ok := m.pools[origin]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	key := origin.String()
	v, err, _ := m.sf.Do(key, func() (interface{}, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if p, ok := m.pools[origin]; ok {
			return p, nil
		}
		p := newPool(origin, m.cfg)
		m.pools[origin] = p
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("acquire pool for %s: %w", origin, err)
	}
	return v.(*Pool), nil
}

// CloseAll drains and closes every pool, clearing the registry. Used only
// at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for origin, p := range m.pools {
		p.Close()
		delete(m.pools, origin)
	}
}
