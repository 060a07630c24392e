package pool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

func testConfig() Config {
	return Config{
		MaxConnections:            10,
		MaxPipelinedPerConnection: 5,
		KeepAliveIdle:             30 * time.Second,
		DialTimeout:               5 * time.Second,
	}
}

func TestAcquire_ReturnsSamePoolForSameOrigin(t *testing.T) {
	m := NewManager(testConfig())
	defer m.CloseAll()

	origin := domain.Origin{Scheme: "https", Host: "cdn.example.com"}

	p1, err := m.Acquire(context.Background(), origin)
	require.NoError(t, err)
	p2, err := m.Acquire(context.Background(), origin)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
}

func TestAcquire_ConcurrentCallersShareOnePool(t *testing.T) {
	m := NewManager(testConfig())
	defer m.CloseAll()

	origin := domain.Origin{Scheme: "https", Host: "cdn.example.com"}

	results := make(chan *Pool, 20)
	for i := 0; i < 20; i++ {
		go func() {
			p, err := m.Acquire(context.Background(), origin)
			require.NoError(t, err)
			results <- p
		}()
	}

	first := <-results
	for i := 1; i < 20; i++ {
		assert.Same(t, first, <-results)
	}
}

func TestAcquire_DistinctOriginsGetDistinctPools(t *testing.T) {
	m := NewManager(testConfig())
	defer m.CloseAll()

	a := domain.Origin{Scheme: "https", Host: "a.example.com"}
	b := domain.Origin{Scheme: "https", Host: "b.example.com"}

	pa, err := m.Acquire(context.Background(), a)
	require.NoError(t, err)
	pb, err := m.Acquire(context.Background(), b)
	require.NoError(t, err)

	assert.NotSame(t, pa, pb)
}

func TestFetcher_Request_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m := NewManager(testConfig())
	defer m.CloseAll()
	f := NewFetcher(m)

	resp, err := f.Request(context.Background(), http.MethodGet, srv.URL+"/segment.ts", http.Header{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCloseAll_ClearsRegistry(t *testing.T) {
	m := NewManager(testConfig())
	origin := domain.Origin{Scheme: "https", Host: "cdn.example.com"}

	_, err := m.Acquire(context.Background(), origin)
	require.NoError(t, err)

	m.CloseAll()

	assert.Empty(t, m.pools)
}
