package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestClientDefaults(t *testing.T) {
	c := New(testLogger())

	assert.Equal(t, DefaultUserAgent, c.config.UserAgent)
	assert.Equal(t, 5, c.config.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, c.config.RetryBackoff)
	assert.Equal(t, 100, c.config.PoolSize)
	assert.Nil(t, c.limiter)
}

func TestGetRetriesTransientStatuses(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewWithConfig(ClientConfig{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, testLogger())

	resp, err := c.Get(context.Background(), server.URL, 5*time.Second)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewWithConfig(ClientConfig{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, testLogger())

	resp, err := c.Get(context.Background(), server.URL, 5*time.Second)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewWithConfig(ClientConfig{
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, testLogger())

	resp, err := c.Get(context.Background(), server.URL, 5*time.Second)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestGetAppliesHeaders(t *testing.T) {
	headerCh := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerCh <- r.Header.Clone()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewWithConfig(ClientConfig{
		Headers: map[string]string{
			"X-Api-Key": "secret",
			"Referer":   "https://internal.example",
		},
	}, testLogger())

	resp, err := c.Get(context.Background(), server.URL, 5*time.Second)
	require.NoError(t, err)
	resp.Body.Close()

	got := <-headerCh
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "secret", got.Get("X-Api-Key"))
	// Caller-supplied headers win over the default set
	assert.Equal(t, "https://internal.example", got.Get("Referer"))
}

func TestGetHonorsCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewWithConfig(ClientConfig{
		MaxRetries:   5,
		RetryBackoff: time.Hour,
	}, testLogger())

	_, err := c.Get(ctx, server.URL, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetHonorsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	// 50 req/s with burst 1: the second and third requests each wait 20ms.
	c := NewWithConfig(ClientConfig{RateLimit: 50}, testLogger())
	require.NotNil(t, c.limiter)

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background(), server.URL, 5*time.Second)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
