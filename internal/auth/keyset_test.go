package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testKeyPair(t *testing.T, kid string) (*rsa.PrivateKey, jose.JSONWebKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv, jose.JSONWebKey{Key: &priv.PublicKey, KeyID: kid, Use: "sig", Algorithm: "RS256"}
}

func jwksBody(t *testing.T, keys ...jose.JSONWebKey) []byte {
	t.Helper()
	body, err := json.Marshal(jose.JSONWebKeySet{Keys: keys})
	require.NoError(t, err)
	return body
}

func TestKeySetCacheFetchesOnFirstMiss(t *testing.T) {
	_, pub := testKeyPair(t, "kid-1")
	var fetches atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksBody(t, pub))
	}))
	defer srv.Close()

	cache := NewKeySetCache(srv.Client(), srv.URL, zap.NewNop())

	key, err := cache.Get(context.Background(), "kid-1")
	require.NoError(t, err)
	require.Equal(t, "kid-1", key.KeyID)
	require.EqualValues(t, 1, fetches.Load())

	// Second lookup is served from the cached set.
	_, err = cache.Get(context.Background(), "kid-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, fetches.Load())
}

func TestKeySetCacheUnknownKidRefreshesOnce(t *testing.T) {
	_, pub := testKeyPair(t, "kid-1")
	var fetches atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write(jwksBody(t, pub))
	}))
	defer srv.Close()

	cache := NewKeySetCache(srv.Client(), srv.URL, zap.NewNop())

	_, err := cache.Get(context.Background(), "kid-1")
	require.NoError(t, err)

	_, err = cache.Get(context.Background(), "kid-rotated-away")
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, CodeKeyNotFound, authErr.Code)
	require.EqualValues(t, 2, fetches.Load())
}

func TestKeySetCacheFailedRefreshKeepsPriorSet(t *testing.T) {
	_, pub := testKeyPair(t, "kid-1")
	var failing atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(jwksBody(t, pub))
	}))
	defer srv.Close()

	cache := NewKeySetCache(srv.Client(), srv.URL, zap.NewNop())

	_, err := cache.Get(context.Background(), "kid-1")
	require.NoError(t, err)

	failing.Store(true)

	_, err = cache.Get(context.Background(), "kid-unknown")
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, CodeKeySetUnavailable, authErr.Code)

	// The previously cached key must still be served.
	key, err := cache.Get(context.Background(), "kid-1")
	require.NoError(t, err)
	require.Equal(t, "kid-1", key.KeyID)
}

func TestKeySetCacheMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	cache := NewKeySetCache(srv.Client(), srv.URL, zap.NewNop())

	_, err := cache.Get(context.Background(), "kid-1")
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, CodeKeySetUnavailable, authErr.Code)
}

func TestKeySetCacheConcurrentReadsDuringRefresh(t *testing.T) {
	_, pub := testKeyPair(t, "kid-1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jwksBody(t, pub))
	}))
	defer srv.Close()

	cache := NewKeySetCache(srv.Client(), srv.URL, zap.NewNop())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				key, err := cache.Get(context.Background(), "kid-1")
				require.NoError(t, err)
				require.Equal(t, "kid-1", key.KeyID)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
