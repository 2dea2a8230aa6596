package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"go.uber.org/zap"
)

// keySet is one immutable snapshot of the provider's published signing keys.
// Snapshots are replaced wholesale on refresh and never mutated in place, so
// readers always observe a complete set from a single fetch.
type keySet struct {
	keys      map[string]jose.JSONWebKey
	fetchedAt time.Time
}

// KeySetCache holds the identity provider's JWKS and refreshes it lazily
// when a presented key id is unknown. A failed refresh never clears a
// previously working set.
type KeySetCache struct {
	httpClient *http.Client
	jwksURL    string
	logger     *zap.Logger

	current atomic.Pointer[keySet]
	// refreshMu serializes fetches. Readers never take it; they go through
	// the atomic snapshot pointer.
	refreshMu sync.Mutex
}

// NewKeySetCache creates an empty cache backed by the given JWKS endpoint.
func NewKeySetCache(httpClient *http.Client, jwksURL string, logger *zap.Logger) *KeySetCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &KeySetCache{
		httpClient: httpClient,
		jwksURL:    jwksURL,
		logger:     logger,
	}
}

// Get returns the signing key for kid. On a miss it performs exactly one
// refresh of the whole set and retries the lookup once.
func (c *KeySetCache) Get(ctx context.Context, kid string) (jose.JSONWebKey, error) {
	if key, ok := c.lookup(kid); ok {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		return jose.JSONWebKey{}, err
	}

	if key, ok := c.lookup(kid); ok {
		return key, nil
	}
	return jose.JSONWebKey{}, newAuthError(CodeKeyNotFound, "Signing key not found in provider key set.")
}

func (c *KeySetCache) lookup(kid string) (jose.JSONWebKey, bool) {
	snapshot := c.current.Load()
	if snapshot == nil {
		return jose.JSONWebKey{}, false
	}
	key, ok := snapshot.keys[kid]
	return key, ok
}

// refresh fetches the JWKS and swaps the cached snapshot atomically. The
// mutex is held across the fetch only to collapse concurrent refreshes; it
// is never taken on the read path.
func (c *KeySetCache) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	before := c.current.Load()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return newAuthError(CodeKeySetUnavailable, "Key set request could not be built.")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("jwks fetch failed", zap.String("url", c.jwksURL), zap.Error(err))
		return newAuthError(CodeKeySetUnavailable, "Key set endpoint unreachable.")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("jwks fetch returned unexpected status",
			zap.String("url", c.jwksURL),
			zap.Int("status", resp.StatusCode),
		)
		return newAuthError(CodeKeySetUnavailable, fmt.Sprintf("Key set endpoint returned HTTP %d.", resp.StatusCode))
	}

	var jwks jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		c.logger.Warn("jwks response is not valid JSON", zap.String("url", c.jwksURL), zap.Error(err))
		return newAuthError(CodeKeySetUnavailable, "Key set response is not valid JSON.")
	}

	next := &keySet{
		keys:      make(map[string]jose.JSONWebKey, len(jwks.Keys)),
		fetchedAt: time.Now(),
	}
	for _, key := range jwks.Keys {
		if key.KeyID == "" {
			continue
		}
		next.keys[key.KeyID] = key
	}

	c.current.Store(next)

	var previousAge time.Duration
	if before != nil {
		previousAge = next.fetchedAt.Sub(before.fetchedAt)
	}
	c.logger.Debug("jwks refreshed",
		zap.Int("keys", len(next.keys)),
		zap.Duration("previous_set_age", previousAge),
	)
	return nil
}
