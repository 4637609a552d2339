package trigger

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/model"
)

// Tokens are considered expired this long before their real expiry so a
// token acquired just before the trigger request cannot lapse mid-flight.
const tokenClockSkew = 15 * time.Second

type cachedToken struct {
	token      string
	validUntil time.Time
}

// TokenCache is the process-wide bearer token cache, keyed by token endpoint,
// client id and scope. Lookups for the same key are coalesced so concurrent
// triggers sharing credentials produce at most one token request.
type TokenCache struct {
	mu     sync.Mutex
	group  singleflight.Group
	tokens map[string]cachedToken
	client *http.Client
	skew   time.Duration
	now    func() time.Time
}

func NewTokenCache(client *http.Client) *TokenCache {
	return &TokenCache{
		tokens: make(map[string]cachedToken),
		client: client,
		skew:   tokenClockSkew,
		now:    time.Now,
	}
}

func cacheKey(auth model.TokenAuth) string {
	return auth.TokenEndpoint + "|" + auth.ClientID + "|" + auth.Scope
}

// Token returns a bearer token for the given effective auth, reusing a cached
// token while it is still valid and requesting a fresh client-credentials
// token otherwise.
func (c *TokenCache) Token(ctx context.Context, auth model.TokenAuth) (string, error) {
	key := cacheKey(auth)

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		cached, ok := c.tokens[key]
		c.mu.Unlock()

		if ok && c.now().Before(cached.validUntil) {
			metrics.TokenCacheHitsTotal.Inc()
			return cached.token, nil
		}

		metrics.TokenCacheMissesTotal.Inc()
		tok, err := c.requestToken(ctx, auth)
		if err != nil {
			return nil, err
		}

		// Tokens without a decodable expiry are usable but not cached.
		if !tok.Expiry.IsZero() {
			c.mu.Lock()
			c.tokens[key] = cachedToken{
				token:      tok.AccessToken,
				validUntil: tok.Expiry.Add(-c.skew),
			}
			c.mu.Unlock()
		}

		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *TokenCache) requestToken(ctx context.Context, auth model.TokenAuth) (*oauth2.Token, error) {
	cfg := &clientcredentials.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		TokenURL:     auth.TokenEndpoint,
	}
	if auth.Scope != "" {
		cfg.Scopes = []string{auth.Scope}
	}

	if c.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("request token from %s: %w", auth.TokenEndpoint, err)
	}
	return tok, nil
}
