package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// tokenCache holds the current gateway access token and refreshes it lazily.
// Refreshes run through a singleflight barrier: concurrent callers during
// expiry trigger exactly one token request and all of them receive its result,
// including a refresh failure.
type tokenCache struct {
	baseURL      string
	clientID     string
	clientSecret string
	hc           *http.Client

	group singleflight.Group
	now   func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenCache(baseURL, clientID, clientSecret string, hc *http.Client) *tokenCache {
	return &tokenCache{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		hc:           hc,
		now:          time.Now,
	}
}

func (c *tokenCache) Token(ctx context.Context) (string, error) {
	if t, ok := c.cached(); ok {
		return t, nil
	}
	v, err, _ := c.group.Do("token", func() (any, error) {
		// A flight that completed between our check and Do may already have
		// refreshed the token.
		if t, ok := c.cached(); ok {
			return t, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *tokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, true
	}
	return "", false
}

func (c *tokenCache) refresh(ctx context.Context) (string, error) {
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", &CredentialError{Err: err}
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &CredentialError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", &CredentialError{Err: fmt.Errorf("token endpoint returned %s", resp.Status)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &CredentialError{Err: err}
	}
	if out.AccessToken == "" {
		return "", &CredentialError{Err: fmt.Errorf("token endpoint returned empty access_token")}
	}

	c.mu.Lock()
	c.token = out.AccessToken
	c.expiry = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	c.mu.Unlock()

	return out.AccessToken, nil
}
