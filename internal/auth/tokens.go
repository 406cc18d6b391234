package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/daniellalimbag/dory-app-sub000/internal/config"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
)

// expiryBuffer is how early a token is treated as expired
const expiryBuffer = 60 * time.Second

// TokenStore persists the current token between runs
type TokenStore interface {
	GetAuth() (*store.Auth, error)
	SaveAuth(auth *store.Auth) error
}

// TokenSource wraps an oauth2.TokenSource with persistence.
// A stored token is reused until it nears expiry; fresh tokens are saved.
type TokenSource struct {
	base  oauth2.TokenSource
	store TokenStore
	token *oauth2.Token
	mu    sync.Mutex
}

// NewTokenSource loads any saved token from st and fetches new ones from base
func NewTokenSource(base oauth2.TokenSource, st TokenStore) (*TokenSource, error) {
	ts := &TokenSource{base: base, store: st}
	if st == nil {
		return ts, nil
	}
	saved, err := st.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		return ts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading saved token: %w", err)
	}
	ts.token = FromAuth(saved)
	return ts, nil
}

// Token returns a valid token, fetching a new one if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != nil && !expiresSoon(ts.token) {
		return ts.token, nil
	}

	newToken, err := ts.base.Token()
	if err != nil {
		return nil, err
	}

	if ts.store != nil {
		if err := ts.store.SaveAuth(ToAuth(newToken)); err != nil {
			return nil, fmt.Errorf("saving token: %w", err)
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired reports whether there is no token or it is about to expire
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token == nil || expiresSoon(ts.token)
}

// CurrentToken returns the current token without fetching
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}

// Tokens with no expiry never expire
func expiresSoon(t *oauth2.Token) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Until(t.Expiry) <= expiryBuffer
}

// ToAuth converts a token into its stored form
func ToAuth(t *oauth2.Token) *store.Auth {
	return &store.Auth{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresAt:    t.Expiry,
	}
}

// FromAuth converts a stored token back into an oauth2 token
func FromAuth(a *store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		TokenType:    a.TokenType,
		Expiry:       a.ExpiresAt,
	}
}

// NewSource picks how to authenticate against the metrics API.
// Client credentials win over a static API key; with neither it returns nil.
func NewSource(ctx context.Context, cfg config.MetricsAPIConfig, st TokenStore) (oauth2.TokenSource, error) {
	switch {
	case cfg.ClientID != "":
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ts, err := NewTokenSource(cc.TokenSource(ctx), st)
		if err != nil {
			return nil, err
		}
		return ts, nil
	case cfg.APIKey != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}), nil
	default:
		return nil, nil
	}
}
