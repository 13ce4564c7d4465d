package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// loadCachedToken reads a previously persisted token. Returns nil without
// error when no cache exists yet.
func loadCachedToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// saveToken persists a token with owner-only permissions.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// cachingTokenSource wraps a token source and persists every refreshed
// token, so restarts reuse the authorization without a new login.
type cachingTokenSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func newCachingTokenSource(src oauth2.TokenSource, path string) *cachingTokenSource {
	return &cachingTokenSource{src: src, path: path}
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := c.src.Token()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path != "" && (c.last == nil || c.last.AccessToken != token.AccessToken) {
		if err := saveToken(c.path, token); err == nil {
			c.last = token
		}
	}
	return token, nil
}
