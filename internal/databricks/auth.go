package databricks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNoCredentials is returned when neither a token nor an OAuth client
// is configured.
var ErrNoCredentials = errors.New("no valid databricks credentials found")

const oauthTokenPath = "/oidc/v1/token"

// expirySlack renews OAuth tokens slightly before their reported expiry.
const expirySlack = time.Minute

// tokenSource resolves the Authorization header for requests. Personal
// access tokens are used verbatim; OAuth client-credentials tokens are
// fetched once and cached until near expiry.
type tokenSource struct {
	host string
	cfg  Config

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(host string, cfg Config) *tokenSource {
	return &tokenSource{host: host, cfg: cfg}
}

func (t *tokenSource) header(ctx context.Context, client *http.Client) (string, error) {
	useOAuth := strings.EqualFold(t.cfg.AuthType, "oauth") &&
		t.cfg.ClientID != "" && t.cfg.ClientSecret != ""
	if useOAuth {
		tok, err := t.oauthToken(ctx, client)
		if err != nil {
			return "", err
		}
		return "Bearer " + tok, nil
	}
	if t.cfg.Token != "" {
		return "Bearer " + t.cfg.Token, nil
	}
	return "", ErrNoCredentials
}

func (t *tokenSource) oauthToken(ctx context.Context, client *http.Client) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expires) {
		return t.token, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"all-apis"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.host+oauthTokenPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.cfg.ClientID, t.cfg.ClientSecret)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oauth token request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oauth token request failed: status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("oauth token response carried no access token")
	}

	t.token = payload.AccessToken
	t.expires = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - expirySlack)
	return t.token, nil
}
