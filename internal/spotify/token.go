package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"rightscan/internal/shared"
)

const defaultTokenURL = "https://accounts.spotify.com/api/token"

// expiryMargin is subtracted from the server-declared token lifetime to guard
// against clock skew and in-flight request latency.
const expiryMargin = 60 * time.Second

// TokenProvider obtains and caches a client-credentials bearer token.
//
// The refresh exchange runs under a mutex: concurrent callers hitting an
// expired cache share a single in-flight exchange and fan out its result.
type TokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenProvider creates a TokenProvider for the given Spotify application credentials.
func NewTokenProvider(clientID, clientSecret string, client *http.Client) (*TokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpClient:   client,
	}, nil
}

// SetTokenURL overrides the credential-exchange endpoint. Intended for tests.
func (p *TokenProvider) SetTokenURL(u string) {
	p.tokenURL = u
}

// Token returns a valid bearer credential, performing the credential exchange
// when the cache is absent or past its expiry.
func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != nil && time.Now().Before(p.token.Expiry) {
		return p.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token response: %v", shared.ErrAuthFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAuthFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", shared.ErrAuthFailed, err)
	}

	p.token = &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		Expiry:      time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - expiryMargin),
	}

	return p.token, nil
}
