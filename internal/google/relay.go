package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Relay flow statuses returned by the token endpoint.
const (
	relayStatusPending  = "pending"
	relayStatusComplete = "complete"
	relayStatusError    = "error"
)

const defaultRelayPollInterval = 2 * time.Second

// RelayTokenProvider obtains tokens through a hosted web-OAuth relay. The
// relay runs the browser consent flow on its own domain: BeginAuth asks it
// to start a flow and returns the consent URL for the user, then PollToken
// polls until the relay has exchanged the authorization code.
type RelayTokenProvider struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration

	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
	polls  map[string]string
}

// NewRelayTokenProvider creates a provider pointed at the relay service
// configured by GOOGLE_ADS_AUTH_RELAY_URL.
func NewRelayTokenProvider() (*RelayTokenProvider, error) {
	baseURL := os.Getenv("GOOGLE_ADS_AUTH_RELAY_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("relay URL is empty; set GOOGLE_ADS_AUTH_RELAY_URL")
	}
	return NewRelayTokenProviderWithURL(baseURL), nil
}

// NewRelayTokenProviderWithURL creates a provider for an explicit relay URL.
func NewRelayTokenProviderWithURL(baseURL string) *RelayTokenProvider {
	return &RelayTokenProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: defaultRelayPollInterval,
		tokens:       make(map[string]*oauth2.Token),
		polls:        make(map[string]string),
	}
}

type relayStartResponse struct {
	AuthURL string `json:"auth_url"`
	PollID  string `json:"poll_id"`
}

type relayTokenResponse struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// BeginAuth asks the relay to start an OAuth flow for the account and
// returns the consent URL to hand to the user.
func (p *RelayTokenProvider) BeginAuth(ctx context.Context, account string) (authURL string, pollID string, err error) {
	body := strings.NewReader(url.Values{"account": {account}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/start", body)
	if err != nil {
		return "", "", fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to reach auth relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("auth relay returned status %d", resp.StatusCode)
	}

	var start relayStartResponse
	if err := json.NewDecoder(resp.Body).Decode(&start); err != nil {
		return "", "", fmt.Errorf("failed to decode relay response: %w", err)
	}
	if start.AuthURL == "" || start.PollID == "" {
		return "", "", fmt.Errorf("auth relay returned an incomplete start response")
	}

	p.mu.Lock()
	p.polls[account] = start.PollID
	p.mu.Unlock()

	return start.AuthURL, start.PollID, nil
}

// PollToken polls the relay until the flow identified by pollID completes,
// the relay reports an error, or ctx is cancelled. On success the token is
// cached for the account.
func (p *RelayTokenProvider) PollToken(ctx context.Context, account, pollID string) (*oauth2.Token, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		token, done, err := p.fetchToken(ctx, pollID)
		if err != nil {
			return nil, err
		}
		if done {
			p.mu.Lock()
			p.tokens[account] = token
			delete(p.polls, account)
			p.mu.Unlock()
			return token, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (p *RelayTokenProvider) fetchToken(ctx context.Context, pollID string) (*oauth2.Token, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/auth/token?id="+url.QueryEscape(pollID), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build relay request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reach auth relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("auth relay returned status %d", resp.StatusCode)
	}

	var tr relayTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, false, fmt.Errorf("failed to decode relay response: %w", err)
	}

	switch tr.Status {
	case relayStatusComplete:
		token := &oauth2.Token{
			AccessToken:  tr.AccessToken,
			RefreshToken: tr.RefreshToken,
			TokenType:    "Bearer",
		}
		if tr.ExpiresIn > 0 {
			token.Expiry = timeNow().Add(time.Duration(tr.ExpiresIn) * time.Second)
		}
		return token, true, nil
	case relayStatusError:
		return nil, false, fmt.Errorf("auth relay reported an error: %s", tr.Error)
	case relayStatusPending, "":
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("auth relay returned unknown status %q", tr.Status)
	}
}

// GetTokenForAccount returns the cached token for the account, asking the
// relay for a refresh when fewer than five minutes remain.
func (p *RelayTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.RLock()
	token := p.tokens[account]
	p.mu.RUnlock()

	if token == nil {
		return nil, fmt.Errorf("no token for account %q; complete the relay authorization first", account)
	}
	if tokenValid(token, timeNow()) {
		return token, nil
	}

	return p.RefreshToken(ctx, account)
}

// HasTokenForAccount checks if a relay token has been obtained for the
// account.
func (p *RelayTokenProvider) HasTokenForAccount(account string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tokens[account] != nil
}

// RefreshToken asks the relay to mint a fresh access token from the
// refresh token it holds for the account.
func (p *RelayTokenProvider) RefreshToken(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.RLock()
	current := p.tokens[account]
	p.mu.RUnlock()

	values := url.Values{"account": {account}}
	if current != nil && current.RefreshToken != "" {
		values.Set("refresh_token", current.RefreshToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/auth/refresh", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth relay returned status %d", resp.StatusCode)
	}

	var tr relayTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode relay response: %w", err)
	}
	if tr.Status != relayStatusComplete {
		return nil, fmt.Errorf("auth relay refresh failed: %s", tr.Error)
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    "Bearer",
	}
	if token.RefreshToken == "" && current != nil {
		token.RefreshToken = current.RefreshToken
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = timeNow().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	p.mu.Lock()
	p.tokens[account] = token
	p.mu.Unlock()

	return token, nil
}
