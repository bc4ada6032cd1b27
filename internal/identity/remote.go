package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const signInTimeout = 10 * time.Second

// RemoteProvider signs users in via the identity collaborator's HTTPS
// password sign-in endpoint (identity-toolkit style: API key in the
// query string, form-encoded credentials).
type RemoteProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

// NewRemoteProvider creates a remote sign-in provider.
func NewRemoteProvider(endpoint, apiKey string, log *zap.Logger) *RemoteProvider {
	return &RemoteProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: signInTimeout},
		log:      log,
	}
}

// signInResponse is the subset of the endpoint's success payload we use.
type signInResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// SignIn posts the credentials to the sign-in endpoint. A 200 response
// confirms the identity; a 4xx response means invalid credentials; any
// transport failure, 5xx, or unreadable payload means the service is
// unavailable.
func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("returnSecureToken", "true")

	endpoint := p.endpoint + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("sign-in request failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var body signInResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			p.log.Error("malformed sign-in response", zap.Error(err))
			return nil, ErrUnavailable
		}
		if body.IDToken == "" {
			p.log.Error("sign-in response missing id token")
			return nil, ErrUnavailable
		}
		account := &Account{Email: body.Email}
		if account.Email == "" {
			account.Email = email
		}
		return account, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		p.log.Warn("sign-in rejected", zap.Int("status", resp.StatusCode))
		return nil, ErrInvalidCredentials

	default:
		p.log.Error("sign-in endpoint error", zap.Int("status", resp.StatusCode))
		return nil, ErrUnavailable
	}
}
