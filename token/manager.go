package token

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/internal/config"
	boterrors "github.com/athlogic/salesbot/internal/errors"
)

// State is the logical credential state observed by callers.
type State string

const (
	StateNoCredentials State = "no_credentials"
	StateValid         State = "valid"
	StateStale         State = "needs_refresh"
)

// Manager owns the credential lifecycle: the authorization-code
// exchange, the time-based validity policy and the refresh protocol.
// It is the sole writer of the credential record.
type Manager struct {
	repo         Repo
	cfg          config.OAuthConfig
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	nowTime      func() time.Time // nowTime function (injectable for testing)

	mu sync.Mutex // serializes check-then-refresh
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithBaseURL overrides the authorization server base URL.
func WithBaseURL(baseURL string) ManagerOption {
	return func(m *Manager) {
		m.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client used for token calls.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// NewManager initializes a Manager with required dependencies. Optional
// configuration can be provided via options (e.g., WithNowTime for
// testing).
func NewManager(repo Repo, cfg config.OAuthConfig, clientID, clientSecret, baseURL string, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] repo is required")
	}
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("[NewManager] client credentials are required")
	}

	m := &Manager{
		repo:         repo,
		cfg:          cfg,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.GetRequestTimeout()},
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Exchange trades an authorization code for a fresh credential pair,
// persists it and returns the access token. On failure the stored state
// is untouched.
func (m *Manager) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.tokenRequest(ctx, url.Values{
		"grantType":    {"authorization_code"},
		"clientId":     {m.clientID},
		"clientSecret": {m.clientSecret},
		"redirectUri":  {redirectURI},
		"code":         {code},
	})
	if err != nil {
		return "", errors.Wrap(boterrors.ErrAuthExchangeFailed, err.Error())
	}

	if err := m.repo.Save(creds); err != nil {
		return "", errors.Wrap(err, "[Exchange] repo.Save")
	}
	log.Info().Time("issued_at", creds.CreatedAt).Msg("authorization code exchanged")
	return creds.AccessToken, nil
}

// ValidToken is the single entry point used by fetchers. It returns the
// live access token, refreshing first when the stored token has passed
// the proactive threshold. Returns ErrNoCredentials when nothing is
// stored.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.load()
	if err != nil {
		return "", err
	}
	if creds.Age(m.nowTime()) < m.cfg.GetRefreshThreshold() {
		return creds.AccessToken, nil
	}
	return m.refresh(ctx, creds)
}

// ForceRefresh performs an unconditional refresh. Callers that received
// an authentication rejection downstream use it for their single
// refresh-and-retry attempt.
func (m *Manager) ForceRefresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.load()
	if err != nil {
		return "", err
	}
	return m.refresh(ctx, creds)
}

// Status reports the logical credential state and the issue time of the
// stored record, if any.
func (m *Manager) Status() (State, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.load()
	if err != nil {
		return StateNoCredentials, time.Time{}
	}
	if creds.Age(m.nowTime()) < m.cfg.GetRefreshThreshold() {
		return StateValid, creds.CreatedAt
	}
	return StateStale, creds.CreatedAt
}

// RefreshExpiry returns when the stored refresh token expires and
// whether that moment is inside the warning window.
func (m *Manager) RefreshExpiry() (expiresAt time.Time, warn bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.load()
	if err != nil {
		return time.Time{}, false, err
	}
	expiresAt = creds.CreatedAt.Add(m.cfg.GetRefreshTokenLifetime())
	warn = m.nowTime().After(expiresAt.Add(-m.cfg.GetRefreshWarningWindow()))
	return expiresAt, warn, nil
}

func (m *Manager) load() (*Credentials, error) {
	creds, err := m.repo.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[load] repo.Load")
	}
	if !creds.Valid() {
		return nil, boterrors.ErrNoCredentials
	}
	return creds, nil
}

// refresh exchanges the refresh token for a new pair and persists it.
// The new refresh token always replaces the old one, which the server
// may have rotated. Callers must hold m.mu.
func (m *Manager) refresh(ctx context.Context, current *Credentials) (string, error) {
	creds, err := m.tokenRequest(ctx, url.Values{
		"grantType":    {"refresh_token"},
		"clientId":     {m.clientID},
		"clientSecret": {m.clientSecret},
		"refreshToken": {current.RefreshToken},
	})
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed")
		return "", errors.Wrap(boterrors.ErrRefreshFailed, err.Error())
	}

	if err := m.repo.Save(creds); err != nil {
		return "", errors.Wrap(err, "[refresh] repo.Save")
	}
	log.Info().Time("issued_at", creds.CreatedAt).Msg("access token refreshed")
	return creds.AccessToken, nil
}

// tokenEnvelope is the authorization server's response wrapper.
type tokenEnvelope struct {
	Data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

func (m *Manager) tokenRequest(ctx context.Context, form url.Values) (*Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "[tokenRequest] http.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[tokenRequest] httpClient.Do")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("[tokenRequest] status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope tokenEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "[tokenRequest] decode response")
	}
	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		return nil, errors.New("[tokenRequest] response missing token pair")
	}

	return &Credentials{
		AccessToken:  envelope.Data.AccessToken,
		RefreshToken: envelope.Data.RefreshToken,
		CreatedAt:    m.nowTime(),
	}, nil
}
