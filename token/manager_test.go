package token_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/athlogic/salesbot/internal/config"
	boterrors "github.com/athlogic/salesbot/internal/errors"
	"github.com/athlogic/salesbot/token"
	"github.com/athlogic/salesbot/token/repofake"
)

const (
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testRedirectURI  = "https://shop.example.com/callback"
)

// tokenFixture holds the manager under test plus its collaborators.
type tokenFixture struct {
	repo     *repofake.FakeCredentialsRepo
	manager  *token.Manager
	server   *httptest.Server
	requests []map[string]string
	respond  func(w http.ResponseWriter, r *http.Request)
	now      time.Time
}

func setupTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()

	f := &tokenFixture{
		repo: repofake.NewFakeCredentialsRepo(),
		now:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())

		fields := map[string]string{}
		for key := range r.PostForm {
			fields[key] = r.PostForm.Get(key)
		}
		f.requests = append(f.requests, fields)
		f.respond(w, r)
	}))
	t.Cleanup(f.server.Close)

	manager, err := token.NewManager(
		f.repo,
		config.OAuth{},
		testClientID,
		testClientSecret,
		f.server.URL,
		token.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	f.manager = manager
	return f
}

func (f *tokenFixture) respondWithPair(access, refresh string) {
	f.respond = func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"accessToken": access, "refreshToken": refresh},
		})
	}
}

func (f *tokenFixture) respondWithStatus(status int) {
	f.respond = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"denied"}`))
	}
}

func (f *tokenFixture) seed(access, refresh string, issuedAt time.Time) {
	f.repo.Seed(&token.Credentials{AccessToken: access, RefreshToken: refresh, CreatedAt: issuedAt})
}

func TestValidTokenReturnsFreshTokenWithoutRefresh(t *testing.T) {
	f := setupTokenFixture(t)
	f.seed("access-1", "refresh-1", f.now.Add(-89*time.Minute))

	accessToken, err := f.manager.ValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-1", accessToken)
	require.Empty(t, f.requests, "a token inside the threshold must not trigger a refresh")
}

func TestValidTokenRefreshesPastThreshold(t *testing.T) {
	f := setupTokenFixture(t)
	f.seed("access-1", "refresh-1", f.now.Add(-90*time.Minute))
	f.respondWithPair("access-2", "refresh-2")

	accessToken, err := f.manager.ValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-2", accessToken)
	require.Len(t, f.requests, 1, "exactly one refresh call past the threshold")
	require.Equal(t, "refresh_token", f.requests[0]["grantType"])
	require.Equal(t, "refresh-1", f.requests[0]["refreshToken"])

	stored, err := f.repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-2", stored.RefreshToken, "the rotated refresh token must be stored")
	require.Equal(t, f.now, stored.CreatedAt)
}

func TestValidTokenWithoutCredentials(t *testing.T) {
	f := setupTokenFixture(t)

	_, err := f.manager.ValidToken(context.Background())
	require.ErrorIs(t, err, boterrors.ErrNoCredentials)
	require.Empty(t, f.requests)
}

func TestRefreshFailureLeavesStoredRecordUnchanged(t *testing.T) {
	f := setupTokenFixture(t)
	issuedAt := f.now.Add(-2 * time.Hour)
	f.seed("access-1", "refresh-1", issuedAt)
	f.respondWithStatus(http.StatusBadRequest)

	_, err := f.manager.ValidToken(context.Background())
	require.ErrorIs(t, err, boterrors.ErrRefreshFailed)

	stored, loadErr := f.repo.Load()
	require.NoError(t, loadErr)
	require.Equal(t, "access-1", stored.AccessToken)
	require.Equal(t, "refresh-1", stored.RefreshToken)
	require.Equal(t, issuedAt, stored.CreatedAt)
	require.Zero(t, f.repo.SaveCount())
}

func TestForceRefreshIgnoresThreshold(t *testing.T) {
	f := setupTokenFixture(t)
	f.seed("access-1", "refresh-1", f.now.Add(-time.Minute))
	f.respondWithPair("access-2", "refresh-2")

	accessToken, err := f.manager.ForceRefresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-2", accessToken)
	require.Len(t, f.requests, 1)
}

func TestExchangePersistsFirstCredentials(t *testing.T) {
	f := setupTokenFixture(t)
	f.respondWithPair("access-1", "refresh-1")

	accessToken, err := f.manager.Exchange(context.Background(), "auth-code", testRedirectURI)
	require.NoError(t, err)
	require.Equal(t, "access-1", accessToken)

	require.Len(t, f.requests, 1)
	require.Equal(t, "authorization_code", f.requests[0]["grantType"])
	require.Equal(t, "auth-code", f.requests[0]["code"])
	require.Equal(t, testRedirectURI, f.requests[0]["redirectUri"])
	require.Equal(t, testClientID, f.requests[0]["clientId"])
	require.Equal(t, testClientSecret, f.requests[0]["clientSecret"])

	stored, err := f.repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestExchangeFailureKeepsUnauthenticatedState(t *testing.T) {
	f := setupTokenFixture(t)
	f.respondWithStatus(http.StatusUnauthorized)

	_, err := f.manager.Exchange(context.Background(), "bad-code", testRedirectURI)
	require.ErrorIs(t, err, boterrors.ErrAuthExchangeFailed)

	stored, loadErr := f.repo.Load()
	require.NoError(t, loadErr)
	require.Nil(t, stored)
}

func TestStatusReflectsCredentialAge(t *testing.T) {
	f := setupTokenFixture(t)

	state, _ := f.manager.Status()
	require.Equal(t, token.StateNoCredentials, state)

	f.seed("access-1", "refresh-1", f.now.Add(-time.Hour))
	state, issuedAt := f.manager.Status()
	require.Equal(t, token.StateValid, state)
	require.Equal(t, f.now.Add(-time.Hour), issuedAt)

	f.seed("access-1", "refresh-1", f.now.Add(-3*time.Hour))
	state, _ = f.manager.Status()
	require.Equal(t, token.StateStale, state)
}

func TestRefreshExpiryWarnsInsideWindow(t *testing.T) {
	f := setupTokenFixture(t)

	_, _, err := f.manager.RefreshExpiry()
	require.ErrorIs(t, err, boterrors.ErrNoCredentials)

	f.seed("access-1", "refresh-1", f.now.Add(-84*24*time.Hour))
	expiresAt, warn, err := f.manager.RefreshExpiry()
	require.NoError(t, err)
	require.True(t, warn, "84 of 90 days used is inside the 7-day warning window")
	require.Equal(t, f.now.Add(6*24*time.Hour), expiresAt)

	f.seed("access-1", "refresh-1", f.now.Add(-24*time.Hour))
	_, warn, err = f.manager.RefreshExpiry()
	require.NoError(t, err)
	require.False(t, warn)
}
