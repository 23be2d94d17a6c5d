package report_test

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
	"github.com/athlogic/salesbot/report"
	"github.com/athlogic/salesbot/token"
	"github.com/athlogic/salesbot/token/repofake"
)

type maintenanceFixture struct {
	repo       *repofake.FakeCredentialsRepo
	sink       *fakeSink
	maintainer *report.Maintainer
	now        time.Time
}

func setupMaintenanceFixture(t *testing.T, refreshStatus int) *maintenanceFixture {
	t.Helper()

	f := &maintenanceFixture{
		repo: repofake.NewFakeCredentialsRepo(),
		sink: &fakeSink{},
		now:  time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if refreshStatus != http.StatusOK {
			w.WriteHeader(refreshStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"accessToken": "access-2", "refreshToken": "refresh-2"},
		})
	}))
	t.Cleanup(server.Close)

	tokens, err := token.NewManager(f.repo, config.OAuth{}, "client-1", "secret-1", server.URL,
		token.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)

	maintainer, err := report.NewMaintainer(tokens, f.sink)
	require.NoError(t, err)
	f.maintainer = maintainer
	return f
}

func (f *maintenanceFixture) seedAge(age time.Duration) {
	f.repo.Seed(&token.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		CreatedAt:    f.now.Add(-age),
	})
}

func TestHealthCheckWarnsWhenCredentialsAbsent(t *testing.T) {
	f := setupMaintenanceFixture(t, http.StatusOK)

	err := f.maintainer.CheckCredentialHealth(context.Background())
	require.ErrorIs(t, err, boterrors.ErrNoCredentials)
	require.Len(t, f.sink.messages, 1)
	require.Contains(t, f.sink.messages[0], "Authorization is required")
}

func TestHealthCheckWarnsNearRefreshExpiry(t *testing.T) {
	f := setupMaintenanceFixture(t, http.StatusOK)
	f.seedAge(85 * 24 * time.Hour)

	require.NoError(t, f.maintainer.CheckCredentialHealth(context.Background()))
	require.Len(t, f.sink.messages, 1)
	require.Contains(t, f.sink.messages[0], "Refresh token expires on 2026-09-04")
}

func TestHealthCheckSilentWhileHealthy(t *testing.T) {
	f := setupMaintenanceFixture(t, http.StatusOK)
	f.seedAge(24 * time.Hour)

	require.NoError(t, f.maintainer.CheckCredentialHealth(context.Background()))
	require.Empty(t, f.sink.messages)
}

func TestMaintenanceRefreshReportsSuccess(t *testing.T) {
	f := setupMaintenanceFixture(t, http.StatusOK)
	f.seedAge(30 * 24 * time.Hour)

	require.NoError(t, f.maintainer.MaintenanceRefresh(context.Background()))
	require.Len(t, f.sink.messages, 1)
	require.Contains(t, f.sink.messages[0], "refresh succeeded")

	stored, err := f.repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestMaintenanceRefreshReportsFailure(t *testing.T) {
	f := setupMaintenanceFixture(t, http.StatusBadRequest)
	f.seedAge(30 * 24 * time.Hour)

	err := f.maintainer.MaintenanceRefresh(context.Background())
	require.ErrorIs(t, err, boterrors.ErrRefreshFailed)
	require.Len(t, f.sink.messages, 1)
	require.Contains(t, f.sink.messages[0], "refresh failed")

	stored, loadErr := f.repo.Load()
	require.NoError(t, loadErr)
	require.Equal(t, "refresh-1", stored.RefreshToken, "failed refresh must not touch the stored record")
}
