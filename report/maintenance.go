package report

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/notify"
	"github.com/athlogic/salesbot/token"
)

// Maintainer runs the scheduled credential upkeep jobs: the weekly
// health check and the periodic proactive refresh that keeps a rotating
// refresh token young.
type Maintainer struct {
	tokens *token.Manager
	sink   notify.Sink
}

func NewMaintainer(tokens *token.Manager, sink notify.Sink) (*Maintainer, error) {
	if tokens == nil {
		return nil, errors.New("[NewMaintainer] token manager is required")
	}
	if sink == nil {
		return nil, errors.New("[NewMaintainer] notification sink is required")
	}
	return &Maintainer{tokens: tokens, sink: sink}, nil
}

// CheckCredentialHealth warns through the webhook when credentials are
// missing or the refresh token is close to its hard expiry.
func (m *Maintainer) CheckCredentialHealth(ctx context.Context) error {
	expiresAt, warn, err := m.tokens.RefreshExpiry()
	if err != nil {
		if sendErr := m.sink.Send(ctx, ":warning: No stored credentials. Authorization is required."); sendErr != nil {
			return errors.Wrap(sendErr, "[CheckCredentialHealth] sink.Send")
		}
		return err
	}
	if warn {
		text := fmt.Sprintf(":rotating_light: Refresh token expires on %s. Re-authorize before then.", expiresAt.Format("2006-01-02"))
		if sendErr := m.sink.Send(ctx, text); sendErr != nil {
			return errors.Wrap(sendErr, "[CheckCredentialHealth] sink.Send")
		}
	}
	return nil
}

// MaintenanceRefresh forces a refresh regardless of access token age, so
// the stored refresh token is replaced well before its own expiry. The
// outcome is reported through the webhook either way.
func (m *Maintainer) MaintenanceRefresh(ctx context.Context) error {
	if _, err := m.tokens.ForceRefresh(ctx); err != nil {
		log.Error().Err(err).Msg("maintenance refresh failed")
		if sendErr := m.sink.Send(ctx, fmt.Sprintf(":x: Scheduled token refresh failed: %v", err)); sendErr != nil {
			log.Error().Err(sendErr).Msg("maintenance failure notification undelivered")
		}
		return errors.Wrap(err, "[MaintenanceRefresh] tokens.ForceRefresh")
	}
	if err := m.sink.Send(ctx, ":white_check_mark: Scheduled token refresh succeeded."); err != nil {
		return errors.Wrap(err, "[MaintenanceRefresh] sink.Send")
	}
	return nil
}
