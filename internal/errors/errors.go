package errors

import (
	"errors"
	"fmt"
)

// Common error kinds for the reporting bot. Lower layers return these so
// callers classify failures with Is/As instead of inspecting message text.
var (
	// Credential errors
	ErrNoCredentials      = errors.New("no stored credentials")
	ErrAuthExchangeFailed = errors.New("authorization code exchange failed")
	ErrRefreshFailed      = errors.New("token refresh failed")

	// Delivery errors
	ErrNotifyFailed = errors.New("notification delivery failed")

	// General errors
	ErrInternal = errors.New("internal error")
)

// FetchError reports a paginated fetch aborted on a non-2xx response.
// Pages already fetched are discarded by the fetcher, never returned.
type FetchError struct {
	StatusCode int
	Page       int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("order fetch failed on page %d: status %d", e.Page, e.StatusCode)
}

// IsCredentialError reports whether err is one of the kinds that require
// operator re-authorization rather than a plain retry on the next cycle.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrRefreshFailed) ||
		errors.Is(err, ErrAuthExchangeFailed)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
