package config

import "time"

type OAuthConfig interface {
	GetAccessTokenLifetime() time.Duration
	GetRefreshThreshold() time.Duration
	GetRefreshTokenLifetime() time.Duration
	GetRefreshWarningWindow() time.Duration
	GetRequestTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetAccessTokenLifetime returns the nominal access token validity
// published by the commerce API.
func (OAuth) GetAccessTokenLifetime() time.Duration {
	return 2 * time.Hour
}

// GetRefreshThreshold returns the age at which a stored access token is
// refreshed proactively: 75% of the nominal lifetime.
func (OAuth) GetRefreshThreshold() time.Duration {
	return 90 * time.Minute
}

func (OAuth) GetRefreshTokenLifetime() time.Duration {
	return 90 * 24 * time.Hour
}

// GetRefreshWarningWindow returns how long before refresh token expiry
// the credential health check starts warning.
func (OAuth) GetRefreshWarningWindow() time.Duration {
	return 7 * 24 * time.Hour
}

func (OAuth) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}
