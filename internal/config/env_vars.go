package config

import "os"

const (
	appNameVar       = "APP_NAME"
	clientIDVar      = "IMWEB_CLIENT_ID"
	clientSecretVar  = "IMWEB_CLIENT_SECRET"
	apiBaseURLVar    = "IMWEB_API_BASE_URL"
	redirectURIVar   = "IMWEB_REDIRECT_URI"
	siteCodeVar      = "IMWEB_SITE_CODE"
	webhookURLVar    = "SLACK_WEBHOOK_URL"
	tokenFileVar     = "TOKEN_FILE"
	adsTokenVar      = "META_ACCESS_TOKEN"
	adAccountVar     = "META_AD_ACCOUNT_ID"
	graphBaseURLVar  = "META_GRAPH_BASE_URL"
	opsPortVar       = "OPS_PORT"
	reportFileVar    = "REPORT_CONFIG"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Sales Bot")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "https://openapi.imweb.me")
}

// GetRedirectURI returns the redirect target registered with the
// authorization server. Only the bootstrap flow uses it.
func (EnvVars) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "")
}

func (EnvVars) GetSiteCode() string {
	return GetEnv(siteCodeVar, "")
}

func (EnvVars) GetWebhookURL() string {
	return GetEnv(webhookURLVar, "")
}

func (EnvVars) GetTokenFile() string {
	return GetEnv(tokenFileVar, "imweb_tokens.json")
}

func (EnvVars) GetAdsAccessToken() string {
	return GetEnv(adsTokenVar, "")
}

func (EnvVars) GetAdAccountID() string {
	return GetEnv(adAccountVar, "")
}

func (EnvVars) GetGraphBaseURL() string {
	return GetEnv(graphBaseURLVar, "https://graph.facebook.com/v19.0")
}

// GetOpsPort returns the listen address for the ops endpoint. "0"
// disables it.
func (EnvVars) GetOpsPort() string {
	return GetEnv(opsPortVar, "8080")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
