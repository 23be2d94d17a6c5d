package config

type Config interface {
	EnvConfig
	OAuthConfig
	ReportConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetClientID() string
	GetClientSecret() string
	GetAPIBaseURL() string
	GetRedirectURI() string
	GetSiteCode() string
	GetWebhookURL() string
	GetTokenFile() string
	GetAdsAccessToken() string
	GetAdAccountID() string
	GetGraphBaseURL() string
	GetOpsPort() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Report
}

// New loads the configuration. Env vars are read lazily through the
// getters; the report config file is parsed once here.
func New() (Config, error) {
	report, err := LoadReport(GetEnv(reportFileVar, "report.yml"))
	if err != nil {
		return nil, err
	}
	return mainConfig{Report: report}, nil
}
