// Package ads fetches daily ad performance from the Meta insights API.
package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Performance is one day of account-level ad metrics.
type Performance struct {
	Date            string
	Spend           float64
	Impressions     int64
	Clicks          int64
	CTR             float64
	CPC             float64
	CPM             float64
	Conversions     int64
	ConversionValue float64
	ROAS            float64
}

// Client is a thin parameter-driven wrapper over the insights endpoint.
type Client struct {
	accountID  string
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient builds an insights client for one ad account. The
// long-lived access token is injected as a static bearer credential.
func NewClient(accessToken, accountID, baseURL string, options ...ClientOption) (*Client, error) {
	if accessToken == "" || accountID == "" {
		return nil, errors.New("[NewClient] access token and account id are required")
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 30 * time.Second

	c := &Client{
		accountID:  accountID,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// insightsEnvelope is the Graph API response shape. Numeric fields come
// over the wire as strings.
type insightsEnvelope struct {
	Data []struct {
		Spend       string        `json:"spend"`
		Impressions string        `json:"impressions"`
		Clicks      string        `json:"clicks"`
		CTR         string        `json:"ctr"`
		CPC         string        `json:"cpc"`
		CPM         string        `json:"cpm"`
		Actions     []actionEntry `json:"actions"`
		ActionVals  []actionEntry `json:"action_values"`
	} `json:"data"`
}

type actionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// DayPerformance returns the account-level metrics for the given local
// day (YYYY-MM-DD). A day without delivery returns zeroed metrics.
func (c *Client) DayPerformance(ctx context.Context, day string) (Performance, error) {
	perf := Performance{Date: day}

	params := url.Values{
		"level":      {"account"},
		"fields":     {"spend,impressions,clicks,ctr,cpc,cpm,actions,action_values"},
		"time_range": {fmt.Sprintf(`{"since":"%s","until":"%s"}`, day, day)},
	}

	endpoint := fmt.Sprintf("%s/act_%s/insights?%s", c.baseURL, c.accountID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return perf, errors.Wrap(err, "[DayPerformance] http.NewRequestWithContext")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return perf, errors.Wrap(err, "[DayPerformance] httpClient.Do")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return perf, errors.Errorf("[DayPerformance] status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope insightsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return perf, errors.Wrap(err, "[DayPerformance] decode response")
	}
	if len(envelope.Data) == 0 {
		return perf, nil
	}

	insight := envelope.Data[0]
	perf.Spend = parseFloat(insight.Spend)
	perf.Impressions = parseInt(insight.Impressions)
	perf.Clicks = parseInt(insight.Clicks)
	perf.CTR = parseFloat(insight.CTR)
	perf.CPC = parseFloat(insight.CPC)
	perf.CPM = parseFloat(insight.CPM)

	for _, action := range insight.Actions {
		if action.ActionType == "purchase" {
			perf.Conversions = parseInt(action.Value)
			break
		}
	}
	for _, actionValue := range insight.ActionVals {
		if actionValue.ActionType == "purchase" {
			perf.ConversionValue = parseFloat(actionValue.Value)
			break
		}
	}

	if perf.Spend > 0 {
		perf.ROAS = perf.ConversionValue / perf.Spend
	}
	return perf, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
