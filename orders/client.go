package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	boterrors "github.com/athlogic/salesbot/internal/errors"
)

// defaultPageSize is the list endpoint's maximum page size.
const defaultPageSize = 100

// CredentialSource supplies bearer tokens for order API calls.
// ForceRefresh backs the single refresh-and-retry allowed after an
// authentication rejection.
type CredentialSource interface {
	ValidToken(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

// Client fetches order records from the paginated list endpoint.
type Client struct {
	source     CredentialSource
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithPageSize overrides the page size (primarily for testing).
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		c.pageSize = size
	}
}

// WithHTTPClient overrides the HTTP client used for list calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLimiter overrides the client-side request limiter.
func WithLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func NewClient(source CredentialSource, baseURL string, options ...ClientOption) (*Client, error) {
	if source == nil {
		return nil, errors.New("[NewClient] credential source is required")
	}

	c := &Client{
		source:     source,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		pageSize:   defaultPageSize,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// listEnvelope is the order list endpoint's response wrapper.
type listEnvelope struct {
	Data struct {
		List       []Order `json:"list"`
		TotalCount int     `json:"totalCount"`
	} `json:"data"`
}

// FetchWindow retrieves every order in the window, page by page, and
// returns the fully materialized set. Pagination stops on the first
// empty page or once the cumulative count reaches the server-reported
// total, whichever comes first. Any non-2xx page aborts the whole fetch;
// nothing partial is returned. A 401 triggers exactly one forced token
// refresh before the page is retried.
func (c *Client) FetchWindow(ctx context.Context, window Window) ([]Order, error) {
	accessToken, err := c.source.ValidToken(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[FetchWindow] source.ValidToken")
	}

	var all []Order
	page := 1
	refreshed := false

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "[FetchWindow] limiter.Wait")
		}

		resp, err := c.fetchPage(ctx, accessToken, window, page)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized && !refreshed {
			_ = resp.Body.Close()
			refreshed = true
			accessToken, err = c.source.ForceRefresh(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "[FetchWindow] source.ForceRefresh")
			}
			continue // retry the same page once with the new token
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, &boterrors.FetchError{StatusCode: resp.StatusCode, Page: page}
		}

		var envelope listEnvelope
		err = json.NewDecoder(resp.Body).Decode(&envelope)
		_ = resp.Body.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "[FetchWindow] decode page %d", page)
		}

		if len(envelope.Data.List) == 0 {
			break
		}
		all = append(all, envelope.Data.List...)
		log.Debug().Int("page", page).Int("fetched", len(all)).Int("total", envelope.Data.TotalCount).Msg("order page fetched")

		if len(all) >= envelope.Data.TotalCount {
			break
		}
		page++
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, accessToken string, window Window, page int) (*http.Response, error) {
	params := url.Values{
		"page":       {strconv.Itoa(page)},
		"limit":      {strconv.Itoa(c.pageSize)},
		"startWtime": {window.StartWtime()},
		"endWtime":   {window.EndWtime()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[fetchPage] http.NewRequestWithContext")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[fetchPage] page %d", page)
	}
	return resp, nil
}
