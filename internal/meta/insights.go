package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const (
	defaultGraphURL   = "https://graph.facebook.com"
	defaultAPIVersion = "v19.0"
	insightsFields    = "spend,impressions,reach,clicks,cpm,cpc,ctr,actions,date_start,date_stop"
	pageLimit         = 100
	maxPages          = 10
	throttleBackoff   = 5 * time.Minute
)

// throttleCodes are Graph API error codes that mean "slow down".
var throttleCodes = map[int]struct{}{4: {}, 17: {}, 32: {}, 613: {}, 80000: {}, 80004: {}}

// APIError is an error body returned by the Graph API.
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error (status %d, code %d): %s", e.Status, e.Code, e.Message)
}

// Throttled reports whether Meta asked the caller to back off.
func (e *APIError) Throttled() bool {
	if e.Status == http.StatusTooManyRequests {
		return true
	}
	_, ok := throttleCodes[e.Code]
	return ok
}

// Action is one entry of the insights actions list.
type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// insightsRow is one day of account insights. Graph returns numbers as
// strings.
type insightsRow struct {
	DateStart   string   `json:"date_start"`
	DateStop    string   `json:"date_stop"`
	Spend       string   `json:"spend"`
	Impressions string   `json:"impressions"`
	Reach       string   `json:"reach"`
	Clicks      string   `json:"clicks"`
	CPM         string   `json:"cpm"`
	CPC         string   `json:"cpc"`
	CTR         string   `json:"ctr"`
	Actions     []Action `json:"actions"`
}

type insightsResponse struct {
	Data   []insightsRow `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *APIError `json:"error"`
}

// InsightsClient implements MetricSource using the Graph API insights edge.
type InsightsClient struct {
	baseURL     string
	version     string
	client      *http.Client
	rateLimiter *RateLimiter
	loc         *time.Location
	log         *slog.Logger
}

// InsightsOption configures the InsightsClient.
type InsightsOption func(*InsightsClient)

// WithGraphURL overrides the Graph API root.
func WithGraphURL(u string) InsightsOption {
	return func(c *InsightsClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIVersion overrides the Graph API version segment.
func WithAPIVersion(v string) InsightsOption {
	return func(c *InsightsClient) {
		c.version = v
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) InsightsOption {
	return func(c *InsightsClient) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter. When set, every page request goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) InsightsOption {
	return func(c *InsightsClient) {
		c.rateLimiter = r
	}
}

// WithLocation sets the zone used for calendar days.
func WithLocation(loc *time.Location) InsightsOption {
	return func(c *InsightsClient) {
		c.loc = loc
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) InsightsOption {
	return func(c *InsightsClient) {
		c.log = l
	}
}

// NewInsightsClient creates a new Graph API insights client.
func NewInsightsClient(opts ...InsightsOption) *InsightsClient {
	c := &InsightsClient{
		baseURL: defaultGraphURL,
		version: defaultAPIVersion,
		client:  &http.Client{Timeout: 30 * time.Second},
		loc:     time.UTC,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyMetrics implements MetricSource.DailyMetrics.
func (c *InsightsClient) DailyMetrics(
	ctx context.Context,
	req AccountRequest,
	since, until time.Time,
) ([]domain.MetricSnapshot, error) {
	if req.AccountID == "" {
		return nil, errors.New("account id is required")
	}
	if req.Token == "" {
		return nil, errors.New("access token is required")
	}

	next := c.buildInsightsURL(req.AccountID, since, until)
	var rows []insightsRow

	for page := 0; next != "" && page < maxPages; page++ {
		resp, err := c.fetchPage(ctx, next, req.Token)
		if err != nil {
			return nil, err
		}
		rows = append(rows, resp.Data...)
		next = resp.Paging.Next
	}
	if next != "" {
		c.log.Warn("insights pagination truncated", "account", req.AccountID, "pages", maxPages)
	}

	snapshots := make([]domain.MetricSnapshot, 0, len(rows))
	for i := range rows {
		s, err := toSnapshot(&rows[i], req.DailyBudget, c.loc)
		if err != nil {
			c.log.Warn("skipping insights row", "account", req.AccountID, "error", err)
			continue
		}
		snapshots = append(snapshots, s)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	return snapshots, nil
}

func (c *InsightsClient) fetchPage(ctx context.Context, u, token string) (*insightsResponse, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.MetaDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.MetaDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}
	metrics.MetaAPICallsTotal.Inc()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing insights request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var out insightsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error (status %d): %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("parsing insights response: %w", err)
	}

	if out.Error != nil || resp.StatusCode != http.StatusOK {
		apiErr := out.Error
		if apiErr == nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		if apiErr.Throttled() && c.rateLimiter != nil {
			c.rateLimiter.Throttle(throttleBackoff)
		}
		return nil, apiErr
	}

	return &out, nil
}

func (c *InsightsClient) buildInsightsURL(accountID string, since, until time.Time) string {
	if !strings.HasPrefix(accountID, "act_") {
		accountID = "act_" + accountID
	}

	timeRange, _ := json.Marshal(map[string]string{ //nolint:errcheck // map of strings always marshals
		"since": since.In(c.loc).Format(time.DateOnly),
		"until": until.In(c.loc).Format(time.DateOnly),
	})

	params := url.Values{}
	params.Set("fields", insightsFields)
	params.Set("level", "account")
	params.Set("time_increment", "1")
	params.Set("time_range", string(timeRange))
	params.Set("limit", fmt.Sprint(pageLimit))

	return fmt.Sprintf("%s/%s/%s/insights?%s",
		c.baseURL, c.version, url.PathEscape(accountID), params.Encode())
}
