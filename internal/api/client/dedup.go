package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// DedupStatus reports the server's dedup settings and live records.
type DedupStatus struct {
	Mode      string               `json:"mode"`
	Window    string               `json:"window"`
	Retention string               `json:"retention"`
	Count     int                  `json:"count"`
	Records   []domain.DedupRecord `json:"records"`
}

// DedupStatus returns the dedup records the server currently holds.
func (c *Client) DedupStatus(ctx context.Context) (*DedupStatus, error) {
	var s DedupStatus
	if err := c.get(ctx, "/api/v1/dedup", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ResetDedup removes dedup records so alerts are sent again. An empty scope
// removes every record.
func (c *Client) ResetDedup(ctx context.Context, scope string) (int, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}

	var resp struct {
		Removed int `json:"removed"`
	}
	if err := c.del(ctx, withQuery("/api/v1/dedup", q), &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}
