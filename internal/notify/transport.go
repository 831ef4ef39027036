package notify

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
)

// do sends req, records the transport metrics and turns non-2xx responses
// into errors.
func do(client *http.Client, req *http.Request, transport string) error {
	start := time.Now()
	resp, err := client.Do(req)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(transport).Inc()
		return fmt.Errorf("sending %s message: %w", transport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.NotificationFailuresTotal.WithLabelValues(transport).Inc()
		return fmt.Errorf("%s rate limited (429)", transport)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.NotificationFailuresTotal.WithLabelValues(transport).Inc()
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("%s returned %d (body unreadable)", transport, resp.StatusCode)
		}
		return fmt.Errorf("%s returned %d: %s", transport, resp.StatusCode, respBody)
	}

	metrics.NotificationsSentTotal.WithLabelValues(transport).Inc()
	return nil
}
