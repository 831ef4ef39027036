package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
)

func TestChatworkNotifier_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dest       Destination
		statusCode int
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "posts form body to room",
			dest:       Destination{Token: "tok", RoomID: "12345"},
			statusCode: http.StatusOK,
		},
		{
			name:       "chatwork returns 429 rate limited",
			dest:       Destination{Token: "tok", RoomID: "12345"},
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "chatwork returns 401",
			dest:       Destination{Token: "bad", RoomID: "12345"},
			statusCode: http.StatusUnauthorized,
			wantErr:    true,
			errMsg:     "chatwork returned 401",
		},
		{
			name:    "missing room",
			dest:    Destination{Token: "tok"},
			wantErr: true,
			errMsg:  "no chat room",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				gotPath  string
				gotToken string
				gotBody  string
			)

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
					gotPath = r.URL.Path
					gotToken = r.Header.Get("X-ChatWorkToken")
					assert.NoError(t, r.ParseForm())
					gotBody = r.PostForm.Get("body")

					w.WriteHeader(tt.statusCode)
					_, _ = io.WriteString(w, `{"message_id":"1"}`)
				}),
			)
			defer srv.Close()

			c := NewChatworkNotifier(WithChatworkBaseURL(srv.URL + "/"))
			err := c.Send(context.Background(), tt.dest, Message{Title: "t", Body: "[info]本文[/info]"})

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "/rooms/12345/messages", gotPath)
			assert.Equal(t, "tok", gotToken)
			assert.Equal(t, "[info]本文[/info]", gotBody)
		})
	}
}

func TestChatworkNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	c := NewChatworkNotifier(WithChatworkBaseURL("http://127.0.0.1:1"))
	err := c.Send(context.Background(), Destination{Token: "t", RoomID: "1"}, Message{Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending chatwork message")
}

func TestChatworkNotifier_CountsSent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	before := ptestutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("chatwork"))

	c := NewChatworkNotifier(WithChatworkBaseURL(srv.URL), WithChatworkClient(srv.Client()))
	require.NoError(t, c.Send(context.Background(), Destination{Token: "t", RoomID: "1"}, Message{Body: "x"}))

	after := ptestutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("chatwork"))
	assert.GreaterOrEqual(t, after-before, 1.0)
}

func TestDiscordNotifier_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errMsg     string
	}{
		{name: "valid message sends embed", statusCode: http.StatusNoContent},
		{name: "discord returns 429 rate limited", statusCode: http.StatusTooManyRequests, wantErr: true, errMsg: "rate limited"},
		{name: "discord returns 400 error", statusCode: http.StatusBadRequest, wantErr: true, errMsg: "discord returned 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.Send(context.Background(), Destination{}, Message{Title: "title", Body: "body"})

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)
			assert.Equal(t, "title", received.Embeds[0].Title)
			assert.Equal(t, "body", received.Embeds[0].Description)
			assert.Equal(t, colorRed, received.Embeds[0].Color)
		})
	}
}

func TestDiscordNotifier_DestinationWebhookWins(t *testing.T) {
	t.Parallel()

	hit := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscordNotifier("http://127.0.0.1:1/default", WithHTTPClient(srv.Client()))
	err := d.Send(context.Background(), Destination{WebhookURL: srv.URL + "/account"}, Message{Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/account", <-hit)
}

func TestDiscordNotifier_TruncatesLongBody(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.Send(context.Background(), Destination{}, Message{Body: strings.Repeat("あ", 5000)}))
	require.Len(t, received.Embeds, 1)
	assert.Len(t, []rune(received.Embeds[0].Description), maxEmbedDescription)
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	err := d.Send(context.Background(), Destination{}, Message{Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestSend_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.Send(context.Background(), Destination{}, Message{Body: "x"}))

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}

type recordingNotifier struct {
	name  string
	calls *[]string
}

func (r recordingNotifier) Send(_ context.Context, _ Destination, _ Message) error {
	*r.calls = append(*r.calls, r.name)
	return nil
}

func TestRouter_Send(t *testing.T) {
	t.Parallel()

	var calls []string
	r := NewRouter(
		recordingNotifier{"chatwork", &calls},
		recordingNotifier{"discord", &calls},
		NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := context.Background()

	require.NoError(t, r.Send(ctx, Destination{Token: "t", RoomID: "1", WebhookURL: "http://x"}, Message{}))
	require.NoError(t, r.Send(ctx, Destination{WebhookURL: "http://x"}, Message{}))
	require.NoError(t, r.Send(ctx, Destination{RoomID: "1"}, Message{}))
	assert.Equal(t, []string{"chatwork", "discord"}, calls)

	empty := NewRouter(nil, nil, nil)
	require.ErrorIs(t, empty.Send(ctx, Destination{}, Message{}), ErrNoDestination)
}
