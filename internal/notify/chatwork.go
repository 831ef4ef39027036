package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultChatworkBaseURL = "https://api.chatwork.com/v2"

// ChatworkNotifier implements Notifier via the Chatwork room messages API.
type ChatworkNotifier struct {
	baseURL string
	client  *http.Client
}

// ChatworkOption configures a ChatworkNotifier.
type ChatworkOption func(*ChatworkNotifier)

// WithChatworkBaseURL points the notifier at a different API root.
func WithChatworkBaseURL(u string) ChatworkOption {
	return func(c *ChatworkNotifier) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithChatworkClient sets a custom HTTP client.
func WithChatworkClient(hc *http.Client) ChatworkOption {
	return func(c *ChatworkNotifier) {
		c.client = hc
	}
}

// NewChatworkNotifier creates a new ChatworkNotifier.
func NewChatworkNotifier(opts ...ChatworkOption) *ChatworkNotifier {
	c := &ChatworkNotifier{
		baseURL: defaultChatworkBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts msg.Body to the destination room.
func (c *ChatworkNotifier) Send(ctx context.Context, dest Destination, msg Message) error {
	if dest.Token == "" || dest.RoomID == "" {
		return fmt.Errorf("chatwork: %w", ErrNoDestination)
	}

	form := url.Values{}
	form.Set("body", msg.Body)

	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, url.PathEscape(dest.RoomID))
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating chatwork request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-ChatWorkToken", dest.Token)

	return do(c.client, req, "chatwork")
}
