package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	colorRed = 0xE74C3C

	// Discord caps embed descriptions at 4096 characters.
	maxEmbedDescription = 4096
)

// DiscordNotifier implements Notifier via Discord webhook. A destination
// webhook URL overrides the default one.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Color       int    `json:"color"`
	Description string `json:"description,omitempty"`
}

// Send posts msg as a single embed.
func (d *DiscordNotifier) Send(ctx context.Context, dest Destination, msg Message) error {
	target := dest.WebhookURL
	if target == "" {
		target = d.webhookURL
	}
	if target == "" {
		return fmt.Errorf("discord: %w", ErrNoDestination)
	}

	desc := []rune(msg.Body)
	if len(desc) > maxEmbedDescription {
		desc = append(desc[:maxEmbedDescription-1], '…')
	}

	body, err := json.Marshal(discordWebhookPayload{
		Embeds: []discordEmbed{{
			Title:       msg.Title,
			Color:       colorRed,
			Description: string(desc),
		}},
	})
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		target,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return do(d.client, req, "discord")
}
