// Package notify defines the notification interface and the chat
// transports used to deliver alert digests.
package notify

import (
	"context"
	"errors"
)

// ErrNoDestination is returned when a destination names no usable transport.
var ErrNoDestination = errors.New("destination has no chat room or webhook")

// Destination identifies where a message goes. Chatwork needs Token and
// RoomID; Discord needs WebhookURL.
type Destination struct {
	Token      string
	RoomID     string
	WebhookURL string
}

// Message is a rendered notification.
type Message struct {
	Title string
	Body  string
}

// Notifier delivers one message to one destination.
type Notifier interface {
	Send(ctx context.Context, dest Destination, msg Message) error
}
