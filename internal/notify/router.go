package notify

import "context"

// Router picks a transport per destination: Chatwork when a room and token
// are set, Discord when a webhook is set, otherwise the fallback.
type Router struct {
	chatwork Notifier
	discord  Notifier
	fallback Notifier
}

// NewRouter creates a Router. Nil transports are skipped.
func NewRouter(chatwork, discord, fallback Notifier) *Router {
	return &Router{chatwork: chatwork, discord: discord, fallback: fallback}
}

// Send delivers msg through the transport dest selects.
func (r *Router) Send(ctx context.Context, dest Destination, msg Message) error {
	switch {
	case r.chatwork != nil && dest.RoomID != "" && dest.Token != "":
		return r.chatwork.Send(ctx, dest, msg)
	case r.discord != nil && dest.WebhookURL != "":
		return r.discord.Send(ctx, dest, msg)
	case r.fallback != nil:
		return r.fallback.Send(ctx, dest, msg)
	default:
		return ErrNoDestination
	}
}
