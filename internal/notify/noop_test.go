package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_Send(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.Send(context.Background(), Destination{RoomID: "1"}, Message{Title: "t", Body: "b"})
	require.ErrorIs(t, err, ErrNoDestination)
}

func TestRouter_NoCredentialsFallsBackToNoOp(t *testing.T) {
	t.Parallel()

	r := NewRouter(NewChatworkNotifier(), nil, NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil))))
	err := r.Send(context.Background(), Destination{}, Message{Title: "t", Body: "b"})
	require.ErrorIs(t, err, ErrNoDestination)
}
