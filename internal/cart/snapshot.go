package cart

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by a SnapshotStore when no snapshot exists for a key.
var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotStore persists opaque cart snapshots under string keys.
// Save writes a durable snapshot; SaveTransient writes a session-scoped
// one that expires on its own (the checkout handoff).
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	SaveTransient(ctx context.Context, key string, data []byte) error
}

func cartKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}

func checkoutCartKey(session string) string {
	return fmt.Sprintf("checkout_cart:%s", session)
}

func checkoutSubtotalKey(session string) string {
	return fmt.Sprintf("checkout_subtotal:%s", session)
}
