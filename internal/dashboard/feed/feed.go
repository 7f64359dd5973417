package feed

import (
	"context"
	"time"
)

// Event types carried on the change feed, mirroring the publisher side.
const (
	typeInsert = "insert"
	typeUpdate = "update"
	typeDelete = "delete"
)

// Subscription is one live attachment to the change feed. Ready is
// closed once the transport has acknowledged the subscription; Messages
// delivers raw payloads and closes when the transport fails or the
// subscription is closed, after which Err reports why.
type Subscription interface {
	Ready() <-chan struct{}
	Messages() <-chan []byte
	Err() error
	Close() error
}

// Channel produces subscriptions to the change feed.
type Channel interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Config holds the connection timing knobs.
type Config struct {
	// AckTimeout is how long to wait for the transport to acknowledge a
	// new subscription before giving up. There is no automatic retry
	// after an ack timeout.
	AckTimeout time.Duration
	// ReconnectDelay is the pause before re-subscribing after an
	// established connection drops.
	ReconnectDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		AckTimeout:     10 * time.Second,
		ReconnectDelay: 5 * time.Second,
	}
}
