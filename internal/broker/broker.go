// Package broker fans notifications out to live subscribers.
package broker

import (
	"context"

	"docvault/internal/model"
)

// subscriberBuffer bounds how far a slow subscriber may lag before messages are dropped
const subscriberBuffer = 16

// Broker delivers notifications to every live subscriber of a user
type Broker interface {
	Publish(ctx context.Context, n *model.Notification) error
	// Subscribe returns a channel of the user's notifications and a func that ends
	// the subscription and closes the channel
	Subscribe(ctx context.Context, userID string) (<-chan *model.Notification, func(), error)
	Close() error
}

func channelName(userID string) string {
	return "notifications:" + userID
}
