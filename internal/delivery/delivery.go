// Package delivery defines the contract every inbound transport implements.
package delivery

import "context"

// Delivery is a long-running inbound transport such as the HTTP API.
type Delivery interface {
	// Serve blocks until the transport stops or ctx is cancelled.
	Serve(ctx context.Context) error
}
