// Package delivery defines the contract shared by the transports that
// expose the engine.
package delivery

import "context"

// Delivery serves until the context is canceled or the server stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
