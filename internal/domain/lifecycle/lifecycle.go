// Package lifecycle holds shared startup and shutdown policy.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of long-lived components.
const DefaultTimeout = 10 * time.Second
