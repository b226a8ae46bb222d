// Package lifecycle holds timeouts shared by startup and shutdown hooks.
package lifecycle

import "time"

// DefaultTimeout bounds connect, ping and graceful shutdown steps.
const DefaultTimeout = 10 * time.Second
