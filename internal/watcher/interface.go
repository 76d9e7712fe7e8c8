package watcher

import "context"

// Watcher feeds recordings dropped into an inbox folder to a Handler.
type Watcher interface {
	// Start blocks until ctx is cancelled, then waits for running handlers.
	Start(ctx context.Context) error
	Stop() error
}

// Handler processes one recording. A returned error is logged and the file
// is left in the inbox.
type Handler func(ctx context.Context, path string) error
