package queueaccess

import (
	"errors"
	"fmt"

	"convoy/internal/ipc"
	"convoy/internal/queue"
)

// Session bundles a queue access handle with the cleanup for whichever
// backend it was opened against.
type Session struct {
	Access  Access
	cleanup func() error
}

// Close releases the underlying client or store.
func (s Session) Close() error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// OpenWithFallback prefers a live daemon connection and degrades to opening
// the queue database directly when the daemon is unreachable. CLI commands
// use this so listing and clearing work while convoyd is stopped.
func OpenWithFallback(
	dial func() (*ipc.Client, error),
	openStore func() (*queue.Store, error),
) (Session, error) {
	if dial != nil {
		client, err := dial()
		if err == nil {
			return Session{Access: NewIPCAccess(client), cleanup: client.Close}, nil
		}
	}

	if openStore == nil {
		return Session{}, errors.New("open queue store: no store opener configured")
	}
	store, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open queue store: %w", err)
	}
	return Session{Access: NewStoreAccess(store), cleanup: store.Close}, nil
}
