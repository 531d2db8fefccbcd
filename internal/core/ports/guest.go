package ports

import "context"

// Guest runs commands inside an isolated execution context rooted at a
// bootstrap target.
//
//go:generate go run go.uber.org/mock/mockgen -source=guest.go -destination=mocks/mock_guest.go -package=mocks
type Guest interface {
	// Available reports whether any guest capability exists on the host.
	// Callers should check this before mutating the target so a missing
	// capability fails the run up front.
	Available() bool

	// Run executes args inside the guest rooted at target and waits for
	// completion. A non-zero exit status is an error.
	Run(ctx context.Context, target string, args []string) error
}

// ReadinessProbe reports whether a named guest instance is ready to accept
// commands. Implementations should perform a single lightweight management
// round trip; the bridge owns the backoff loop around it.
type ReadinessProbe interface {
	Ready(ctx context.Context, machine string) bool
}
