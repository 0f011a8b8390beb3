package hold

import (
	"context"
	"time"

	"inkwell/models"
)

// Manager grants and tracks short-lived per-slot holds so only one actor
// can be mid-checkout on a slot at a time.
type Manager interface {
	// Acquire grants a hold on the slot for sessionID. Re-acquiring a hold
	// the session already owns extends it. Fails with AlreadyHeld when
	// another session holds the slot, or AlreadyBooked when a confirmed or
	// completed booking overlaps it.
	Acquire(ctx context.Context, key models.SlotKey, sessionID string) (*models.SlotHold, error)

	// Release drops the hold if sessionID owns it. Idempotent: releasing a
	// missing or expired hold is a no-op.
	Release(ctx context.Context, key models.SlotKey, sessionID string) error

	// Renew extends the hold's expiry; fails with HoldNotOwned when the
	// hold is not owned by sessionID.
	Renew(ctx context.Context, key models.SlotKey, sessionID string) (*models.SlotHold, error)

	// Owner returns the session currently holding the slot, or "" if none.
	Owner(ctx context.Context, key models.SlotKey) (string, error)
}

// Store is the shared hold state. Acquisition must be atomic per key: two
// concurrent acquires for the same key must not both succeed. The Redis
// implementation is the production store; the in-memory one mirrors its
// semantics for tests and single-process runs.
type Store interface {
	// Acquire sets the key to sessionID with the given TTL when the key is
	// free or already owned by sessionID. Returns false otherwise.
	Acquire(ctx context.Context, key, sessionID string, ttl time.Duration) (bool, error)

	// Release deletes the key only when owned by sessionID; reports
	// whether anything was released.
	Release(ctx context.Context, key, sessionID string) (bool, error)

	// Renew extends the TTL only when owned by sessionID.
	Renew(ctx context.Context, key, sessionID string, ttl time.Duration) (bool, error)

	// Owner returns the current holder, or "" when the key is free.
	Owner(ctx context.Context, key string) (string, error)
}
