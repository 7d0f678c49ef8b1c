// Package session persists the single currently-valid refresh token per
// account. The slot model is deliberate: one active session per user,
// issuing a new refresh token invalidates the previous one.
package session

import "context"

// Store is the refresh-token slot. Implementations must apply Rotate
// atomically per user so that two racing rotations of the same token
// cannot both succeed.
type Store interface {
	// Set unconditionally overwrites the slot.
	Set(ctx context.Context, userID, token string) error

	// Get returns the stored token, or "" when the slot is empty.
	Get(ctx context.Context, userID string) (string, error)

	// Rotate replaces the slot only if it still holds oldToken. Returns
	// false on mismatch, including an already-cleared slot.
	Rotate(ctx context.Context, userID, oldToken, newToken string) (bool, error)

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear(ctx context.Context, userID string) error
}
