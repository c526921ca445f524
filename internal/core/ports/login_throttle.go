package ports

import "context"

// LoginThrottle rate-limits failed login attempts per username. A nil
// throttle is treated as disabled by the auth service.
type LoginThrottle interface {
	// Blocked reports whether further attempts for username should be refused.
	Blocked(ctx context.Context, username string) (bool, error)
	// RecordFailure notes one more failed attempt.
	RecordFailure(ctx context.Context, username string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, username string) error
}
