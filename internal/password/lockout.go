package password

import "time"

// DefaultLockoutThreshold is the number of consecutive failed attempts
// after which an account locks.
const DefaultLockoutThreshold = 15

// LoginState is the login bookkeeping carried by a user record. The
// tracker never reads or writes the store; callers fetch the state, apply
// a transition, and persist the result.
type LoginState struct {
	FailedAttempts int
	Locked         bool
	LastLoginAt    *time.Time
}

// LockoutTracker computes login state transitions.
type LockoutTracker struct {
	Threshold int
	Now       func() time.Time // nil means time.Now
}

// NewLockoutTracker returns a tracker with the given threshold, falling
// back to DefaultLockoutThreshold for non-positive values.
func NewLockoutTracker(threshold int) LockoutTracker {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	return LockoutTracker{Threshold: threshold}
}

func (t LockoutTracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// OnSuccess resets the failure counter and stamps the login time.
func (t LockoutTracker) OnSuccess(s LoginState) LoginState {
	now := t.now()
	s.FailedAttempts = 0
	s.LastLoginAt = &now
	return s
}

// OnFailure increments the failure counter, locking the account once the
// counter reaches the threshold. The lock holds until an explicit Unlock.
func (t LockoutTracker) OnFailure(s LoginState) LoginState {
	s.FailedAttempts++
	if s.FailedAttempts >= t.Threshold {
		s.Locked = true
	}
	return s
}

// Unlock clears the lock and the failure counter unconditionally. This is
// the administrative override.
func (t LockoutTracker) Unlock(s LoginState) LoginState {
	s.Locked = false
	s.FailedAttempts = 0
	return s
}
