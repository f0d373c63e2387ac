package password

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutTrackerOnFailure(t *testing.T) {
	tracker := NewLockoutTracker(DefaultLockoutThreshold)

	state := LoginState{}
	for i := 1; i < DefaultLockoutThreshold; i++ {
		state = tracker.OnFailure(state)
		assert.Equal(t, i, state.FailedAttempts)
		assert.False(t, state.Locked, "attempt %d must not lock", i)
	}

	state = tracker.OnFailure(state)
	assert.Equal(t, DefaultLockoutThreshold, state.FailedAttempts)
	assert.True(t, state.Locked, "attempt %d locks the account", DefaultLockoutThreshold)

	// Further failures keep the account locked and the counter growing.
	state = tracker.OnFailure(state)
	assert.Equal(t, DefaultLockoutThreshold+1, state.FailedAttempts)
	assert.True(t, state.Locked)
}

func TestLockoutTrackerOnSuccess(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker := LockoutTracker{Threshold: 15, Now: func() time.Time { return now }}

	state := tracker.OnSuccess(LoginState{FailedAttempts: 7})
	assert.Equal(t, 0, state.FailedAttempts)
	require.NotNil(t, state.LastLoginAt)
	assert.Equal(t, now, *state.LastLoginAt)
}

func TestLockoutTrackerUnlock(t *testing.T) {
	tracker := NewLockoutTracker(0) // falls back to the default threshold
	assert.Equal(t, DefaultLockoutThreshold, tracker.Threshold)

	state := tracker.Unlock(LoginState{FailedAttempts: 20, Locked: true})
	assert.False(t, state.Locked)
	assert.Equal(t, 0, state.FailedAttempts)
}
