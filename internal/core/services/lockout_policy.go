package services

import "time"

// AttemptOutcome classifies one evaluated login attempt
type AttemptOutcome int

const (
	// AttemptSuccess: credentials valid, counter and lock reset
	AttemptSuccess AttemptOutcome = iota
	// AttemptInvalid: credentials invalid, attempt counted
	AttemptInvalid
	// AttemptLocked: an active lock rejected the attempt, state untouched
	AttemptLocked
	// AttemptLockedNow: this attempt reached the threshold and created the lock
	AttemptLockedNow
)

// LockoutDecision is the account state to persist after an attempt
type LockoutDecision struct {
	Outcome        AttemptOutcome
	FailedAttempts int
	LockedUntil    *time.Time
}

// LockoutPolicy decides how failed logins accumulate into temporary locks.
// It is a pure function of its inputs: no clock, no storage.
type LockoutPolicy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// NewLockoutPolicy creates a lockout policy
func NewLockoutPolicy(maxAttempts int, lockoutDuration time.Duration) LockoutPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockoutDuration <= 0 {
		lockoutDuration = 15 * time.Minute
	}

	return LockoutPolicy{
		MaxAttempts:     maxAttempts,
		LockoutDuration: lockoutDuration,
	}
}

// Evaluate maps the current lockout state and the credential check result to
// the state an attempt leaves behind.
//
// An active lock rejects the attempt without touching the counter or
// extending the lock. A valid attempt resets everything. An invalid attempt
// increments the counter and creates a lock the moment the counter reaches
// MaxAttempts; this also covers the counter left over from an expired lock,
// so the first failure after expiry locks again immediately.
func (p LockoutPolicy) Evaluate(failedAttempts int, lockedUntil *time.Time, now time.Time, validCredentials bool) LockoutDecision {
	if lockedUntil != nil && lockedUntil.After(now) {
		return LockoutDecision{
			Outcome:        AttemptLocked,
			FailedAttempts: failedAttempts,
			LockedUntil:    lockedUntil,
		}
	}

	if validCredentials {
		return LockoutDecision{
			Outcome:        AttemptSuccess,
			FailedAttempts: 0,
			LockedUntil:    nil,
		}
	}

	attempts := failedAttempts + 1
	if attempts >= p.MaxAttempts {
		until := now.Add(p.LockoutDuration)
		return LockoutDecision{
			Outcome:        AttemptLockedNow,
			FailedAttempts: attempts,
			LockedUntil:    &until,
		}
	}

	return LockoutDecision{
		Outcome:        AttemptInvalid,
		FailedAttempts: attempts,
		LockedUntil:    nil,
	}
}
