package utils

import (
	"sync"
	"time"
)

type loginAttemptInfo struct {
	Count     int
	LastTry   time.Time
	LockUntil time.Time
}

// LoginLimiter tracks failed logins per email and temporarily locks an
// account after too many failures.
type LoginLimiter struct {
	attempts      map[string]*loginAttemptInfo
	mutex         sync.RWMutex
	maxAttempts   int
	lockDuration  time.Duration
	cleanInterval time.Duration
}

// NewLoginLimiter creates a limiter and starts its cleanup goroutine.
func NewLoginLimiter(maxAttempts int, lockDuration, cleanInterval time.Duration) *LoginLimiter {
	limiter := &LoginLimiter{
		attempts:      make(map[string]*loginAttemptInfo),
		maxAttempts:   maxAttempts,
		lockDuration:  lockDuration,
		cleanInterval: cleanInterval,
	}

	go limiter.cleanupRoutine()

	return limiter
}

func (l *LoginLimiter) cleanupRoutine() {
	ticker := time.NewTicker(l.cleanInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.cleanup()
	}
}

func (l *LoginLimiter) cleanup() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := time.Now()
	for email, attempt := range l.attempts {
		if now.After(attempt.LockUntil) && now.Sub(attempt.LastTry) > 24*time.Hour {
			delete(l.attempts, email)
		}
	}
}

// RecordFailedLogin counts a failure and locks the account once the limit
// is reached. Returns whether the account is now locked and for how many
// minutes.
func (l *LoginLimiter) RecordFailedLogin(email string) (bool, int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := time.Now()

	attempt, exists := l.attempts[email]
	if !exists {
		attempt = &loginAttemptInfo{LastTry: now}
		l.attempts[email] = attempt
	}

	attempt.Count++
	attempt.LastTry = now

	if attempt.Count >= l.maxAttempts {
		attempt.LockUntil = now.Add(l.lockDuration)
		return true, int(l.lockDuration.Minutes())
	}

	return false, 0
}

// IsLocked reports whether the account is locked and the remaining
// minutes of the lock.
func (l *LoginLimiter) IsLocked(email string) (bool, int) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	attempt, exists := l.attempts[email]
	if !exists {
		return false, 0
	}

	now := time.Now()
	if now.Before(attempt.LockUntil) {
		return true, int(attempt.LockUntil.Sub(now).Minutes()) + 1
	}

	return false, 0
}

// ResetAttempts clears the failure count after a successful login.
func (l *LoginLimiter) ResetAttempts(email string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	delete(l.attempts, email)
}

// GetRemainingAttempts returns how many failures remain before lockout.
func (l *LoginLimiter) GetRemainingAttempts(email string) int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	attempt, exists := l.attempts[email]
	if !exists {
		return l.maxAttempts
	}

	remaining := l.maxAttempts - attempt.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// DefaultLoginLimiter locks an account for 15 minutes after 5 failures.
var DefaultLoginLimiter = NewLoginLimiter(5, 15*time.Minute, 1*time.Hour)
