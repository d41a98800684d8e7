package otpinfra

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is an in-process otp.Limiter for local development and tests.
// State is lost on restart, which is acceptable for those environments.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) IncrAttempts(_ context.Context, key string, ttl time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(ttl)}
		l.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (l *MemoryLimiter) ClearAttempts(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

func (l *MemoryLimiter) MarkIssued(_ context.Context, key string, cooldown time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && !now.After(e.expiresAt) {
		return false, nil
	}
	l.entries[key] = &memoryEntry{count: 1, expiresAt: now.Add(cooldown)}
	return true, nil
}
