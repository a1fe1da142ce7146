package service

import (
	"log/slog"
	"sync"
	"time"
)

// Write classes sharing the limiter window.
const (
	ClassPostCreate     = "post-create"
	ClassMessageSend    = "message-send"
	ClassReactionToggle = "reaction-toggle"
	ClassVoiceUpload    = "voice-upload"
)

// RateLimiter keeps a sliding window of admit timestamps per user.
// One shared window covers all write classes; the class is recorded
// for logging only.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]*userWindow
}

type userWindow struct {
	mu   sync.Mutex
	hits []time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		users:  make(map[string]*userWindow),
	}
}

func (rl *RateLimiter) Admit(userID, class string) bool {
	w := rl.bucket(userID)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	kept := 0
	for kept < len(w.hits) && !w.hits[kept].After(cutoff) {
		kept++
	}
	w.hits = append(w.hits[:0], w.hits[kept:]...)

	if len(w.hits) >= rl.limit {
		slog.Debug("Rate limit denied", "user_id", userID, "class", class)
		return false
	}

	w.hits = append(w.hits, now)
	return true
}

func (rl *RateLimiter) bucket(userID string) *userWindow {
	rl.mu.RLock()
	w, ok := rl.users[userID]
	rl.mu.RUnlock()
	if ok {
		return w
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if w, ok := rl.users[userID]; ok {
		return w
	}
	w = &userWindow{}
	rl.users[userID] = w
	return w
}
