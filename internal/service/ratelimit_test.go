package service

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiterAdmitsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(30, time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	for i := 0; i < 30; i++ {
		if !rl.Admit("u1", ClassMessageSend) {
			t.Fatalf("admit %d should pass", i+1)
		}
	}

	if rl.Admit("u1", ClassMessageSend) {
		t.Fatal("31st admit should be denied")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Admit("u1", ClassPostCreate) {
			t.Fatalf("admit %d should pass", i+1)
		}
	}
	if rl.Admit("u1", ClassPostCreate) {
		t.Fatal("over-limit admit should be denied")
	}

	// oldest hit falls out of the window
	now = base.Add(time.Minute + time.Second)
	if !rl.Admit("u1", ClassPostCreate) {
		t.Fatal("admit should pass after the window slides")
	}
}

func TestRateLimiterSharedAcrossClasses(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Admit("u1", ClassMessageSend) {
		t.Fatal("first admit should pass")
	}
	if !rl.Admit("u1", ClassReactionToggle) {
		t.Fatal("second admit should pass")
	}
	if rl.Admit("u1", ClassVoiceUpload) {
		t.Fatal("third admit should be denied, window is shared across classes")
	}
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Admit("u1", ClassMessageSend) {
		t.Fatal("u1 should be admitted")
	}
	if rl.Admit("u1", ClassMessageSend) {
		t.Fatal("u1 should be denied")
	}

	for i := 0; i < 5; i++ {
		user := fmt.Sprintf("other-%d", i)
		if !rl.Admit(user, ClassMessageSend) {
			t.Fatalf("%s should be admitted, windows are per user", user)
		}
	}
}
