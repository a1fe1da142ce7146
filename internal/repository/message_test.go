package repository

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestChatSequencerSerializesAppends(t *testing.T) {
	seq := newChatSequencer()

	const appends = 64

	var (
		busy   int32
		mu     sync.Mutex
		stamps []time.Time
	)

	var wg sync.WaitGroup
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.do("chat1", func(now time.Time) error {
				if atomic.AddInt32(&busy, 1) != 1 {
					t.Error("two appends inside the serialized section")
				}
				mu.Lock()
				stamps = append(stamps, now)
				mu.Unlock()
				atomic.AddInt32(&busy, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if len(stamps) != appends {
		t.Fatalf("expected %d appends, got %d", appends, len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i].Before(stamps[i-1]) {
			t.Fatalf("timestamps must follow append order within a chat: %v before %v",
				stamps[i], stamps[i-1])
		}
	}
}

func TestChatSequencerIndependentChats(t *testing.T) {
	seq := newChatSequencer()

	// an append stuck in one chat must not block another chat
	release := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		seq.do("chat1", func(time.Time) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked
	defer close(release)

	done := make(chan struct{})
	go func() {
		seq.do("chat2", func(time.Time) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append to an unrelated chat should not block")
	}
}
