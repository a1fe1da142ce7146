package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ssaritan18/clubchat/internal/domain"
)

type fakeMirror struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{online: make(map[string]bool)}
}

func (f *fakeMirror) SetOnline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
	return nil
}

func (f *fakeMirror) SetOffline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.online, userID)
	return nil
}

func (f *fakeMirror) isOnline(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func newPresenceFixture(friends map[string][]string) (*Hub, *PresenceService, *fakeMirror) {
	h := NewHub()
	resolver := &fakeFriends{friends: friends}
	router := NewRouter(h, &fakeMembers{}, resolver)
	mirror := newFakeMirror()
	return h, NewPresenceService(h, router, resolver, mirror), mirror
}

func TestSendSnapshotIsFirstFrame(t *testing.T) {
	friends := map[string][]string{
		"u1": {"u2", "u3"},
	}
	h, ps, _ := newPresenceFixture(friends)

	// u2 already online, u3 offline
	online := NewClient("u2", nil)
	h.Attach(online)

	c := NewClient("u1", nil)
	if err := ps.SendSnapshot(context.Background(), c); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	frame := drainOne(t, c)
	if frame["type"] != string(domain.EventPresenceBulk) {
		t.Fatalf("first frame should be the bulk snapshot, got %v", frame["type"])
	}

	onlineMap, ok := frame["online"].(map[string]any)
	if !ok {
		t.Fatalf("snapshot has no online map: %v", frame)
	}
	if onlineMap["u2"] != true {
		t.Fatal("u2 should be online in the snapshot")
	}
	if onlineMap["u3"] != false {
		t.Fatal("u3 should be offline in the snapshot")
	}
}

func TestFirstAttachNotifiesFriends(t *testing.T) {
	friends := map[string][]string{
		"u1": {"u2"},
	}
	h, ps, mirror := newPresenceFixture(friends)

	friend := NewClient("u2", nil)
	h.Attach(friend)

	c := NewClient("u1", nil)
	ps.Attach(context.Background(), c)

	frame := drainOne(t, friend)
	if frame["type"] != string(domain.EventPresenceUpdate) {
		t.Fatalf("expected presence update, got %v", frame["type"])
	}
	if frame["user_id"] != "u1" || frame["online"] != true {
		t.Fatalf("unexpected payload %v", frame)
	}

	if !mirror.isOnline("u1") {
		t.Fatal("mirror should record u1 online")
	}
}

func TestSecondAttachIsSilent(t *testing.T) {
	friends := map[string][]string{
		"u1": {"u2"},
	}
	h, ps, _ := newPresenceFixture(friends)

	friend := NewClient("u2", nil)
	h.Attach(friend)

	c1 := NewClient("u1", nil)
	ps.Attach(context.Background(), c1)
	drainOne(t, friend)

	c2 := NewClient("u1", nil)
	ps.Attach(context.Background(), c2)

	select {
	case <-friend.send:
		t.Fatal("second attach must not emit a presence update")
	default:
	}
}

func TestLastDetachNotifiesFriends(t *testing.T) {
	friends := map[string][]string{
		"u1": {"u2"},
	}
	h, ps, mirror := newPresenceFixture(friends)

	friend := NewClient("u2", nil)
	h.Attach(friend)

	c1 := NewClient("u1", nil)
	c2 := NewClient("u1", nil)
	ps.Attach(context.Background(), c1)
	ps.Attach(context.Background(), c2)
	drainOne(t, friend)

	ps.Detach(context.Background(), c1)
	select {
	case <-friend.send:
		t.Fatal("non-final detach must not emit a presence update")
	default:
	}

	ps.Detach(context.Background(), c2)
	frame := drainOne(t, friend)
	if frame["user_id"] != "u1" || frame["online"] != false {
		t.Fatalf("expected offline update for u1, got %v", frame)
	}

	if mirror.isOnline("u1") {
		t.Fatal("mirror should have dropped u1")
	}
}

// A last-detach racing a first-attach for the same user must never
// leave friends with a final offline frame while the user is online.
func TestPresenceTransitionsSerializedPerUser(t *testing.T) {
	friends := map[string][]string{
		"u1": {"u2"},
	}

	for i := 0; i < 500; i++ {
		h, ps, _ := newPresenceFixture(friends)

		friend := NewClient("u2", nil)
		h.Attach(friend)

		c1 := NewClient("u1", nil)
		ps.Attach(context.Background(), c1)
		drainOne(t, friend)

		c2 := NewClient("u1", nil)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			ps.Detach(context.Background(), c1)
		}()
		go func() {
			defer wg.Done()
			ps.Attach(context.Background(), c2)
		}()
		wg.Wait()

		if !h.IsOnline("u1") {
			t.Fatalf("iteration %d: u1 must stay online, c2 is attached", i)
		}

		var frames []map[string]any
	drain:
		for {
			select {
			case data := <-friend.send:
				var frame map[string]any
				if err := json.Unmarshal(data, &frame); err != nil {
					t.Fatalf("frame is not valid JSON: %v", err)
				}
				frames = append(frames, frame)
			default:
				break drain
			}
		}

		// either the transitions canceled out silently, or the
		// offline/online pair arrived in transition order
		switch len(frames) {
		case 0:
		case 2:
			if frames[0]["online"] != false || frames[1]["online"] != true {
				t.Fatalf("iteration %d: updates out of transition order: %v", i, frames)
			}
		default:
			t.Fatalf("iteration %d: expected 0 or 2 updates, got %v", i, frames)
		}
	}
}
