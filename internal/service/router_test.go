package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ssaritan18/clubchat/internal/domain"
)

type fakeMembers struct {
	members map[string][]string
}

func (f *fakeMembers) GetMembers(_ context.Context, chatID string) ([]string, error) {
	return f.members[chatID], nil
}

type fakeFriends struct {
	friends map[string][]string
	err     error
}

func (f *fakeFriends) GetFriendIDs(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.friends[userID], nil
}

func drainOne(t *testing.T, c *Client) map[string]any {
	t.Helper()

	select {
	case data := <-c.send:
		var frame map[string]any
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("frame is not valid JSON: %v", err)
		}
		return frame
	default:
		t.Fatal("expected a queued frame")
		return nil
	}
}

func TestRouterSendToUserReachesAllConnections(t *testing.T) {
	h := NewHub()
	r := NewRouter(h, &fakeMembers{}, &fakeFriends{})

	c1 := NewClient("u1", nil)
	c2 := NewClient("u1", nil)
	h.Attach(c1)
	h.Attach(c2)

	r.SendToUser("u1", &PresenceUpdateEvent{
		Type:   domain.EventPresenceUpdate,
		UserID: "u2",
		Online: true,
	})

	for _, c := range []*Client{c1, c2} {
		frame := drainOne(t, c)
		if frame["type"] != string(domain.EventPresenceUpdate) {
			t.Fatalf("unexpected frame type %v", frame["type"])
		}
		if frame["user_id"] != "u2" || frame["online"] != true {
			t.Fatalf("unexpected payload %v", frame)
		}
	}
}

func TestRouterSendToChatExcludesSender(t *testing.T) {
	h := NewHub()
	members := &fakeMembers{members: map[string][]string{
		"chat1": {"u1", "u2", "u3"},
	}}
	r := NewRouter(h, members, &fakeFriends{})

	sender := NewClient("u1", nil)
	peer := NewClient("u2", nil)
	h.Attach(sender)
	h.Attach(peer)

	r.SendToChat(context.Background(), "chat1", &NewMessageEvent{
		Type:   domain.EventNewMessage,
		ChatID: "chat1",
		Message: &domain.Message{
			ID:     "m1",
			ChatID: "chat1",
		},
	}, "u1")

	frame := drainOne(t, peer)
	if frame["type"] != string(domain.EventNewMessage) {
		t.Fatalf("unexpected frame type %v", frame["type"])
	}
	msg, ok := frame["message"].(map[string]any)
	if !ok || msg["id"] != "m1" {
		t.Fatalf("unexpected message payload %v", frame["message"])
	}

	select {
	case <-sender.send:
		t.Fatal("sender must not receive its own broadcast")
	default:
	}
}

func TestRouterSendToFriends(t *testing.T) {
	h := NewHub()
	friends := &fakeFriends{friends: map[string][]string{
		"u1": {"u2", "u3"},
	}}
	r := NewRouter(h, &fakeMembers{}, friends)

	friend := NewClient("u2", nil)
	stranger := NewClient("u9", nil)
	h.Attach(friend)
	h.Attach(stranger)

	r.SendToFriends(context.Background(), "u1", &FriendsListUpdateEvent{
		Type: domain.EventFriendsListDirty,
	})

	frame := drainOne(t, friend)
	if frame["type"] != string(domain.EventFriendsListDirty) {
		t.Fatalf("unexpected frame type %v", frame["type"])
	}

	select {
	case <-stranger.send:
		t.Fatal("non-friend must not receive the event")
	default:
	}
}

func TestRouterShutsDownBackedUpPeer(t *testing.T) {
	h := NewHub()
	r := NewRouter(h, &fakeMembers{}, &fakeFriends{})

	c := NewClient("u1", nil)
	h.Attach(c)

	// fill the outbound queue so the next enqueue fails
	for i := 0; i < outboundBuffer; i++ {
		if !c.Enqueue([]byte("{}")) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}

	r.SendToUser("u1", &PongEvent{Type: domain.EventPong})

	select {
	case <-c.done:
	default:
		t.Fatal("backed-up client should have been shut down")
	}
}
