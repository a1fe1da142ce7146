package service

import (
	"context"
	"errors"
	"testing"
)

// A connection without a presence baseline is useless to the peer, so
// a failed snapshot must close it before it becomes discoverable.
func TestSnapshotFailureClosesConnection(t *testing.T) {
	h := NewHub()
	resolver := &fakeFriends{err: errors.New("friend lookup failed")}
	router := NewRouter(h, &fakeMembers{}, resolver)
	ps := NewPresenceService(h, router, resolver, newFakeMirror())
	rs := NewRealtimeService(ps)

	c := NewClient("u1", nil)
	rs.HandleConn(context.Background(), c)

	select {
	case <-c.done:
	default:
		t.Fatal("client should be shut down when the snapshot cannot be sent")
	}

	if h.IsOnline("u1") {
		t.Fatal("client must not be attached without a snapshot")
	}
	if c.Enqueue([]byte("{}")) {
		t.Fatal("enqueue on the closed client should fail")
	}
}
