package service

import "testing"

func TestHubAttachDetachTransitions(t *testing.T) {
	h := NewHub()

	c1 := NewClient("u1", nil)
	c2 := NewClient("u1", nil)

	if first := h.Attach(c1); !first {
		t.Fatal("first attach should report first=true")
	}
	if first := h.Attach(c2); first {
		t.Fatal("second attach should report first=false")
	}

	if !h.IsOnline("u1") {
		t.Fatal("u1 should be online with two connections")
	}

	if last := h.Detach(c1); last {
		t.Fatal("detach with a remaining connection should report last=false")
	}
	if !h.IsOnline("u1") {
		t.Fatal("u1 should still be online")
	}

	if last := h.Detach(c2); !last {
		t.Fatal("final detach should report last=true")
	}
	if h.IsOnline("u1") {
		t.Fatal("u1 should be offline after last detach")
	}
}

func TestHubDetachIdempotent(t *testing.T) {
	h := NewHub()
	c := NewClient("u1", nil)

	h.Attach(c)
	if last := h.Detach(c); !last {
		t.Fatal("first detach should report last=true")
	}
	if last := h.Detach(c); last {
		t.Fatal("repeated detach should report last=false")
	}
}

func TestHubForUserSnapshot(t *testing.T) {
	h := NewHub()

	c1 := NewClient("u1", nil)
	c2 := NewClient("u1", nil)
	other := NewClient("u2", nil)

	h.Attach(c1)
	h.Attach(c2)
	h.Attach(other)

	snapshot := h.ForUser("u1")
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 connections for u1, got %d", len(snapshot))
	}

	// detaching after the snapshot must not invalidate it
	h.Detach(c1)
	if len(snapshot) != 2 {
		t.Fatal("snapshot should be unaffected by later detaches")
	}

	if got := h.ForUser("missing"); len(got) != 0 {
		t.Fatalf("expected no connections for unknown user, got %d", len(got))
	}
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub()

	c1 := NewClient("u1", nil)
	c2 := NewClient("u2", nil)
	h.Attach(c1)
	h.Attach(c2)

	h.CloseAll()

	if h.IsOnline("u1") || h.IsOnline("u2") {
		t.Fatal("no user should be online after CloseAll")
	}
	if c1.Enqueue([]byte("x")) {
		t.Fatal("enqueue on a closed client should fail")
	}
}
