package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestDirectChatIDSymmetric(t *testing.T) {
	a := DirectChatID("user-a", "user-b")
	b := DirectChatID("user-b", "user-a")

	if a != b {
		t.Fatalf("direct chat id must be symmetric: %s != %s", a, b)
	}
}

func TestDirectChatIDDeterministic(t *testing.T) {
	first := DirectChatID("user-a", "user-b")
	second := DirectChatID("user-a", "user-b")

	if first != second {
		t.Fatalf("direct chat id must be stable: %s != %s", first, second)
	}
}

func TestDirectChatIDDistinctPairs(t *testing.T) {
	ab := DirectChatID("user-a", "user-b")
	ac := DirectChatID("user-a", "user-c")

	if ab == ac {
		t.Fatal("different pairs must not collide")
	}
}

func TestDirectChatIDIsUUID(t *testing.T) {
	id := DirectChatID("user-a", "user-b")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("direct chat id should be uuid-shaped: %v", err)
	}
}
