package domain

import (
	"encoding/json"
	"testing"
	"time"
)

// Every producer path serializes the same Message struct, so checking
// the marshaled key set here covers the shape invariant for all of
// them.
func TestMessageEnvelopeShape(t *testing.T) {
	now := time.Now().UTC()
	msg := Message{
		ID:              "m1",
		ChatID:          "c1",
		AuthorID:        "u1",
		AuthorName:      "Alice",
		Type:            MessageText,
		Status:          StatusSent,
		Text:            "hi",
		CreatedAt:       now,
		ServerTimestamp: now,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{
		"id", "chat_id", "author_id", "author_name",
		"type", "status", "reactions", "created_at", "server_timestamp",
	} {
		if _, ok := frame[key]; !ok {
			t.Fatalf("envelope is missing key %q", key)
		}
	}

	reactions, ok := frame["reactions"].(map[string]any)
	if !ok {
		t.Fatalf("reactions is not an object: %v", frame["reactions"])
	}
	for _, kind := range []string{"like", "heart", "clap", "star"} {
		v, ok := reactions[kind]
		if !ok {
			t.Fatalf("reactions is missing counter %q", kind)
		}
		if v != float64(0) {
			t.Fatalf("fresh message should have zero %q counter, got %v", kind, v)
		}
	}
}

func TestReactionsCount(t *testing.T) {
	r := Reactions{Like: 1, Heart: 2, Clap: 3, Star: 4}

	tests := []struct {
		kind ReactionKind
		want int
	}{
		{ReactionLike, 1},
		{ReactionHeart, 2},
		{ReactionClap, 3},
		{ReactionStar, 4},
		{ReactionKind("nope"), 0},
	}

	for _, tt := range tests {
		if got := r.Count(tt.kind); got != tt.want {
			t.Fatalf("Count(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestValidReactionKind(t *testing.T) {
	for _, kind := range []ReactionKind{ReactionLike, ReactionHeart, ReactionClap, ReactionStar} {
		if !ValidReactionKind(kind) {
			t.Fatalf("%s should be valid", kind)
		}
	}
	if ValidReactionKind("thumbsdown") {
		t.Fatal("unknown kind should be invalid")
	}
}
