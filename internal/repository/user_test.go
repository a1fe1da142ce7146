package repository

import "testing"

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"%", `\%`},
		{"_", `\_`},
		{"a_b%c", `a\_b\%c`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeLikePattern(tt.in); got != tt.want {
			t.Fatalf("escapeLikePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
