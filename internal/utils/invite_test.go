package utils

import (
	"strings"
	"testing"
)

func TestGenerateInviteCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		if len(code) != InviteCodeLength {
			t.Fatalf("expected %d characters, got %q", InviteCodeLength, code)
		}

		for _, c := range code {
			if !strings.ContainsRune(inviteAlphabet, c) {
				t.Fatalf("code %q contains invalid character %q", code, c)
			}
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code %q is not uppercase", code)
		}
	}
}
