package service

import (
	"testing"

	"github.com/ssaritan18/clubchat/internal/domain"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		in      SendMessageInput
		wantErr bool
	}{
		{
			name: "text ok",
			in:   SendMessageInput{Type: domain.MessageText, Text: "hi"},
		},
		{
			name:    "text empty",
			in:      SendMessageInput{Type: domain.MessageText, Text: ""},
			wantErr: true,
		},
		{
			name:    "text whitespace only",
			in:      SendMessageInput{Type: domain.MessageText, Text: "   \t "},
			wantErr: true,
		},
		{
			name: "voice ok",
			in:   SendMessageInput{Type: domain.MessageVoice, VoiceURL: "https://cdn/x.ogg", DurationMs: 1200},
		},
		{
			name:    "voice missing url",
			in:      SendMessageInput{Type: domain.MessageVoice, DurationMs: 1200},
			wantErr: true,
		},
		{
			name:    "voice zero duration",
			in:      SendMessageInput{Type: domain.MessageVoice, VoiceURL: "https://cdn/x.ogg"},
			wantErr: true,
		},
		{
			name: "media ok",
			in:   SendMessageInput{Type: domain.MessageMedia, MediaURL: "https://cdn/p.jpg"},
		},
		{
			name:    "media missing url",
			in:      SendMessageInput{Type: domain.MessageMedia},
			wantErr: true,
		},
		{
			name:    "unknown type",
			in:      SendMessageInput{Type: "sticker"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePayload(&tt.in)
			if tt.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
