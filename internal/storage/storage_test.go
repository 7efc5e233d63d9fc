package storage

import (
	"testing"
	"time"
)

func TestVoiceNoteObjectName(t *testing.T) {
	now := time.UnixMilli(1726000000000)
	got := VoiceNoteObjectName("plan-1", "audio/wav", now)
	want := "plan-1/1726000000000.wav"
	if got != want {
		t.Errorf("VoiceNoteObjectName = %q, want %q", got, want)
	}
}

func TestGuessExtension(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"audio/wav", ".wav"},
		{"audio/x-wav", ".wav"},
		{"audio/webm;codecs=opus", ".webm"},
		{"audio/ogg", ".ogg"},
		{"audio/mpeg", ".mp3"},
		{"audio/mp4", ".m4a"},
		{"audio/flac", ".flac"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}
	for _, tc := range cases {
		if got := guessExtension(tc.contentType); got != tc.want {
			t.Errorf("guessExtension(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}
