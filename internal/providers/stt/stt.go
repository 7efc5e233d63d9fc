package stt

import "context"

// Result is a finished transcription.
type Result struct {
	Text       string
	FramesSent int
	DurationMS int64
}

// Provider converts one uploaded audio blob into a transcript. onPartial, when
// non-nil, receives running-transcript updates as recognition progresses.
type Provider interface {
	Transcribe(ctx context.Context, blob []byte, contentType string, onPartial func(text string)) (Result, error)
}
