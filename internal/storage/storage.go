package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
)

// BlobStore is the contract for persisted voice-note audio. Objects are
// addressed by the name returned from Upload.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
	Delete(ctx context.Context, objectName string) error
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

// VoiceNoteObjectName builds the bucket path for a recorded clip. Blobs are
// grouped by plan so lifecycle rules can expire whole trips at once.
func VoiceNoteObjectName(planID string, contentType string, now time.Time) string {
	return fmt.Sprintf("%s/%d%s", planID, now.UnixMilli(), guessExtension(contentType))
}

func guessExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a", "audio/aac":
		return ".m4a"
	}
	if strings.HasPrefix(mediaType, "audio/") {
		if ext := strings.TrimPrefix(mediaType, "audio/"); ext != "" && !strings.Contains(ext, "/") {
			return "." + ext
		}
	}
	return ".bin"
}
