package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
)

func voiceNoteFixture(t *testing.T) (VoiceNoteService, *fakeVoiceNoteRepo, *fakeBlobStore) {
	t.Helper()

	planRepo := newFakePlanRepo()
	planRepo.plans["p1"] = &models.Plan{ID: "p1", UserID: "alice"}

	notes := newFakeVoiceNoteRepo()
	notes.rows["n1"] = &models.VoiceNote{ID: "n1", PlanID: "p1", StoragePath: "p1/123.wav"}

	blobs := newFakeBlobStore()
	blobs.uploads["p1/123.wav"] = []byte("audio")

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewVoiceNoteService(notes, NewPlanService(planRepo, nil), blobs, log), notes, blobs
}

func TestVoiceNoteRemove(t *testing.T) {
	svc, notes, blobs := voiceNoteFixture(t)

	if err := svc.Remove(context.Background(), "alice", "n1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := notes.GetByID(context.Background(), "n1"); err == nil {
		t.Error("row should be gone")
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "p1/123.wav" {
		t.Errorf("blob should be deleted, got %v", blobs.deleted)
	}
}

func TestVoiceNoteRemoveChecksOwnership(t *testing.T) {
	svc, notes, blobs := voiceNoteFixture(t)

	if err := svc.Remove(context.Background(), "bob", "n1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if _, err := notes.GetByID(context.Background(), "n1"); err != nil {
		t.Error("row should survive a rejected delete")
	}
	if len(blobs.deleted) != 0 {
		t.Error("blob should survive a rejected delete")
	}
}

func TestVoiceNoteSignedURL(t *testing.T) {
	svc, _, _ := voiceNoteFixture(t)

	url, err := svc.SignedURL(context.Background(), "alice", "n1", 0)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}
	if !strings.Contains(url, "p1/123.wav") {
		t.Errorf("url should reference the stored object, got %q", url)
	}

	if _, err := svc.SignedURL(context.Background(), "alice", "missing", 0); err == nil {
		t.Error("missing note should fail")
	}
}
