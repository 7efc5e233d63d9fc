package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/providers/stt"
	"github.com/lvji-app/lvji/internal/utils"
)

type fakeSTT struct {
	result   stt.Result
	err      error
	partials []string
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _ string, onPartial func(string)) (stt.Result, error) {
	for _, p := range f.partials {
		if onPartial != nil {
			onPartial(p)
		}
	}
	return f.result, f.err
}

type fakeBlobStore struct {
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: map[string][]byte{}}
}

func (f *fakeBlobStore) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.uploads[objectName] = buf.Bytes()
	return objectName, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	f.deleted = append(f.deleted, objectName)
	delete(f.uploads, objectName)
	return nil
}

func (f *fakeBlobStore) SignedGetURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://signed.example/" + objectName, nil
}

type fakeVoiceNoteRepo struct {
	rows      map[string]*models.VoiceNote
	createErr error
}

func newFakeVoiceNoteRepo() *fakeVoiceNoteRepo {
	return &fakeVoiceNoteRepo{rows: map[string]*models.VoiceNote{}}
}

func (f *fakeVoiceNoteRepo) Create(_ context.Context, n *models.VoiceNote) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n.ID == "" {
		n.ID = "note-created"
	}
	f.rows[n.ID] = n
	return nil
}

func (f *fakeVoiceNoteRepo) GetByID(_ context.Context, id string) (*models.VoiceNote, error) {
	n, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return n, nil
}

func (f *fakeVoiceNoteRepo) ListByPlan(_ context.Context, planID string) ([]models.VoiceNote, error) {
	var out []models.VoiceNote
	for _, n := range f.rows {
		if n.PlanID == planID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeVoiceNoteRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeTranscriptionRepo struct {
	created   []*models.Transcription
	completed map[string]string // transcription_id -> transcript
	failed    map[string]string // transcription_id -> failure code
}

func newFakeTranscriptionRepo() *fakeTranscriptionRepo {
	return &fakeTranscriptionRepo{
		completed: map[string]string{},
		failed:    map[string]string{},
	}
}

func (f *fakeTranscriptionRepo) Create(_ context.Context, t *models.Transcription) error {
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTranscriptionRepo) GetByTranscriptionID(_ context.Context, id string) (*models.Transcription, error) {
	for _, t := range f.created {
		if t.TranscriptionID == id {
			return t, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeTranscriptionRepo) Complete(_ context.Context, id, transcript string, _ int, _ int64) error {
	f.completed[id] = transcript
	return nil
}

func (f *fakeTranscriptionRepo) Fail(_ context.Context, id, code string, _ int64) error {
	f.failed[id] = code
	return nil
}

func (f *fakeTranscriptionRepo) ListByPlan(_ context.Context, planID string, _ int) ([]models.Transcription, error) {
	var out []models.Transcription
	for _, t := range f.created {
		if t.PlanID == planID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type voiceFixture struct {
	svc    VoiceService
	stt    *fakeSTT
	blobs  *fakeBlobStore
	notes  *fakeVoiceNoteRepo
	audits *fakeTranscriptionRepo
}

func newVoiceFixture(t *testing.T, provider *fakeSTT) *voiceFixture {
	t.Helper()

	planRepo := newFakePlanRepo()
	planRepo.plans["p1"] = &models.Plan{ID: "p1", UserID: "alice", Currency: strptr("CNY")}

	blobs := newFakeBlobStore()
	notes := newFakeVoiceNoteRepo()
	audits := newFakeTranscriptionRepo()

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := NewVoiceService(
		NewPlanService(planRepo, nil),
		provider, blobs, notes, audits,
		nil, nil, log,
	)
	return &voiceFixture{svc: svc, stt: provider, blobs: blobs, notes: notes, audits: audits}
}

func TestTranscribeExpenseSuccess(t *testing.T) {
	fx := newVoiceFixture(t, &fakeSTT{
		result:   stt.Result{Text: "滴滴打车用微信支付了28元", FramesSent: 12, DurationMS: 840},
		partials: []string{"滴滴", "滴滴打车"},
	})

	out, err := fx.svc.TranscribeExpense(context.Background(), "alice", "p1", []byte("audio"), "audio/wav")
	if err != nil {
		t.Fatalf("TranscribeExpense failed: %v", err)
	}

	if out.Transcript != "滴滴打车用微信支付了28元" {
		t.Errorf("unexpected transcript %q", out.Transcript)
	}
	if out.Draft.Amount == nil || *out.Draft.Amount != 28 {
		t.Errorf("draft amount = %v, want 28", out.Draft.Amount)
	}
	if out.Draft.Category == nil || *out.Draft.Category != "交通" {
		t.Errorf("draft category = %v", out.Draft.Category)
	}
	if out.Draft.Method == nil || *out.Draft.Method != "移动支付" {
		t.Errorf("draft method = %v", out.Draft.Method)
	}
	if out.Draft.Source != models.ExpenseSourceVoice {
		t.Errorf("draft source = %q", out.Draft.Source)
	}

	if len(fx.blobs.uploads) != 1 {
		t.Errorf("expected 1 uploaded blob, got %d", len(fx.blobs.uploads))
	}
	note, err := fx.notes.GetByID(context.Background(), out.VoiceNoteID)
	if err != nil {
		t.Fatalf("voice note not saved: %v", err)
	}
	if note.Transcript == nil || *note.Transcript != out.Transcript {
		t.Error("voice note should carry the transcript")
	}
	if got := fx.audits.completed[out.TranscriptionID]; got != out.Transcript {
		t.Errorf("audit not completed, got %q", got)
	}
}

func TestTranscribeExpenseRecognitionFailure(t *testing.T) {
	sttErr := utils.E(utils.CodeTimeout, "speech.Session.Run", "no message within watchdog window", nil)
	fx := newVoiceFixture(t, &fakeSTT{err: sttErr})

	_, err := fx.svc.TranscribeExpense(context.Background(), "alice", "p1", []byte("audio"), "audio/wav")
	if !utils.IsCode(err, utils.CodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}

	if len(fx.audits.created) != 1 {
		t.Fatalf("audit row should exist, got %d", len(fx.audits.created))
	}
	id := fx.audits.created[0].TranscriptionID
	if fx.audits.failed[id] != string(utils.CodeTimeout) {
		t.Errorf("audit failure code = %q", fx.audits.failed[id])
	}
	if len(fx.blobs.uploads) != 0 {
		t.Error("no blob should be stored for a failed session")
	}
}

func TestTranscribeExpenseCleansUpOrphanedBlob(t *testing.T) {
	fx := newVoiceFixture(t, &fakeSTT{result: stt.Result{Text: "午饭30元"}})
	fx.notes.createErr = errors.New("insert failed")

	_, err := fx.svc.TranscribeExpense(context.Background(), "alice", "p1", []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected failure when the voice note insert fails")
	}
	if len(fx.blobs.deleted) != 1 {
		t.Errorf("uploaded blob should be deleted, deletions: %v", fx.blobs.deleted)
	}
	if len(fx.blobs.uploads) != 0 {
		t.Errorf("blob left behind: %v", fx.blobs.uploads)
	}
}

func TestTranscribeExpenseRejectsForeignPlan(t *testing.T) {
	fx := newVoiceFixture(t, &fakeSTT{result: stt.Result{Text: "x"}})

	_, err := fx.svc.TranscribeExpense(context.Background(), "bob", "p1", []byte("audio"), "audio/wav")
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if len(fx.audits.created) != 0 {
		t.Error("no audit row should be created before authorization")
	}
}

func TestTranscribeExpenseRequiresAudio(t *testing.T) {
	fx := newVoiceFixture(t, &fakeSTT{})

	_, err := fx.svc.TranscribeExpense(context.Background(), "alice", "p1", nil, "audio/wav")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}
