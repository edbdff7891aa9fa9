package queue

import (
	"context"
	"testing"
)

func TestDecodeRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{"kind":"reindex","resumeId":1}`)); err == nil {
		t.Fatalf("expected unknown kind to be rejected")
	}
}

func TestDecodeParseRequest(t *testing.T) {
	payload, err := EncodeMessage(Message{
		Kind:        KindParseResume,
		ResumeID:    12,
		FileKey:     "owner/abc_cv.pdf",
		ContentType: "application/pdf",
		EnqueuedAt:  "2026-10-17T09:00:00Z",
		Version:     MessageVersion,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ResumeID != 12 || msg.FileKey != "owner/abc_cv.pdf" || msg.Kind != KindParseResume {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	_ = r.Send(context.Background(), Message{Kind: KindScoreMatch, MatchID: 1})
	_ = r.Send(context.Background(), Message{Kind: KindScoreMatch, MatchID: 2})
	sent := r.Sent()
	if len(sent) != 2 || sent[0].MatchID != 1 || sent[1].MatchID != 2 {
		t.Fatalf("unexpected recorded messages %+v", sent)
	}
}
