package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/assadsharif/chatkit-core/internal/clock"
	"github.com/assadsharif/chatkit-core/internal/store"
)

type recordingStore struct {
	store.Store
	events []store.AnalyticsEvent
}

func (r *recordingStore) AppendEvent(ctx context.Context, event store.AnalyticsEvent) error {
	r.events = append(r.events, event)
	return nil
}

func newTestService() (*Service, *recordingStore) {
	st := &recordingStore{}
	return New(st, clock.NewFake(time.Now()), &clock.SeqIDs{}), st
}

func TestRecord_RejectsUnknownEventType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Record(context.Background(), "", "", "not_a_real_event", nil)
	if err != ErrInvalidEventType {
		t.Errorf("expected ErrInvalidEventType, got %v", err)
	}
}

func TestRecord_RejectsOversizedPayload(t *testing.T) {
	svc, _ := newTestService()
	huge := map[string]any{"blob": strings.Repeat("x", MaxPayloadBytes+1)}
	_, err := svc.Record(context.Background(), "", "", "page_view", huge)
	if err != ErrPayloadTooLarge {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestRecord_AllowsAnonymousEvent(t *testing.T) {
	svc, st := newTestService()
	event, err := svc.Record(context.Background(), "", "anon-session-1", "widget_opened", map[string]any{"source": "homepage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.UserID != nil {
		t.Error("expected no user id on anonymous event")
	}
	if event.Session == nil || *event.Session != "anon-session-1" {
		t.Error("expected session to be recorded")
	}
	if len(st.events) != 1 {
		t.Errorf("expected 1 stored event, got %d", len(st.events))
	}
}
