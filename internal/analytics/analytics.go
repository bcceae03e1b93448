// Package analytics implements the Analytics Ingest component (§4.9): an
// append-only event sink that accepts bounded-size events from both
// authenticated and anonymous callers.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/clock"
	"github.com/assadsharif/chatkit-core/internal/store"
)

// MaxPayloadBytes is the body-size cap §4.9 imposes on event payloads.
const MaxPayloadBytes = 4 * 1024

// allowedEventTypes is the enumerated set §4.9 requires; unlisted values
// are rejected rather than silently accepted, so the event stream stays a
// closed, analyzable vocabulary.
var allowedEventTypes = map[string]bool{
	"page_view":          true,
	"widget_opened":      true,
	"widget_closed":      true,
	"message_sent":       true,
	"source_clicked":     true,
	"personalize_viewed": true,
}

var ErrInvalidEventType = errors.New("analytics: invalid event_type")
var ErrPayloadTooLarge = errors.New("analytics: event_data too large")
var ErrUnavailable = errors.New("analytics: store unavailable")

// Service appends validated events to the Store.
type Service struct {
	store store.Store
	clock clock.Clock
	ids   clock.IDSource
}

func New(s store.Store, c clock.Clock, ids clock.IDSource) *Service {
	return &Service{store: s, clock: c, ids: ids}
}

// Record validates and appends one event, optionally associated with a
// user id and/or session/anon token.
func (s *Service) Record(ctx context.Context, userID, sessionToken, eventType string, eventData map[string]any) (store.AnalyticsEvent, error) {
	if !allowedEventTypes[eventType] {
		return store.AnalyticsEvent{}, ErrInvalidEventType
	}

	payload, err := json.Marshal(eventData)
	if err != nil {
		return store.AnalyticsEvent{}, fmt.Errorf("analytics: encode event_data: %w", err)
	}
	if len(payload) > MaxPayloadBytes {
		return store.AnalyticsEvent{}, ErrPayloadTooLarge
	}

	id := s.ids.NewUUID()
	now := s.clock.Now()
	event := store.AnalyticsEvent{
		ID:        id,
		EventType: eventType,
		Payload:   payload,
		Timestamp: now,
	}
	if userID != "" {
		event.UserID = &userID
	}
	if sessionToken != "" {
		event.Session = &sessionToken
	}

	if err := s.store.AppendEvent(ctx, event); err != nil {
		logx.WithContext(ctx).Errorw("append analytics event failed", logx.Field("error", err.Error()))
		return store.AnalyticsEvent{}, ErrUnavailable
	}
	return event, nil
}
