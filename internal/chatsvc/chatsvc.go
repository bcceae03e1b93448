// Package chatsvc implements the Chat / Save / Personalize handlers (§4.8):
// session-gated entry points that validate input, then hand off to the
// retrieval/generation and personalization collaborators. Grounded on the
// teacher's logic-layer shape (a service struct wrapping its dependencies,
// one method per operation) generalized from growth/habit CRUD to these
// three gated operations.
package chatsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/clock"
	"github.com/assadsharif/chatkit-core/internal/collab"
	"github.com/assadsharif/chatkit-core/internal/store"
)

var sessionIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

var validModes = map[string]bool{"browse": true, "chat": true}
var validTiers = map[string]bool{"anonymous": true, "lightweight": true, "full": true, "premium": true}

// ChatInput is the validated payload for Chat (§4.8's field bounds).
type ChatInput struct {
	Message      string
	Mode         string
	SelectedText string
	PageURL      string
	SessionID    string
	Tier         string
}

// Validate enforces §4.8's exact boundary conditions.
func (in ChatInput) Validate() error {
	if len(in.Message) > 2000 {
		return ErrMessageTooLong
	}
	if len(in.Message) == 0 {
		return ErrInvalidRequest
	}
	if !validModes[in.Mode] {
		return ErrInvalidRequest
	}
	if len(in.SelectedText) > 5000 {
		return ErrInvalidRequest
	}
	if !sessionIDPattern.MatchString(in.SessionID) {
		return ErrInvalidSessionID
	}
	if !validTiers[in.Tier] {
		return ErrInvalidRequest
	}
	return nil
}

// Message is one turn of a saved conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service wires the validated handlers to their collaborators.
type Service struct {
	store           store.Store
	clock           clock.Clock
	retriever       collab.RetrieverGenerator
	personalizer    collab.PersonalizationStrategy
	requestDeadline time.Duration
}

// New constructs a Service. requestDeadline is the 30s end-to-end budget §5
// imposes on the downstream collaborator call; clk is the seam Save's
// timestamp is drawn from, the same injected-Clock pattern auth.New and
// analytics.New use instead of a package-level mutable var.
func New(s store.Store, clk clock.Clock, retriever collab.RetrieverGenerator, personalizer collab.PersonalizationStrategy, requestDeadline time.Duration) *Service {
	return &Service{store: s, clock: clk, retriever: retriever, personalizer: personalizer, requestDeadline: requestDeadline}
}

// Chat validates in, then invokes the retrieval/generation collaborator
// under the request timeout (§4.8, §5).
func (s *Service) Chat(ctx context.Context, in ChatInput, requestID string) (collab.GenerateResult, error) {
	if err := in.Validate(); err != nil {
		return collab.GenerateResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestDeadline)
	defer cancel()

	result, err := s.retriever.Generate(ctx, in.Message, in.Mode, in.SelectedText, in.Tier, requestID)
	if err != nil {
		if errors.Is(err, collab.ErrTimeout) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return collab.GenerateResult{}, ErrRequestTimeout
		}
		logx.WithContext(ctx).Errorw("chat generation failed", logx.Field("error", err.Error()))
		return collab.GenerateResult{}, ErrServiceUnavailable
	}
	return result, nil
}

// Save serializes messages and stores them keyed to userID (§4.8). userID
// must already be authenticated by the caller; Save itself performs no
// auth check.
func (s *Service) Save(ctx context.Context, userID, title string, messages []Message) (store.SavedChat, error) {
	if len(messages) == 0 {
		return store.SavedChat{}, ErrInvalidRequest
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return store.SavedChat{}, fmt.Errorf("chatsvc: encode messages: %w", err)
	}

	saved, err := s.store.SaveChat(ctx, userID, title, payload, s.clock.Now())
	if err != nil {
		logx.WithContext(ctx).Errorw("save chat failed", logx.Field("error", err.Error()))
		return store.SavedChat{}, ErrServiceUnavailable
	}
	return saved, nil
}

// Personalize delegates to the injected strategy, which is treated as a
// pure function of the user and submitted preferences (§6, §9).
func (s *Service) Personalize(ctx context.Context, user collab.UserProfile, preferences map[string]any) (collab.PersonalizationResult, error) {
	result, err := s.personalizer.Recommend(ctx, user, preferences)
	if err != nil {
		logx.WithContext(ctx).Errorw("personalize failed", logx.Field("error", err.Error()))
		return collab.PersonalizationResult{}, ErrServiceUnavailable
	}
	return result, nil
}
