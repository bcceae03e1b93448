package collab

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrUnavailable and ErrTimeout are the two failure modes §6 allows the
// Retriever-Generator to surface.
var (
	ErrUnavailable = errors.New("collab: retriever-generator unavailable")
	ErrTimeout     = errors.New("collab: retriever-generator timed out")
)

// CorpusIndex is the Meilisearch index holding the educational corpus the
// widget answers questions over.
const CorpusIndex = "corpus"

// MeiliRetriever is the retrieval leg of the Retriever-Generator
// collaborator: it resolves `query` to ranked corpus passages via
// Meilisearch, grounded on the teacher's third_party/search.MeiliSearchClient
// connect-then-health-check pattern. Answer generation itself (the LLM call)
// is deliberately out of scope (§1); MeiliRetriever composes a templated
// answer from the top passage so the contract in §4.8 still has a concrete,
// wired implementation rather than a bare interface nobody exercises.
type MeiliRetriever struct {
	client meilisearch.ServiceManager
}

// NewMeiliRetriever connects to Meilisearch and verifies reachability via a
// health check before returning, the same fail-fast shape the teacher's
// third_party connection helpers use for Postgres and Redis.
func NewMeiliRetriever(host, masterKey string) (*MeiliRetriever, error) {
	client := meilisearch.New(host, meilisearch.WithAPIKey(masterKey))

	if _, err := client.Health(); err != nil {
		logx.Errorf("Failed to connect to Meilisearch: %v", err)
		return nil, fmt.Errorf("collab: connect meilisearch: %w", err)
	}

	logx.Info("collab: connected to Meilisearch")
	return &MeiliRetriever{client: client}, nil
}

func (m *MeiliRetriever) Generate(ctx context.Context, query, mode, selectedText, tier, requestID string) (GenerateResult, error) {
	start := time.Now()

	if deadline, ok := ctx.Deadline(); ok && time.Now().After(deadline) {
		return GenerateResult{}, ErrTimeout
	}

	result, err := m.client.Index(CorpusIndex).Search(query, &meilisearch.SearchRequest{Limit: 5})
	if err != nil {
		if ctx.Err() != nil {
			return GenerateResult{}, ErrTimeout
		}
		logx.Errorf("collab: meilisearch search failed: %v", err)
		return GenerateResult{}, ErrUnavailable
	}
	retrievalTime := time.Since(start)

	sources := make([]Source, 0, len(result.Hits))
	for i, hit := range result.Hits {
		doc, ok := hit.(map[string]any)
		if !ok {
			continue
		}
		sources = append(sources, Source{
			ID:      stringField(doc, "id"),
			Title:   stringField(doc, "title"),
			URL:     stringField(doc, "url"),
			Excerpt: stringField(doc, "excerpt"),
			Score:   1.0 / float64(i+1),
		})
	}

	genStart := time.Now()
	answer := "No matching passage was found for this question."
	if len(sources) > 0 {
		answer = fmt.Sprintf("Based on %q: %s", sources[0].Title, sources[0].Excerpt)
	}
	generationTime := time.Since(genStart)

	return GenerateResult{
		Answer:  answer,
		Sources: sources,
		Metadata: GenerationMetadata{
			Model:            "corpus-extractive-v1",
			TokensUsed:       len(answer) / 4,
			RetrievalTimeMs:  retrievalTime.Milliseconds(),
			GenerationTimeMs: generationTime.Milliseconds(),
			TotalTimeMs:      time.Since(start).Milliseconds(),
		},
	}, nil
}

func stringField(doc map[string]any, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
