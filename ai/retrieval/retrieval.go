// Package retrieval implements ranked passage retrieval with a degrading
// tier strategy. The passage store's vector typing may be inconsistent or
// partially migrated, so ranking falls back from native vector distance to
// a query-time cast and finally to a plain substring match instead of
// erroring out.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rogally/allychat/ai"
	"github.com/rogally/allychat/internal/metrics"
	"github.com/rogally/allychat/store"
)

// Tier names, in the order they are attempted.
const (
	TierVectorNative = "vector_native"
	TierVectorCast   = "vector_cast"
	TierTextMatch    = "text_match"
)

// DefaultTextMatchScore is the sentinel similarity assigned by the textual
// fallback tier. It signals "no real ranking available", not a probability.
const DefaultTextMatchScore = 0.5

// PassageStore is the subset of the store the retriever queries.
type PassageStore interface {
	VectorSearchPassages(ctx context.Context, find *store.FindSimilarPassages) ([]*store.RetrievedPassage, error)
	VectorSearchPassagesCast(ctx context.Context, find *store.FindSimilarPassages) ([]*store.RetrievedPassage, error)
	TextSearchPassages(ctx context.Context, find *store.FindPassagesByText) ([]*store.RetrievedPassage, error)
}

// Options configures a Retriever.
type Options struct {
	// TextMatchScore overrides DefaultTextMatchScore when non-zero.
	TextMatchScore float64

	// Metrics counts tier fallbacks when set.
	Metrics *metrics.Exporter

	Logger *slog.Logger
}

// Retriever retrieves the passages most similar to a query.
type Retriever struct {
	store            PassageStore
	embeddingService ai.EmbeddingService
	textMatchScore   float64
	metrics          *metrics.Exporter
	logger           *slog.Logger
}

// NewRetriever creates a new Retriever.
func NewRetriever(st PassageStore, embeddingService ai.EmbeddingService, opts *Options) *Retriever {
	if opts == nil {
		opts = &Options{}
	}
	textMatchScore := opts.TextMatchScore
	if textMatchScore == 0 {
		textMatchScore = DefaultTextMatchScore
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:            st,
		embeddingService: embeddingService,
		textMatchScore:   textMatchScore,
		metrics:          opts.Metrics,
		logger:           logger,
	}
}

// tier is one retrieval strategy. Tiers are tried in sequence; the first
// one that succeeds wins, and exhaustion is a hard failure.
type tier struct {
	name    string
	attempt func(ctx context.Context) ([]*store.RetrievedPassage, error)
}

// Retrieve returns up to topK passages relevant to the query, ordered by
// descending similarity when a vector tier succeeds. An empty result is a
// valid outcome, not a failure, and does not advance to the next tier.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]*store.RetrievedPassage, error) {
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be >= 1, got %d", topK)
	}

	var lastErr error
	for _, t := range r.tiers(query, topK) {
		results, err := t.attempt(ctx)
		if err != nil {
			r.logger.WarnContext(ctx, "retrieval tier failed, falling back",
				"tier", t.name,
				"error", err,
			)
			r.metrics.CountTierFallback(t.name)
			lastErr = err
			continue
		}

		r.logger.DebugContext(ctx, "retrieval completed",
			"tier", t.name,
			"result_count", len(results),
		)
		return results, nil
	}

	return nil, fmt.Errorf("all retrieval tiers failed: %w", lastErr)
}

func (r *Retriever) tiers(query string, topK int) []tier {
	// Both vector tiers share one query vector; the embedding service is
	// invoked at most once per incoming query.
	var queryVector []float32
	var embedErr error
	embedded := false
	queryVectorOnce := func(ctx context.Context) ([]float32, error) {
		if !embedded {
			embedded = true
			queryVector, embedErr = r.embeddingService.Embed(ctx, query)
			if embedErr != nil {
				embedErr = fmt.Errorf("failed to embed query: %w", embedErr)
			}
		}
		return queryVector, embedErr
	}

	return []tier{
		{
			name: TierVectorNative,
			attempt: func(ctx context.Context) ([]*store.RetrievedPassage, error) {
				vector, err := queryVectorOnce(ctx)
				if err != nil {
					return nil, err
				}
				return r.store.VectorSearchPassages(ctx, &store.FindSimilarPassages{
					Vector: vector,
					Limit:  topK,
				})
			},
		},
		{
			name: TierVectorCast,
			attempt: func(ctx context.Context) ([]*store.RetrievedPassage, error) {
				vector, err := queryVectorOnce(ctx)
				if err != nil {
					return nil, err
				}
				return r.store.VectorSearchPassagesCast(ctx, &store.FindSimilarPassages{
					Vector: vector,
					Limit:  topK,
				})
			},
		},
		{
			name: TierTextMatch,
			attempt: func(ctx context.Context) ([]*store.RetrievedPassage, error) {
				return r.store.TextSearchPassages(ctx, &store.FindPassagesByText{
					Query: query,
					Score: r.textMatchScore,
					Limit: topK,
				})
			},
		},
	}
}
