package policy

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTopK bounds every retrieval to a small, fixed result set.
const DefaultTopK = 4

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever performs bounded vector retrieval over the policy store.
type Retriever struct {
	repo       Repository
	embeddings Embedder
}

func NewRetriever(repo Repository, embeddings Embedder) *Retriever {
	return &Retriever{repo: repo, embeddings: embeddings}
}

// Retrieve embeds the query and returns the top-k nearest chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty retrieval query")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := r.embeddings.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return r.repo.SearchSimilar(ctx, vec, topK)
}

// RetrieveMany runs one bounded retrieval per query and merges the
// results, dropping chunks whose content was already seen.
func (r *Retriever) RetrieveMany(ctx context.Context, queries []string, topK int) ([]Chunk, error) {
	var merged []Chunk
	seen := make(map[string]bool)

	for _, q := range queries {
		chunks, err := r.Retrieve(ctx, q, topK)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			if seen[c.Content] {
				continue
			}
			seen[c.Content] = true
			merged = append(merged, c)
		}
	}

	return merged, nil
}

// Serialize renders chunks as context text for a model prompt.
func Serialize(chunks []Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		source := c.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("Source: %s\n\nContent: %s", source, c.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
