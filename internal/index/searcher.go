// Package index ranks grant passages against a query embedding.
package index

import (
	"context"
	"math"
	"sort"

	"github.com/spec-kit/grant-notifier/internal/domain"
)

// CorpusLister provides the embedded grant corpus.
type CorpusLister interface {
	ListEmbedded(ctx context.Context) ([]*domain.Grant, error)
}

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Passage is one retrieved grant text with its similarity score.
type Passage struct {
	Text       string
	BDNSCode   string
	Similarity float64
}

// Searcher performs nearest-neighbor retrieval over the grant corpus.
// The corpus is small (hundreds of announcements), so a full scan with
// cosine similarity is computed in process on every query.
type Searcher struct {
	corpus   CorpusLister
	embedder Embedder
}

// NewSearcher constructs the searcher.
func NewSearcher(corpus CorpusLister, embedder Embedder) *Searcher {
	return &Searcher{corpus: corpus, embedder: embedder}
}

// Search returns the topK most similar passages for the query.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = 5
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	grants, err := s.corpus.ListEmbedded(ctx)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(grants))
	for _, g := range grants {
		if len(g.Embedding) == 0 {
			continue
		}
		passages = append(passages, Passage{
			Text:       g.IndexText(),
			BDNSCode:   g.BDNSCode,
			Similarity: CosineSimilarity(queryVec, g.Embedding),
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Similarity > passages[j].Similarity
	})

	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
