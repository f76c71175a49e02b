package dashboard

import "github.com/samvad-hq/samvad-market-pulse/internal/domain"

// Append concatenates a fetched page onto the accumulated articles, existing first.
// The result never shares a backing array with existing.
func Append(existing, incoming []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	return append(out, incoming...)
}

// HasMore reports whether another page may exist after a batch of batchSize items.
func HasMore(batchSize, pageSize int) bool {
	return batchSize == pageSize
}
