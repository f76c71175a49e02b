package dashboard

import (
	"iter"
	"strings"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

// Project returns the articles whose title or description contains searchText,
// ignoring case. A blank search passes everything through in order.
func Project(all []domain.Article, searchText string) []domain.Article {
	out := make([]domain.Article, 0, len(all))
	for a := range ProjectSeq(all, searchText) {
		out = append(out, a)
	}
	return out
}

// ProjectSeq is the lazy form of Project. Each iteration recomputes the match.
func ProjectSeq(all []domain.Article, searchText string) iter.Seq[domain.Article] {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	return func(yield func(domain.Article) bool) {
		for _, a := range all {
			if !matches(a, needle) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

func matches(a domain.Article, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle)
}
