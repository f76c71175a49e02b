package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

func articles(prefix string, n int) []domain.Article {
	out := make([]domain.Article, 0, n)
	for i := range n {
		out = append(out, domain.Article{
			ID:    fmt.Sprintf("%s-%d", prefix, i),
			Title: fmt.Sprintf("%s headline %d", prefix, i),
		})
	}
	return out
}

func ids(list []domain.Article) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestAppendKeepsOrderAndLength(t *testing.T) {
	existing := articles("a", 10)
	incoming := articles("b", 4)

	got := Append(existing, incoming)

	require.Len(t, got, 14)
	require.Equal(t, append(ids(existing), ids(incoming)...), ids(got))
}

func TestAppendDoesNotAliasExisting(t *testing.T) {
	existing := make([]domain.Article, 2, 10)
	copy(existing, articles("a", 2))

	got := Append(existing, articles("b", 1))
	got[0].Title = "changed"

	require.Equal(t, "a headline 0", existing[0].Title)
	require.Len(t, existing, 2)
}

func TestAppendKeepsDuplicates(t *testing.T) {
	page := articles("a", 3)
	got := Append(page, page[:1])
	require.Equal(t, []string{"a-0", "a-1", "a-2", "a-0"}, ids(got))
}

func TestHasMoreOnlyForFullPage(t *testing.T) {
	for n := 0; n <= domain.PageSize; n++ {
		require.Equal(t, n == domain.PageSize, HasMore(n, domain.PageSize), "batch size %d", n)
	}
	require.False(t, HasMore(domain.PageSize+1, domain.PageSize))
}
