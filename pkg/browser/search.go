package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/priceiq/pkg/search"
)

const videoPlaceholder = "Your browser can't play this video."

func (b *TextBrowser) searchPage(ctx context.Context, query string, filterYear int) error {
	if b.searcher == nil {
		return search.ErrMissingCredential
	}

	results, err := b.searcher.Search(ctx, search.Query{Text: query, FilterYear: filterYear})
	if err != nil {
		if errors.Is(err, search.ErrNoResultsKey) {
			return fmt.Errorf("no results found for query: '%s'. Use a less specific query: %w", query, err)
		}
		return err
	}

	b.title = query + " - Search"
	if len(results) == 0 {
		yearFilter := ""
		if filterYear != 0 {
			yearFilter = fmt.Sprintf(" with filter year=%d", filterYear)
		}
		b.setContent(fmt.Sprintf("No results found for '%s'%s. Try with a more general query, or remove the year filter.", query, yearFilter))
		return nil
	}

	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, b.formatResult(i+1, r))
	}
	content := fmt.Sprintf("A Google search for '%s' found %d results:\n\n## Web Results\n", query, len(results)) +
		strings.Join(entries, "\n\n")
	b.setContent(content)
	return nil
}

func (b *TextBrowser) formatResult(n int, r search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. [%s](%s)", n, r.Title, r.Link)
	if r.Date != "" {
		sb.WriteString("\nDate published: " + r.Date)
	}
	if r.Source != "" {
		sb.WriteString("\nSource: " + r.Source)
	}
	sb.WriteString("\n")
	sb.WriteString(b.previousVisit(r.Link))
	if r.Snippet != "" {
		sb.WriteString("\n" + r.Snippet)
	}
	return strings.ReplaceAll(sb.String(), videoPlaceholder, "")
}

// previousVisit reports the most recent visit of address, including the
// search page being built.
func (b *TextBrowser) previousVisit(address string) string {
	for i := len(b.history) - 1; i >= 0; i-- {
		if b.history[i].address == address {
			return b.visitedAgo(b.history[i].at)
		}
	}
	return ""
}
