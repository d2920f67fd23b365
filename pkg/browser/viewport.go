package browser

// Range is a half-open byte range [Start, End) of the page content.
type Range struct {
	Start int
	End   int
}

func isSplitSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// Partition splits content into viewports of roughly size bytes. Each
// viewport is extended past size until the byte before its end is a space,
// tab, CR or LF, or the content ends, so words are never cut. The ranges are
// contiguous and cover the whole content; empty content yields [{0, 0}].
//
// Boundaries always follow an ASCII whitespace byte or sit at the end, so
// multi-byte UTF-8 sequences are never split.
func Partition(content string, size int) []Range {
	if len(content) == 0 {
		return []Range{{0, 0}}
	}
	if size < 1 {
		size = 1
	}

	var pages []Range
	for start := 0; start < len(content); {
		end := start + size
		if end > len(content) {
			end = len(content)
		}
		for end < len(content) && !isSplitSpace(content[end-1]) {
			end++
		}
		pages = append(pages, Range{Start: start, End: end})
		start = end
	}
	return pages
}
