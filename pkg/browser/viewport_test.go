package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name    string
		content string
		size    int
		want    []Range
	}{
		{"empty", "", 8, []Range{{0, 0}}},
		{"shorter than viewport", "hello", 8, []Range{{0, 5}}},
		{"extends to whitespace", "abc defgh ij", 5, []Range{{0, 10}, {10, 12}}},
		{"exact boundary on space", "abcd efgh", 5, []Range{{0, 5}, {5, 9}}},
		{"no whitespace", "abcdefghij", 3, []Range{{0, 10}}},
		{"newline boundary", "ab\ncd\nef", 2, []Range{{0, 3}, {3, 6}, {6, 8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.content, tt.size))
		})
	}
}

func TestPartitionCoversContent(t *testing.T) {
	content := strings.Repeat("Preis 1,29 € pro Liter\n", 500)
	pages := Partition(content, 100)

	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			assert.Equal(t, pages[i-1].End, p.Start)
		}
		sb.WriteString(content[p.Start:p.End])
	}
	assert.Equal(t, content, sb.String())
}
