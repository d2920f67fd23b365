package convert

import "testing"

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "lines via Td",
			content: "BT /F1 12 Tf 72 712 Td (Milk 1L) Tj 0 -14 Td (EUR 1,29) Tj ET",
			want:    "Milk 1L\nEUR 1,29\n",
		},
		{
			name:    "TJ kerning and word gaps",
			content: "BT [(Hel) -10 (lo) -300 (World)] TJ ET",
			want:    "Hello World\n",
		},
		{
			name:    "hex string",
			content: "BT <48656C6C6F> Tj ET",
			want:    "Hello\n",
		},
		{
			name:    "escapes and nested parens",
			content: `BT (a\(b\) \(c\)) Tj ET`,
			want:    "a(b) (c)\n",
		},
		{
			name:    "octal escape latin1",
			content: `BT (K\344se) Tj ET`,
			want:    "Käse\n",
		},
		{
			name:    "T star and quote",
			content: "BT (one) Tj T* (two) Tj (three) ' ET",
			want:    "one\ntwo\nthree\n",
		},
		{
			name:    "graphics operators ignored",
			content: "q 1 0 0 1 0 0 cm /Im1 Do Q 0.5 g 10 10 100 100 re f",
			want:    "",
		},
		{
			name:    "utf16 string",
			content: "BT <FEFF00500072006500690073> Tj ET",
			want:    "Preis\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextFromContentStream([]byte(tt.content)); got != tt.want {
				t.Errorf("TextFromContentStream() = %q, want %q", got, tt.want)
			}
		})
	}
}
