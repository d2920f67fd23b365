package convert

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PDFConverter extracts the text drawn by each page's content stream.
// Pages are separated by a blank line.
type PDFConverter struct{}

// Convert reads a PDF held in memory.
func (p *PDFConverter) Convert(data []byte) (*Document, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PDF: %v", ErrConversion, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: invalid PDF: %v", ErrConversion, err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrConversion, pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrConversion, pageNr, err)
		}
		if text := strings.TrimSpace(TextFromContentStream(content)); text != "" {
			pages = append(pages, text)
		}
	}

	return &Document{Text: strings.Join(pages, "\n\n")}, nil
}

// TextFromContentStream interprets the text operators of a page content
// stream (Tj, TJ, ', ", T*, Td, TD, ET) and returns the strings they show.
// Strings are decoded as UTF-16BE when they carry a BOM and as Latin-1
// otherwise; font encodings and CMaps are not consulted.
func TextFromContentStream(content []byte) string {
	var (
		out      strings.Builder
		operands []operand
		lx       = &lexer{data: content}
	)

	newline := func() {
		s := out.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok.operand)
			continue
		}

		switch tok.op {
		case "Tj":
			if len(operands) > 0 {
				out.WriteString(operands[len(operands)-1].str)
			}
		case "'", "\"":
			newline()
			if len(operands) > 0 {
				out.WriteString(operands[len(operands)-1].str)
			}
		case "TJ":
			if len(operands) > 0 {
				for _, el := range operands[len(operands)-1].array {
					if el.isString {
						out.WriteString(el.str)
					} else if el.num < -200 {
						out.WriteByte(' ')
					}
				}
			}
		case "T*":
			newline()
		case "Td", "TD":
			if len(operands) >= 2 && operands[len(operands)-1].num != 0 {
				newline()
			} else if out.Len() > 0 {
				out.WriteByte(' ')
			}
		case "ET":
			newline()
		}
		operands = operands[:0]
	}
	return out.String()
}

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokOperator
)

type operand struct {
	isString bool
	str      string
	num      float64
	array    []operand
}

type token struct {
	kind    tokenKind
	op      string
	operand operand
}

type lexer struct {
	data []byte
	pos  int
}

func isPDFWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isPDFDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFWhite(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}

	switch c := l.data[l.pos]; {
	case c == '(':
		return token{kind: tokOperand, operand: operand{isString: true, str: l.literalString()}}, true
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.skipDict()
		return token{kind: tokOperand}, true
	case c == '<':
		return token{kind: tokOperand, operand: operand{isString: true, str: l.hexString()}}, true
	case c == '[':
		l.pos++
		return token{kind: tokOperand, operand: operand{array: l.array()}}, true
	case c == ']' || c == '>' || c == '{' || c == '}' || c == ')':
		l.pos++
		return l.next()
	case c == '/':
		l.pos++
		l.word()
		return token{kind: tokOperand}, true
	default:
		w := l.word()
		if n, err := strconv.ParseFloat(w, 64); err == nil {
			return token{kind: tokOperand, operand: operand{num: n}}, true
		}
		if w == "BI" {
			l.skipInlineImage()
			return l.next()
		}
		return token{kind: tokOperator, op: w}, true
	}
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhite(l.data[l.pos]) && !isPDFDelim(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) array() []operand {
	var items []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return items
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return items
		}
		tok, ok := l.next()
		if !ok {
			return items
		}
		if tok.kind == tokOperand {
			items = append(items, tok.operand)
		}
	}
}

func (l *lexer) literalString() string {
	l.pos++ // (
	var b []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					b = append(b, byte(v))
				} else {
					b = append(b, e)
				}
			}
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return decodePDFString(b)
			}
			b = append(b, c)
		default:
			b = append(b, c)
		}
	}
	return decodePDFString(b)
}

func (l *lexer) hexString() string {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFWhite(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	b := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		b = append(b, byte(v))
	}
	return decodePDFString(b)
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == '<' && l.data[l.pos+1] == '<' {
			depth++
			l.pos += 2
			continue
		}
		if l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func (l *lexer) skipInlineImage() {
	if i := bytes.Index(l.data[l.pos:], []byte("EI")); i >= 0 {
		l.pos += i + 2
		return
	}
	l.pos = len(l.data)
}

func decodePDFString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
