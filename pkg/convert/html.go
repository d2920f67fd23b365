package convert

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// HTMLConverter renders HTML as markdown-flavoured plain text: headings,
// links, list items and table rows are kept; scripts, styles and embedded
// objects are dropped.
type HTMLConverter struct{}

// Convert parses r and returns the page title and body text.
func (h *HTMLConverter) Convert(r io.Reader) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", ErrConversion, err)
	}

	w := &mdWriter{}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	w.node(body)

	return &Document{
		Title: extractTitle(doc),
		Text:  w.String(),
	}, nil
}

type mdWriter struct {
	b   strings.Builder
	pre int
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v\r\n]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	trailingWS = regexp.MustCompile(`[ \t]+\n`)
)

func (w *mdWriter) String() string {
	out := trailingWS.ReplaceAllString(w.b.String(), "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// breakLine ensures the output ends with at least n newlines.
func (w *mdWriter) breakLine(n int) {
	s := w.b.String()
	if s == "" {
		return
	}
	have := len(s) - len(strings.TrimRight(s, "\n"))
	for ; have < n; have++ {
		w.b.WriteByte('\n')
	}
}

func (w *mdWriter) text(s string) {
	if w.pre > 0 {
		w.b.WriteString(s)
		return
	}
	s = spaceRun.ReplaceAllString(s, " ")
	if s == " " || s == "" {
		cur := w.b.String()
		if cur != "" && !strings.HasSuffix(cur, " ") && !strings.HasSuffix(cur, "\n") {
			w.b.WriteByte(' ')
		}
		return
	}
	cur := w.b.String()
	if strings.HasPrefix(s, " ") && (cur == "" || strings.HasSuffix(cur, " ") || strings.HasSuffix(cur, "\n")) {
		s = s[1:]
	}
	w.b.WriteString(s)
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *mdWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	tag := strings.ToLower(n.Data)
	if isSkippedElement(tag) {
		return
	}

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.breakLine(2)
		w.b.WriteString(strings.Repeat("#", int(tag[1]-'0')) + " ")
		w.b.WriteString(inlineText(n))
		w.breakLine(2)
	case "br":
		w.b.WriteByte('\n')
	case "hr":
		w.breakLine(2)
		w.b.WriteString("---")
		w.breakLine(2)
	case "li":
		w.breakLine(1)
		w.b.WriteString("* ")
		w.children(n)
		w.breakLine(1)
	case "a":
		w.link(n)
	case "strong", "b":
		if t := inlineText(n); t != "" {
			w.text(" ")
			w.b.WriteString("**" + t + "**")
		}
	case "tr":
		w.breakLine(1)
		w.row(n)
		w.breakLine(1)
	case "pre":
		w.breakLine(2)
		w.b.WriteString("```\n")
		w.pre++
		w.children(n)
		w.pre--
		w.breakLine(1)
		w.b.WriteString("```")
		w.breakLine(2)
	default:
		if isBlockElement(tag) {
			w.breakLine(2)
			w.children(n)
			w.breakLine(2)
			return
		}
		w.children(n)
	}
}

func (w *mdWriter) link(n *html.Node) {
	href := attr(n, "href")
	label := inlineText(n)
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		w.text(label)
		return
	}
	if label == "" {
		return
	}
	w.text(" ")
	fmt.Fprintf(&w.b, "[%s](%s)", label, href)
}

func (w *mdWriter) row(n *html.Node) {
	var cells []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, inlineText(c))
		}
	}
	if len(cells) > 0 {
		w.b.WriteString("| " + strings.Join(cells, " | ") + " |")
	}
}

// inlineText flattens the text under n onto one line.
func inlineText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isSkippedElement(strings.ToLower(n.Data)) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
	"template": true,
	"head":     true,
	"img":      true,
	"picture":  true,
	"video":    true,
	"audio":    true,
	"canvas":   true,
}

func isSkippedElement(tagName string) bool {
	return skippedElements[tagName]
}

var blockElements = map[string]bool{
	"div":        true,
	"p":          true,
	"section":    true,
	"article":    true,
	"header":     true,
	"footer":     true,
	"nav":        true,
	"main":       true,
	"aside":      true,
	"ul":         true,
	"ol":         true,
	"table":      true,
	"form":       true,
	"fieldset":   true,
	"blockquote": true,
	"figure":     true,
	"dl":         true,
	"dt":         true,
	"dd":         true,
}

func isBlockElement(tagName string) bool {
	return blockElements[tagName]
}

// extractTitle returns the text of the first <title> element.
func extractTitle(doc *html.Node) string {
	if t := findElement(doc, "title"); t != nil && t.FirstChild != nil && t.FirstChild.Type == html.TextNode {
		return strings.TrimSpace(spaceRun.ReplaceAllString(t.FirstChild.Data, " "))
	}
	return ""
}
