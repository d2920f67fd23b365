// Package convert turns fetched documents (HTML, PDF, plain text) into the
// markdown-flavoured text the browser pages through.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	// ErrUnsupportedFormat means no converter handles the document type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrConversion means a converter accepted the document but failed to read it.
	ErrConversion = errors.New("document conversion failed")
)

// Document is the result of a conversion.
type Document struct {
	Title string
	Text  string
}

// Converter dispatches documents to a format-specific converter by extension
// or content type.
type Converter struct {
	html *HTMLConverter
	pdf  *PDFConverter
}

// New returns a Converter with the built-in HTML, PDF and text converters.
func New() *Converter {
	return &Converter{
		html: &HTMLConverter{},
		pdf:  &PDFConverter{},
	}
}

type format int

const (
	formatUnknown format = iota
	formatHTML
	formatPDF
	formatText
)

var extensionFormats = map[string]format{
	".html":     formatHTML,
	".htm":      formatHTML,
	".xhtml":    formatHTML,
	".pdf":      formatPDF,
	".txt":      formatText,
	".text":     formatText,
	".md":       formatText,
	".markdown": formatText,
	".csv":      formatText,
	".tsv":      formatText,
	".json":     formatText,
	".xml":      formatText,
	".log":      formatText,
}

func formatForContentType(contentType string) format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return formatHTML
	case mediaType == "application/pdf":
		return formatPDF
	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/json", mediaType == "application/xml":
		return formatText
	default:
		return formatUnknown
	}
}

// ConvertLocal converts a file on disk, by extension or else by sniffing its
// first bytes. A missing file yields an error satisfying
// errors.Is(err, fs.ErrNotExist).
func (c *Converter) ConvertLocal(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	fm, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		// Downloads are often named after an extensionless URL path.
		sniffed := http.DetectContentType(data)
		if fm = formatForContentType(sniffed); fm == formatUnknown {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filepath.Base(path), sniffed)
		}
	}
	return c.convert(fm, data, "")
}

// ConvertResponse converts a response body using its Content-Type header.
// The body is decoded to UTF-8 according to the declared or sniffed charset.
func (c *Converter) ConvertResponse(body io.Reader, contentType string) (*Document, error) {
	fm := formatForContentType(contentType)
	if fm == formatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	if fm == formatPDF {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return c.pdf.Convert(data)
	}

	decoded, err := charset.NewReader(body, contentType)
	if err != nil {
		decoded = body
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return c.convert(fm, data, contentType)
}

func (c *Converter) convert(fm format, data []byte, contentType string) (*Document, error) {
	switch fm {
	case formatHTML:
		return c.html.Convert(bytes.NewReader(data))
	case formatPDF:
		return c.pdf.Convert(data)
	case formatText:
		return convertText(data), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
}

func convertText(data []byte) *Document {
	text := strings.ToValidUTF8(string(data), "�")
	return &Document{Text: strings.ReplaceAll(text, "\r\n", "\n")}
}
