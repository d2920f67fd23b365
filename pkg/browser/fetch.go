package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"strings"
)

// Outcome is the result of fetching an address: one of TextPage,
// Downloaded, NotFound, DownloadComplete or UpstreamError.
type Outcome interface {
	isOutcome()
}

// TextPage is converted text ready to display.
type TextPage struct {
	Title string
	Text  string
}

// Downloaded is a binary body saved to disk; the browser visits it next.
type Downloaded struct {
	Path string
}

// NotFound is a local path that does not exist.
type NotFound struct {
	Path string
}

// DownloadComplete is a saved file no converter understands.
type DownloadComplete struct {
	Path string
}

// UpstreamError is a failed request. Status is 0 when there was no response.
type UpstreamError struct {
	Status      int
	ContentType string
	Body        []byte
	Err         error
}

func (TextPage) isOutcome()         {}
func (Downloaded) isOutcome()       {}
func (NotFound) isOutcome()         {}
func (DownloadComplete) isOutcome() {}
func (UpstreamError) isOutcome()    {}

func (b *TextBrowser) fetch(ctx context.Context, address string) Outcome {
	if strings.HasPrefix(address, "file://") {
		return b.fetchLocal(localPath(address))
	}
	return b.fetchRemote(ctx, address)
}

func (b *TextBrowser) fetchLocal(path string) Outcome {
	doc, err := b.converter.ConvertLocal(path)
	switch {
	case err == nil:
		return TextPage{Title: doc.Title, Text: doc.Text}
	case errors.Is(err, fs.ErrNotExist):
		return NotFound{Path: path}
	default:
		browserLog.Debugf("no converter for %s: %v", path, err)
		return DownloadComplete{Path: path}
	}
}

func (b *TextBrowser) fetchRemote(ctx context.Context, address string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return UpstreamError{Err: err}
	}
	if b.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", b.cfg.UserAgent)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		browserLog.Warnf("fetch %s failed: %v", address, err)
		return UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return UpstreamError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Body:        body,
			Err:         fmt.Errorf("%s", resp.Status),
		}
	}

	if b.isText(contentType) {
		doc, err := b.converter.ConvertResponse(resp.Body, contentType)
		if err != nil {
			return UpstreamError{Status: resp.StatusCode, Err: err}
		}
		return TextPage{Title: doc.Title, Text: doc.Text}
	}

	path, err := b.download(address, contentType, resp.Body)
	if err != nil {
		return UpstreamError{Status: resp.StatusCode, Err: err}
	}
	return Downloaded{Path: path}
}

func (b *TextBrowser) isText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	for _, g := range b.textTypes {
		if g.Match(mediaType) {
			return true
		}
	}
	return false
}

// apply installs the page content for a fetch outcome.
func (b *TextBrowser) apply(ctx context.Context, o Outcome) error {
	switch o := o.(type) {
	case TextPage:
		b.title = o.Title
		b.setContent(o.Text)
	case Downloaded:
		return b.setAddress(ctx, fileURI(o.Path), 0)
	case NotFound:
		b.title = "Error 404"
		b.setContent("## Error 404\n\nFile not found: " + o.Path)
	case DownloadComplete:
		b.title = "Download complete."
		b.setContent(fmt.Sprintf("# Download complete\n\nSaved file to '%s'", o.Path))
	case UpstreamError:
		b.applyError(o)
	default:
		return fmt.Errorf("unhandled fetch outcome %T", o)
	}
	return nil
}

func (b *TextBrowser) applyError(e UpstreamError) {
	if e.Status == 0 {
		b.title = "Error"
		b.setContent(fmt.Sprintf("## Error\n\n%v", e.Err))
		return
	}

	b.title = fmt.Sprintf("Error %d", e.Status)
	text := string(e.Body)
	if e.Body == nil && e.Err != nil {
		text = e.Err.Error()
	}
	if strings.Contains(strings.ToLower(e.ContentType), "text/html") {
		if doc, err := b.converter.ConvertResponse(strings.NewReader(text), e.ContentType); err == nil {
			text = doc.Text
		}
	}
	b.setContent(fmt.Sprintf("## Error %d\n\n%s", e.Status, text))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
