package browser

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// preferredExtensions overrides mime.ExtensionsByType, whose first entry
// depends on the host's mime tables.
var preferredExtensions = map[string]string{
	"application/pdf":  ".pdf",
	"application/zip":  ".zip",
	"application/json": ".json",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"text/html":        ".html",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
}

// download writes body into the downloads directory and returns the saved
// path. The name comes from the URL path when usable, gains an extension
// from contentType when it has none, and is suffixed __N when taken.
// Otherwise it is a random name with an extension guessed from contentType.
func (b *TextBrowser) download(address, contentType string, body io.Reader) (string, error) {
	dir := b.cfg.DownloadsDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	target := b.downloadPath(dir, address, contentType)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to save download: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to save download: %w", err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return target, nil
	}
	browserLog.Infof("saved %s to %s", address, abs)
	return abs, nil
}

func (b *TextBrowser) downloadPath(dir, address, contentType string) string {
	if name := fileNameFromURL(address); name != "" {
		if filepath.Ext(name) == "" {
			name += knownExtension(contentType)
		}
		candidate := filepath.Join(dir, name)
		if !fileExists(candidate) {
			return candidate
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		maxProbe := b.cfg.MaxDownloadProbe
		if maxProbe <= 0 {
			maxProbe = 1000
		}
		for n := 1; n <= maxProbe; n++ {
			candidate = filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, n, ext))
			if !fileExists(candidate) {
				return candidate
			}
		}
	}
	return filepath.Join(dir, uuid.NewString()+guessExtension(contentType))
}

func fileNameFromURL(address string) string {
	u, err := url.Parse(address)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return sanitizeFileName(base)
}

// sanitizeFileName drops characters that are invalid in file names on
// common filesystems.
func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/:*?"<>|`, r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.Trim(cleaned, " .")
}

func guessExtension(contentType string) string {
	if ext := knownExtension(contentType); ext != "" {
		return ext
	}
	return ".download"
}

// knownExtension returns the extension for contentType, or "" when the
// type is unknown.
func knownExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func fileURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}

func localPath(uri string) string {
	p := strings.TrimPrefix(uri, "file://")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return filepath.Clean(filepath.FromSlash(p))
}
