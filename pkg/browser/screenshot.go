package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/priceiq/pkg/render"
	"github.com/google/uuid"
)

// Screenshot is the result of rendering the current page. Failure is set
// instead of Path when the renderer could not be reached or timed out.
type Screenshot struct {
	Path      string
	Data      []byte
	ImageType string
	Failure   *render.Failure
}

// Screenshot renders target, or the current address when target is empty,
// and saves the image into the downloads directory. Missing renderer credentials are returned as errors;
// transport failures are reported through Screenshot.Failure.
func (b *TextBrowser) Screenshot(ctx context.Context, target string) (*Screenshot, error) {
	b.mu.Lock()
	address := target
	if address == "" {
		address = b.address()
	}
	renderer := b.renderer
	imageType := b.cfg.ImageType
	fullPage := b.cfg.FullPage
	dir := b.cfg.DownloadsDir
	b.mu.Unlock()

	if renderer == nil {
		return nil, render.ErrMissingCredential
	}

	data, err := renderer.Render(ctx, render.Request{URL: address, FullPage: fullPage, ImageType: imageType})
	if err != nil {
		var failure *render.Failure
		if errors.As(err, &failure) {
			browserLog.Warnf("screenshot of %s failed: %v", address, err)
			return &Screenshot{ImageType: imageType, Failure: failure}, nil
		}
		return nil, err
	}

	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	name := fmt.Sprintf("screenshot_%s.%s", strings.ReplaceAll(uuid.NewString(), "-", ""), imageType)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save screenshot: %w", err)
	}
	browserLog.Infof("screenshot of %s saved to %s", address, path)
	return &Screenshot{Path: path, Data: data, ImageType: imageType}, nil
}
