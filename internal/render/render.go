package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
)

// Renderer paints one page of the uploaded document to an image. The core
// never inspects pixels; it only forwards page number and scale.
type Renderer interface {
	RenderPage(ctx context.Context, page int, scale float64) ([]byte, error)
}

// Scale bounds mirror the zoom control: 50% to 300%.
const (
	MinScale = 0.5
	MaxScale = 3.0
	baseDPI  = 72
)

// ClampScale snaps a requested zoom factor into the supported range.
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// PdftoppmRenderer rasterizes PDF pages by shelling out to pdftoppm, the
// same fallback family of tooling used for text extraction. It holds the
// uploaded file on disk for the lifetime of one document.
type PdftoppmRenderer struct {
	mu   sync.Mutex
	path string
}

// SetDocument stores raw PDF bytes for later rendering, replacing any
// previous document's file.
func (r *PdftoppmRenderer) SetDocument(data []byte) error {
	tmp, err := os.CreateTemp("", "pagechat-render-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	r.mu.Lock()
	old := r.path
	r.path = tmp.Name()
	r.mu.Unlock()

	if old != "" {
		os.Remove(old)
	}
	return nil
}

// Close removes the on-disk copy.
func (r *PdftoppmRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path != "" {
		os.Remove(r.path)
		r.path = ""
	}
}

// RenderPage rasterizes one page as PNG at the given scale.
func (r *PdftoppmRenderer) RenderPage(ctx context.Context, page int, scale float64) ([]byte, error) {
	r.mu.Lock()
	path := r.path
	r.mu.Unlock()

	if path == "" {
		return nil, fmt.Errorf("no document loaded")
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}

	dpi := int(baseDPI * ClampScale(scale))
	outPrefix := filepath.Join(os.TempDir(), fmt.Sprintf("pagechat-page-%d", page))
	defer os.Remove(outPrefix + ".png")

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-singlefile",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		path, outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, out)
	}

	data, err := os.ReadFile(outPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return data, nil
}
