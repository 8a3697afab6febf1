package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/kbinani/screenshot"
)

// X11 captures in-process from an X server.
type X11 struct {
	displays    func() int
	captureRect func(image.Rectangle) (*image.RGBA, error)
}

// NewX11 creates the X11 backend.
func NewX11() *X11 {
	return &X11{
		displays:    screenshot.NumActiveDisplays,
		captureRect: screenshot.CaptureRect,
	}
}

func (x *X11) Name() string { return "x11" }

func (x *X11) Available() error {
	if os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("DISPLAY is not set")
	}
	if x.displays() == 0 {
		return fmt.Errorf("no active displays found")
	}
	return nil
}

// Capture grabs target.Rect; monitor names have no X11 meaning, so whole
// monitor captures use the monitor's rect as well.
func (x *X11) Capture(ctx context.Context, target Target) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := target.Rect
	img, err := x.captureRect(image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", r, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
