// Package capture saves viewport pixels as PNG files.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrPixelSize is returned when pixel data does not match the dimensions.
var ErrPixelSize = errors.New("pixel data size mismatch")

// Capture writes timestamped PNG files into a directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a capture handler. An empty dir writes to the working
// directory.
func New(outputDir, prefix string) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Filename returns the path the next capture of label will be written to.
// label is usually the applied model name and may be empty.
func (c *Capture) Filename(label string) string {
	name := c.prefix
	if label = sanitize(label); label != "" {
		name += "_" + label
	}
	name += "_" + c.now().Format("2006-01-02_15-04-05") + ".png"
	return filepath.Join(c.outputDir, name)
}

// SavePixels writes bottom-up RGBA pixels, as read back from OpenGL, to a
// top-down PNG and returns its path.
func (c *Capture) SavePixels(pixels []byte, width, height int, label string) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrPixelSize, width, height, width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize // Flip Y
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return c.write(img, c.Filename(label))
}

func (c *Capture) write(img image.Image, filename string) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// sanitize keeps label usable as part of a file name.
func sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(label))
}
