// Package texture decodes model textures into NRGBA images.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrEmptyImage        = errors.New("texture has no pixels")
)

// Decoders are picked by extension. TGA has no magic number, so sniffing
// through image.Decode cannot tell it apart reliably.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
}

// IsImageFile reports whether path has a supported texture extension.
func IsImageFile(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Loader decodes texture files.
type Loader struct {
	// MaxSize clamps the longest edge in pixels; 0 disables clamping.
	MaxSize int
}

// NewLoader creates a loader with the given size clamp.
func NewLoader(maxSize int) *Loader {
	return &Loader{MaxSize: maxSize}
}

// Load reads and decodes the image at path.
func (l *Loader) Load(path string) (*image.NRGBA, error) {
	if !IsImageFile(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}
	img, err := l.Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode decodes an in-memory image; ext selects the format (".png", ...).
func (l *Loader) Decode(data []byte, ext string) (*image.NRGBA, error) {
	ext = strings.ToLower(ext)
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s texture: %w", ext, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s texture: %w", ext, ErrEmptyImage)
	}
	return ToNRGBA(l.fit(img)), nil
}

// fit scales img down so its longest edge is at most MaxSize, keeping aspect.
func (l *Loader) fit(img image.Image) image.Image {
	if l.MaxSize <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= l.MaxSize && b.Dy() <= l.MaxSize {
		return img
	}
	return resize.Thumbnail(uint(l.MaxSize), uint(l.MaxSize), img, resize.Lanczos3)
}

// ToNRGBA converts any image to a zero-origin *image.NRGBA.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
