package ui2d

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph range baked into the atlas. Other runes render as fallbackGlyph.
const (
	firstGlyph    = ' '
	lastGlyph     = '~'
	fallbackGlyph = '?'
	atlasColumns  = 16
)

// Atlas is a grid of fixed-size glyph cells rendered from a bitmap face.
type Atlas struct {
	Image         *image.Alpha
	GlyphW        int
	GlyphH        int
	columns, rows int
}

// NewAtlas renders the printable ASCII range of basicfont.Face7x13.
func NewAtlas() *Atlas {
	face := basicfont.Face7x13
	count := int(lastGlyph-firstGlyph) + 1
	a := &Atlas{
		GlyphW:  face.Advance,
		GlyphH:  face.Height,
		columns: atlasColumns,
		rows:    (count + atlasColumns - 1) / atlasColumns,
	}
	a.Image = image.NewAlpha(image.Rect(0, 0, a.columns*a.GlyphW, a.rows*a.GlyphH))

	d := &font.Drawer{Dst: a.Image, Src: image.Opaque, Face: face}
	for r := firstGlyph; r <= lastGlyph; r++ {
		col, row := a.cell(r)
		d.Dot = fixed.P(col*a.GlyphW, row*a.GlyphH+face.Ascent)
		d.DrawString(string(r))
	}
	return a
}

func (a *Atlas) cell(r rune) (col, row int) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackGlyph
	}
	i := int(r - firstGlyph)
	return i % a.columns, i / a.columns
}

// UV returns the texture coordinates of r's cell.
func (a *Atlas) UV(r rune) (u0, v0, u1, v1 float32) {
	col, row := a.cell(r)
	w := float32(a.Image.Rect.Dx())
	h := float32(a.Image.Rect.Dy())
	u0 = float32(col*a.GlyphW) / w
	v0 = float32(row*a.GlyphH) / h
	u1 = float32((col+1)*a.GlyphW) / w
	v1 = float32((row+1)*a.GlyphH) / h
	return u0, v0, u1, v1
}

// Measure returns the pixel size of text at scale. Lines are split on '\n'.
func (a *Atlas) Measure(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float32(longest*a.GlyphW) * scale, float32(lines*a.GlyphH) * scale
}

// Font is an Atlas uploaded as a single-channel GL texture.
type Font struct {
	atlas   *Atlas
	texture uint32
}

// NewFont builds the atlas and uploads it. Requires a current GL context.
func NewFont() *Font {
	f := &Font{atlas: NewAtlas()}
	img := f.atlas.Image

	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return f
}

// TextureID returns the GL texture.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// Close deletes the GL texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
