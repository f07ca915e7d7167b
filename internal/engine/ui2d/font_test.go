package ui2d

import "testing"

func TestAtlasLayout(t *testing.T) {
	a := NewAtlas()

	if a.GlyphW != 7 || a.GlyphH != 13 {
		t.Fatalf("expected 7x13 glyphs, got %dx%d", a.GlyphW, a.GlyphH)
	}
	b := a.Image.Bounds()
	if b.Dx() != atlasColumns*7 || b.Dy() != 6*13 {
		t.Errorf("unexpected atlas size %v", b)
	}
}

func TestAtlasRendersGlyphs(t *testing.T) {
	a := NewAtlas()

	coverage := func(r rune) int {
		col, row := a.cell(r)
		n := 0
		for y := row * a.GlyphH; y < (row+1)*a.GlyphH; y++ {
			for x := col * a.GlyphW; x < (col+1)*a.GlyphW; x++ {
				if a.Image.AlphaAt(x, y).A > 0 {
					n++
				}
			}
		}
		return n
	}

	if coverage(' ') != 0 {
		t.Error("expected space to be empty")
	}
	for _, r := range "AZaz09?" {
		if coverage(r) == 0 {
			t.Errorf("expected pixels for %q", r)
		}
	}
}

func TestAtlasUV(t *testing.T) {
	a := NewAtlas()

	u0, v0, u1, v1 := a.UV(' ')
	if u0 != 0 || v0 != 0 {
		t.Errorf("expected space in first cell, got (%v,%v)", u0, v0)
	}
	if u1 <= u0 || v1 <= v0 {
		t.Errorf("expected positive cell extent, got (%v,%v)-(%v,%v)", u0, v0, u1, v1)
	}

	fu0, fv0, _, _ := a.UV(fallbackGlyph)
	for _, r := range []rune{'é', '\t', 0x4e16} {
		gu0, gv0, _, _ := a.UV(r)
		if gu0 != fu0 || gv0 != fv0 {
			t.Errorf("expected %q to use the fallback glyph", r)
		}
	}
}

func TestAtlasMeasure(t *testing.T) {
	a := NewAtlas()

	tests := []struct {
		text  string
		scale float32
		w, h  float32
	}{
		{"", 1, 0, 13},
		{"abc", 1, 21, 13},
		{"abc", 2, 42, 26},
		{"ab\nabcd", 1, 28, 26},
	}
	for _, tt := range tests {
		w, h := a.Measure(tt.text, tt.scale)
		if w != tt.w || h != tt.h {
			t.Errorf("Measure(%q, %v) = %v,%v, want %v,%v", tt.text, tt.scale, w, h, tt.w, tt.h)
		}
	}
}
