package ui2d

// Color is a straight-alpha RGBA color in the 0..1 range.
type Color struct {
	R, G, B, A float32
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Theme holds the palette and spacing shared by every widget.
type Theme struct {
	Panel        Color
	Border       Color
	TitleBar     Color
	Button       Color
	ButtonHover  Color
	ButtonActive Color
	Well         Color
	Text         Color
	TextDim      Color
	Highlight    Color

	// Padding is the inset between a window edge and its content.
	Padding float32
	// Spacing separates consecutive rows and widgets.
	Spacing float32
	TitleH  float32
	// ItemH is the default height of buttons and list rows.
	ItemH float32
	// TextScale multiplies the atlas glyph size.
	TextScale float32
}

// DefaultTheme is the dark palette the viewer overlay uses.
var DefaultTheme = Theme{
	Panel:        Color{0.07, 0.08, 0.11, 0.94},
	Border:       Color{0.30, 0.32, 0.42, 1},
	TitleBar:     Color{0.14, 0.15, 0.21, 1},
	Button:       Color{0.16, 0.17, 0.23, 1},
	ButtonHover:  Color{0.24, 0.26, 0.36, 1},
	ButtonActive: Color{0.10, 0.32, 0.52, 1},
	Well:         Color{0.04, 0.05, 0.07, 1},
	Text:         Color{0.92, 0.92, 0.92, 1},
	TextDim:      Color{0.55, 0.56, 0.64, 1},
	Highlight:    Color{0.20, 0.58, 0.90, 1},

	Padding:   8,
	Spacing:   4,
	TitleH:    22,
	ItemH:     24,
	TextScale: 1,
}
