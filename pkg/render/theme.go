package render

import "image/color"

// Theme selects a color scheme.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// String returns the theme's display name.
func (t Theme) String() string {
	if t == ThemeDark {
		return "Dark"
	}
	return "Light"
}

// Colors is the palette applied to emitted primitives.
type Colors struct {
	Background color.NRGBA
	Grid       color.NRGBA

	Wire     color.NRGBA
	Junction color.NRGBA

	GlyphOutline color.NRGBA
	GlyphFill    color.NRGBA
	Lead         color.NRGBA
	PinName      color.NRGBA

	Port      color.NRGBA
	PowerRail color.NRGBA
	Ground    color.NRGBA

	Designator color.NRGBA
	Label      color.NRGBA

	Selection color.NRGBA
	Highlight color.NRGBA
}

// ThemeColors returns the palette for a theme.
func ThemeColors(t Theme) *Colors {
	if t == ThemeDark {
		return darkColors()
	}
	return lightColors()
}

func lightColors() *Colors {
	return &Colors{
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Grid:       color.NRGBA{R: 220, G: 220, B: 220, A: 255},

		Wire:     color.NRGBA{G: 132, A: 255},
		Junction: color.NRGBA{G: 132, A: 255},

		GlyphOutline: color.NRGBA{R: 132, A: 255},
		GlyphFill:    color.NRGBA{R: 255, G: 255, B: 194, A: 128},
		Lead:         color.NRGBA{R: 132, A: 255},
		PinName:      color.NRGBA{G: 100, B: 100, A: 255},

		Port:      color.NRGBA{R: 132, B: 132, A: 255},
		PowerRail: color.NRGBA{R: 180, G: 40, B: 40, A: 255},
		Ground:    color.NRGBA{R: 60, G: 60, B: 60, A: 255},

		Designator: color.NRGBA{A: 255},
		Label:      color.NRGBA{A: 255},

		Selection: color.NRGBA{R: 255, A: 128},
		Highlight: color.NRGBA{R: 255, G: 255, A: 128},
	}
}

func darkColors() *Colors {
	return &Colors{
		Background: color.NRGBA{R: 30, G: 30, B: 30, A: 255},
		Grid:       color.NRGBA{R: 60, G: 60, B: 60, A: 255},

		Wire:     color.NRGBA{G: 255, A: 255},
		Junction: color.NRGBA{G: 255, A: 255},

		GlyphOutline: color.NRGBA{R: 255, G: 120, B: 120, A: 255},
		GlyphFill:    color.NRGBA{R: 90, G: 90, B: 50, A: 128},
		Lead:         color.NRGBA{R: 255, G: 120, B: 120, A: 255},
		PinName:      color.NRGBA{G: 200, B: 200, A: 255},

		Port:      color.NRGBA{R: 220, G: 120, B: 220, A: 255},
		PowerRail: color.NRGBA{R: 255, G: 110, B: 110, A: 255},
		Ground:    color.NRGBA{R: 180, G: 180, B: 180, A: 255},

		Designator: color.NRGBA{R: 230, G: 230, B: 230, A: 255},
		Label:      color.NRGBA{R: 230, G: 230, B: 230, A: 255},

		Selection: color.NRGBA{R: 255, A: 128},
		Highlight: color.NRGBA{R: 255, G: 255, A: 128},
	}
}
