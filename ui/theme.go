package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// cockpitTheme wraps the default theme with the cockpit palette.
type cockpitTheme struct {
	baseTheme fyne.Theme
	isDark    bool
}

func newCockpitTheme(isDark bool) fyne.Theme {
	var base fyne.Theme
	if isDark {
		base = theme.DarkTheme()
	} else {
		base = theme.LightTheme()
	}
	return &cockpitTheme{baseTheme: base, isDark: isDark}
}

func (t *cockpitTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		// Cockpit accent green.
		return color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}
	case theme.ColorNameBackground:
		if t.isDark {
			return color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
		}
	}
	return t.baseTheme.Color(name, variant)
}

func (t *cockpitTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.baseTheme.Font(style)
}

func (t *cockpitTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.baseTheme.Icon(name)
}

func (t *cockpitTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.baseTheme.Size(name)
}
