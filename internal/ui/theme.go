package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// compactTheme wraps an existing theme with tighter padding so the entry and
// the scrubber rows stay close together.
type compactTheme struct {
	fyne.Theme
	padding float32
}

var _ fyne.Theme = (*compactTheme)(nil)

// Size overrides padding and delegates everything else to the wrapped theme.
func (t *compactTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNamePadding {
		return t.padding
	}
	return t.Theme.Size(name)
}

// NewCompactTheme wraps base with the given padding; values <= 0 use 2.
func NewCompactTheme(base fyne.Theme, padding float32) fyne.Theme {
	if padding <= 0 {
		padding = 2
	}
	return &compactTheme{Theme: base, padding: padding}
}
