package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"fyseq/internal/service"
)

type About struct {
	title     string
	parent    fyne.Window
	container *fyne.Container
	d         dialog.Dialog
}

func NewAbout(parent fyne.Window, title string) *About {
	a := &About{
		title:  title,
		parent: parent,
	}

	icon := canvas.NewImageFromResource(theme.MediaVideoIcon())
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(96, 96))

	text := widget.NewRichTextFromMarkdown("## fyseq " + service.Version + "\n\n" +
		"Pick a data file and scrub through the numbered files of its time series.")
	text.Wrapping = fyne.TextWrapWord

	ok := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("OK", func() { a.Hide() }),
		layout.NewSpacer(),
	)

	a.container = container.NewBorder(icon, ok, nil, nil, text)
	return a
}

func (a *About) Hide() {
	if a.d != nil {
		a.d.Hide()
	}
}

func (a *About) Show() {
	a.d = dialog.NewCustomWithoutButtons(a.title, a.container, a.parent)
	a.d.Resize(fyne.NewSize(360, 280))
	a.d.Show()
}
