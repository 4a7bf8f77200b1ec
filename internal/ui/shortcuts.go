// Package ui  Shortcuts for keyboard actions
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

func (a *App) buildKeyboardShortcuts() {
	canvas := a.UI.MainWin.Canvas()

	// ctrl+q to quit application
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyS,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.accept() })

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyR,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.reset() })

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyO,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.fileEntry.browse() })

	canvas.SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight:
			a.stepBy(1)
		case fyne.KeyLeft:
			a.stepBy(-1)
		case fyne.KeyPageUp:
			a.stepBy(-10)
		case fyne.KeyPageDown:
			a.stepBy(10)
		case fyne.KeyHome:
			a.firstStep()
		case fyne.KeyEnd:
			a.lastStep()
		case fyne.KeyP, fyne.KeySpace:
			a.togglePlay()
		case fyne.KeyL:
			a.toggleLoop()
		case fyne.KeyF5:
			a.refresh()
		case fyne.KeyBackspace:
			a.historyBack()
		// close dialogs with esc key
		case fyne.KeyEscape:
			if len(canvas.Overlays().List()) > 0 {
				canvas.Overlays().Top().Hide()
			}
		}
	})
}

var shortcutHelp = [][2]string{
	{"Quit Application", "Ctrl+Q"},
	{"Open File", "Ctrl+O"},
	{"Accept", "Ctrl+S"},
	{"Reset to Accepted", "Ctrl+R"},
	{"Next / Previous Timestep", "Arrow Right / Arrow Left"},
	{"Skip 10 Timesteps", "Page Down / Page Up"},
	{"First / Last Timestep", "Home / End"},
	{"Play / Pause", "P or Space"},
	{"Loop On / Off", "L"},
	{"Refresh Directory", "F5"},
	{"Previous Dataset", "Backspace"},
	{"Close Dialog", "Esc"},
}

func (a *App) showShortcuts() {
	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(shortcutHelp) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row == 0 {
				label.SetText([2]string{"Description", "Shortcut"}[id.Col])
				label.TextStyle.Bold = true
			} else {
				label.SetText(shortcutHelp[id.Row-1][id.Col])
				label.TextStyle.Bold = false
			}
			label.Refresh()
		},
	)
	table.SetColumnWidth(0, 250)
	table.SetColumnWidth(1, 250)
	win.SetContent(table)
	win.Resize(fyne.NewSize(520, 420))
	win.Show()
}
