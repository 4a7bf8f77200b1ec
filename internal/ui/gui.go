package ui

import (
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

func (a *App) buildToolbar() *widget.Toolbar {
	a.UI.pauseAction = widget.NewToolbarAction(theme.MediaPlayIcon(), a.togglePlay)
	a.UI.toolBar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaSkipPreviousIcon(), a.firstStep),
		widget.NewToolbarAction(theme.MediaFastRewindIcon(), func() { a.stepBy(-1) }),
		a.UI.pauseAction,
		widget.NewToolbarAction(theme.MediaFastForwardIcon(), func() { a.stepBy(1) }),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), a.lastStep),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), a.refresh),
		widget.NewToolbarAction(theme.NavigateBackIcon(), a.historyBack),
		widget.NewToolbarAction(theme.NavigateNextIcon(), a.historyForward),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ConfirmIcon(), a.accept),
		widget.NewToolbarAction(theme.ContentUndoIcon(), a.reset),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), a.showShortcuts),
	)
	return a.UI.toolBar
}

func (a *App) buildStatusBar() *fyne.Container {
	a.UI.statusPathLabel = widget.NewLabel("Ready")
	a.UI.statusPathLabel.Truncation = fyne.TextTruncateEllipsis
	a.UI.statusLogLabel = widget.NewLabel("")
	a.UI.statusLogLabel.Truncation = fyne.TextTruncateEllipsis

	a.UI.statusLogUpBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		a.logUIManager.ShowPreviousLogMessage()
	})
	a.UI.statusLogDownBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		a.logUIManager.ShowNextLogMessage()
	})
	a.logUIManager = NewLogUIManager(a.UI.statusLogLabel, a.UI.statusLogUpBtn, a.UI.statusLogDownBtn, DefaultMaxLogMessages)
	a.logUIManager.UpdateLogDisplay()

	return container.NewVBox(
		widget.NewSeparator(),
		a.UI.statusPathLabel,
		container.NewBorder(nil, nil, nil,
			container.NewHBox(a.UI.statusLogUpBtn, a.UI.statusLogDownBtn),
			a.UI.statusLogLabel,
		),
	)
}

func (a *App) buildMainMenu() *fyne.MainMenu {
	about := NewAbout(a.UI.MainWin, "About fyseq")
	a.UI.loopItem = fyne.NewMenuItem("Loop", a.toggleLoop)
	a.UI.loopItem.Checked = a.player.Loop()
	return fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Open...", a.fileEntry.browse),
			fyne.NewMenuItem("Timesteps...", a.fileEntry.showFiles),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Accept", a.accept),
			fyne.NewMenuItem("Reset", a.reset),
		),
		fyne.NewMenu("View",
			fyne.NewMenuItem("First Timestep", a.firstStep),
			fyne.NewMenuItem("Previous Timestep", func() { a.stepBy(-1) }),
			fyne.NewMenuItem("Next Timestep", func() { a.stepBy(1) }),
			fyne.NewMenuItem("Last Timestep", a.lastStep),
			fyne.NewMenuItem("Play / Pause", a.togglePlay),
			a.UI.loopItem,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Refresh", a.refresh),
			fyne.NewMenuItem("Log...", a.showLog),
		),
		fyne.NewMenu("Go",
			fyne.NewMenuItem("Back", a.historyBack),
			fyne.NewMenuItem("Forward", a.historyForward),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Clear History", a.clearHistory),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
			fyne.NewMenuItem("About", about.Show),
		),
	)
}

func (a *App) buildMainUI() fyne.CanvasObject {
	a.UI.MainWin.SetMaster()
	// set main mod key to super on darwin hosts, else set it to ctrl
	if runtime.GOOS == "darwin" {
		a.UI.mainModKey = fyne.KeyModifierSuper
	} else {
		a.UI.mainModKey = fyne.KeyModifierControl
	}
	toolbar := a.buildToolbar()
	status := a.buildStatusBar()

	a.UI.MainWin.SetMainMenu(a.buildMainMenu())
	a.buildKeyboardShortcuts()

	info := container.NewScroll(a.UI.infoText)
	top := container.NewVBox(toolbar, a.fileEntry, widget.NewSeparator())
	return container.NewBorder(
		top,    // Top
		status, // Bottom
		nil,
		nil,
		container.NewPadded(info),
	)
}
