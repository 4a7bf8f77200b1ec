// Package ui is the fyne front end: a file entry with a timestep scrubber,
// playback and dataset history.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"fyseq/internal/history"
	"fyseq/internal/logging"
	"fyseq/internal/playback"
	"fyseq/internal/service"
	"fyseq/internal/store"
	"fyseq/internal/watch"
)

// DefaultKey is the store key used by the GUI when none is given.
const DefaultKey = "default"

// Options configure the GUI.
type Options struct {
	Key         string        // store key of the file entry
	File        string        // file to open at start, overrides the stored value
	HistorySize int           // opened datasets to remember, 0 disables
	Interval    time.Duration // playback interval
	Loop        bool          // playback wraps around
	Debounce    time.Duration // directory watch debounce, 0 for the default
}

// UI holds the widgets the App updates after construction.
type UI struct {
	MainWin    fyne.Window
	mainModKey fyne.KeyModifier

	toolBar     *widget.Toolbar
	pauseAction *widget.ToolbarAction
	loopItem    *fyne.MenuItem
	infoText    *widget.RichText

	statusPathLabel  *widget.Label
	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app     fyne.App
	UI      UI
	Service *service.Service
	logger  *logging.Logger
	opts    Options

	fileEntry    *FileEntry
	logUIManager *LogUIManager

	player              *playback.Player
	history             *history.History
	isNavigatingHistory bool // true while a history action applies a file
	currentDataset      string

	watcher    *watch.Watcher
	watchedDir string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the main window. The stored entry under opts.Key is loaded
// first, then opts.File is applied when set. logger may be nil.
func NewApp(fyneApp fyne.App, svc *service.Service, logger *logging.Logger, opts Options) *App {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	a := &App{
		app:     fyneApp,
		Service: svc,
		logger:  logger,
		opts:    opts,
		player:  playback.NewPlayer(opts.Interval, opts.Loop),
		history: history.New(opts.HistorySize),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.UI.MainWin = fyneApp.NewWindow("fyseq")
	a.UI.MainWin.SetIcon(theme.MediaVideoIcon())
	a.UI.infoText = widget.NewRichTextFromMarkdown("# Info\n---\nNo file chosen.")

	a.fileEntry = NewFileEntry("File", a.UI.MainWin)
	a.fileEntry.OnChanged = a.onEntryChanged
	a.fileEntry.OnError = a.showError

	a.UI.MainWin.SetContent(a.buildMainUI())

	if logger != nil {
		logger.SetOutput(io.MultiWriter(logger.Output(), &logPanelWriter{lm: a.logUIManager}))
	}

	a.fileEntry.SetController(svc.NewEntry(opts.Key, a.fileEntry.Changed))
	a.load()
	return a
}

// load restores the stored entry, then applies the requested file.
func (a *App) load() {
	ctrl := a.fileEntry.Controller()
	if err := ctrl.Reset(); err != nil && !errors.Is(err, store.ErrNotFound) {
		a.addLogMessage(fmt.Sprintf("Error loading %s: %v", a.opts.Key, err))
	}
	if a.opts.File != "" {
		abs, err := filepath.Abs(a.opts.File)
		if err != nil {
			abs = a.opts.File
		}
		a.fileEntry.Apply(abs)
	}
	a.fileEntry.sync()
	a.updateStatusBar()
	a.updateInfoText()
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.UI.MainWin.SetCloseIntercept(func() {
		a.shutdown()
		a.UI.MainWin.Close()
	})
	go a.player.Run(a.ctx, a.playTick)

	a.UI.MainWin.Resize(fyne.NewSize(900, 600))
	a.UI.MainWin.CenterOnScreen()
	a.UI.MainWin.ShowAndRun()
}

func (a *App) shutdown() {
	a.cancel()
	a.stopWatch()
	if err := a.Service.Store.Close(); err != nil {
		a.addLogMessage(fmt.Sprintf("Error closing store: %v", err))
	}
}

// onEntryChanged runs after the file entry shows a new value or timestep.
func (a *App) onEntryChanged(value string, _ int) {
	ctrl := a.fileEntry.Controller()

	if files := ctrl.Paths(); len(files) > 0 && files[0] != a.currentDataset {
		a.currentDataset = files[0]
		if !a.isNavigatingHistory {
			a.history.RecordOpen(value)
		}
		a.addLogMessage(fmt.Sprintf("Opened %s (%d timesteps)", filepath.Base(value), len(files)))
	}
	if ctrl.Dir() != a.watchedDir {
		a.restartWatch(ctrl.Dir())
	}

	a.updateStatusBar()
	a.updateInfoText()
}

func (a *App) stopWatch() {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Close(); err != nil {
		a.addLogMessage(fmt.Sprintf("Error stopping watch: %v", err))
	}
	a.watcher = nil
	a.watchedDir = ""
}

func (a *App) restartWatch(dir string) {
	a.stopWatch()
	if dir == "" {
		return
	}
	var logf watch.LoggerFunc
	if a.logger != nil {
		logf = a.logger.Func("watch")
	}
	w, err := watch.New(dir, a.opts.Debounce, func() {
		fyne.Do(a.directoryChanged)
	}, logf)
	if err != nil {
		a.addLogMessage(fmt.Sprintf("Error watching %s: %v", dir, err))
		return
	}
	if err := w.Start(a.ctx); err != nil {
		a.addLogMessage(fmt.Sprintf("Error watching %s: %v", dir, err))
		w.Close()
		return
	}
	a.watcher = w
	a.watchedDir = w.Dir()
}

// directoryChanged re-detects the sequence after files were added or removed.
func (a *App) directoryChanged() {
	ctrl := a.fileEntry.Controller()
	before := len(ctrl.Files())
	if err := ctrl.Redetect(); err != nil {
		a.showError(err)
		return
	}
	a.fileEntry.sync()
	if after := len(ctrl.Files()); after != before {
		a.addLogMessage(fmt.Sprintf("Directory changed: %d -> %d timesteps", before, after))
	}
	a.updateStatusBar()
	a.updateInfoText()
}

// playTick advances one timestep on the fyne goroutine. It returns false at
// the end of the sequence.
func (a *App) playTick() bool {
	advanced := false
	fyne.DoAndWait(func() {
		ctrl := a.fileEntry.Controller()
		next, ok := a.player.Next(ctrl.TimeStep(), len(ctrl.Files()))
		if !ok {
			a.player.Pause(false)
			a.updatePlayIcon()
			return
		}
		a.fileEntry.StepTo(next)
		advanced = true
	})
	return advanced
}

func (a *App) showError(err error) {
	a.addLogMessage(fmt.Sprintf("Error: %v", err))
	dialog.ShowError(err, a.UI.MainWin)
}

// --- timestep navigation ---

func (a *App) firstStep() {
	a.player.Pause(false)
	a.fileEntry.StepTo(0)
	a.updatePlayIcon()
}

func (a *App) lastStep() {
	a.player.Pause(false)
	_, hi := a.fileEntry.Controller().Range()
	a.fileEntry.StepTo(hi)
	a.updatePlayIcon()
}

func (a *App) stepBy(delta int) {
	ctrl := a.fileEntry.Controller()
	_, hi := ctrl.Range()
	ts := max(0, min(ctrl.TimeStep()+delta, hi))
	if ts != ctrl.TimeStep() {
		a.fileEntry.StepTo(ts)
	}
}

// --- dataset history ---

// navigateHistory applies the dataset move lands on. Datasets whose file is
// gone are dropped from the history after undo restores the position, and
// the move is tried again.
func (a *App) navigateHistory(move, undo func() (string, bool)) {
	for {
		path, ok := move()
		if !ok {
			return
		}
		if gone, err := a.Service.Missing(path); err == nil && gone {
			undo()
			a.history.Remove(path)
			a.addLogMessage(fmt.Sprintf("Removed %s from history, the file is gone", filepath.Base(path)))
			continue
		}
		a.isNavigatingHistory = true
		a.fileEntry.Apply(path)
		a.isNavigatingHistory = false
		return
	}
}

func (a *App) historyBack() {
	a.navigateHistory(a.history.Back, a.history.Forward)
}

func (a *App) historyForward() {
	a.navigateHistory(a.history.Forward, a.history.Back)
}

// clearHistory forgets every dataset except the one shown.
func (a *App) clearHistory() {
	a.history.Clear()
	if v := a.fileEntry.Controller().Value(); v != "" {
		a.history.RecordOpen(v)
	}
	a.addLogMessage("History cleared")
	a.updateInfoText()
}

// --- commit / revert ---

func (a *App) accept() {
	a.player.Pause(true)
	defer a.player.ResumeAfterOperation()
	if err := a.fileEntry.Controller().Accept(); err != nil {
		a.showError(err)
		return
	}
	a.addLogMessage(fmt.Sprintf("Accepted %s", filepath.Base(a.fileEntry.Controller().Value())))
}

func (a *App) reset() {
	a.player.Pause(false)
	a.updatePlayIcon()
	if err := a.fileEntry.Controller().Reset(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.addLogMessage("Nothing accepted yet")
			return
		}
		a.showError(err)
		return
	}
	a.fileEntry.sync()
	a.addLogMessage("Reset to the accepted file")
}

func (a *App) refresh() {
	a.directoryChanged()
}

// Handle toggles
func (a *App) togglePlay() {
	a.player.TogglePlayPause()
	a.updatePlayIcon()
}

func (a *App) toggleLoop() {
	a.player.SetLoop(!a.player.Loop())
	if a.UI.loopItem != nil {
		a.UI.loopItem.Checked = a.player.Loop()
		if menu := a.UI.MainWin.MainMenu(); menu != nil {
			menu.Refresh()
		}
	}
	if a.player.Loop() {
		a.addLogMessage("Loop on")
	} else {
		a.addLogMessage("Loop off")
	}
}

// showLog lists every message kept by the status bar log.
func (a *App) showLog() {
	msgs := a.logUIManager.Messages()
	list := widget.NewList(
		func() int { return len(msgs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(msgs[id])
		},
	)
	if len(msgs) > 0 {
		list.ScrollToBottom()
	}
	d := dialog.NewCustom("Log", "Close", list, a.UI.MainWin)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

func (a *App) updatePlayIcon() {
	if a.UI.pauseAction != nil {
		if a.player.IsPaused() {
			a.UI.pauseAction.SetIcon(theme.MediaPlayIcon())
		} else {
			a.UI.pauseAction.SetIcon(theme.MediaPauseIcon())
		}
	}
	if a.UI.toolBar != nil {
		a.UI.toolBar.Refresh()
	}
	a.updateStatusBar()
}
