package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"fyseq/internal/entry"
)

// FileEntry is a labelled file name entry with a browse button, a list of
// the files in the directory and a timestep scrubber. The scrubber is only
// shown when the chosen file belongs to a sequence of more than one file.
type FileEntry struct {
	widget.BaseWidget

	ctrl *entry.Entry
	win  fyne.Window

	label      *widget.Label
	entry      *widget.Entry
	browseBtn  *widget.Button
	filesBtn   *widget.Button
	slider     *widget.Slider
	stepEntry  *widget.Entry
	rangeLabel *widget.Label
	scrubber   *fyne.Container

	updating bool // true while widgets are synced from the controller

	// OnChanged is called after the widgets reflect a new value or timestep.
	OnChanged func(value string, timeStep int)
	// OnError is called with errors from user actions.
	OnError func(err error)
}

// NewFileEntry creates the widget. A controller must be attached with
// SetController before it is used.
func NewFileEntry(label string, win fyne.Window) *FileEntry {
	fe := &FileEntry{win: win}
	fe.ExtendBaseWidget(fe)

	fe.label = widget.NewLabel(label)
	fe.entry = widget.NewEntry()
	fe.entry.SetPlaceHolder("Choose a file...")
	fe.entry.OnSubmitted = func(text string) { fe.Apply(strings.TrimSpace(text)) }

	fe.browseBtn = widget.NewButtonWithIcon("Browse", theme.FolderOpenIcon(), fe.browse)
	fe.filesBtn = widget.NewButtonWithIcon("Timesteps", theme.ListIcon(), fe.showFiles)

	fe.slider = widget.NewSlider(0, 1)
	fe.slider.Step = 1
	fe.slider.OnChanged = func(v float64) {
		if fe.updating {
			return
		}
		fe.StepTo(int(v))
	}

	fe.stepEntry = widget.NewEntry()
	fe.stepEntry.OnSubmitted = func(text string) {
		ts, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			fe.reportError(fmt.Errorf("invalid timestep %q: %w", text, err))
			fe.sync()
			return
		}
		fe.StepTo(ts)
	}
	fe.rangeLabel = widget.NewLabel("")

	fe.scrubber = container.NewBorder(nil, nil,
		widget.NewLabel("Timestep"),
		container.NewHBox(container.NewGridWrap(fyne.NewSize(70, fe.stepEntry.MinSize().Height), fe.stepEntry), fe.rangeLabel),
		fe.slider,
	)
	fe.scrubber.Hide()
	return fe
}

// SetController attaches the entry controller whose state the widget shows.
func (fe *FileEntry) SetController(ctrl *entry.Entry) {
	fe.ctrl = ctrl
	fe.sync()
}

// Controller returns the attached controller.
func (fe *FileEntry) Controller() *entry.Entry {
	return fe.ctrl
}

// CreateRenderer is a private method to Fyne which links this widget to its renderer
func (fe *FileEntry) CreateRenderer() fyne.WidgetRenderer {
	row := container.NewBorder(nil, nil, fe.label, container.NewHBox(fe.browseBtn, fe.filesBtn), fe.entry)
	return widget.NewSimpleRenderer(container.NewVBox(row, fe.scrubber))
}

// Apply sets the chosen file.
func (fe *FileEntry) Apply(path string) {
	if fe.ctrl == nil {
		return
	}
	if err := fe.ctrl.SetValue(path); err != nil {
		fe.reportError(err)
	}
	fe.sync()
}

// StepTo selects timestep ts.
func (fe *FileEntry) StepTo(ts int) {
	if fe.ctrl == nil {
		return
	}
	if err := fe.ctrl.SetTimeStep(ts); err != nil {
		fe.reportError(err)
	}
	fe.sync()
}

// Changed is the controller callback. It keeps the widgets in step with the
// controller and forwards to OnChanged.
func (fe *FileEntry) Changed(value string, timeStep int) {
	fe.sync()
	if fe.OnChanged != nil {
		fe.OnChanged(value, timeStep)
	}
}

func (fe *FileEntry) reportError(err error) {
	if fe.OnError != nil {
		fe.OnError(err)
	}
}

// sync copies controller state into the widgets.
func (fe *FileEntry) sync() {
	if fe.ctrl == nil || fe.updating {
		return
	}
	fe.updating = true
	defer func() { fe.updating = false }()

	fe.entry.SetText(fe.ctrl.Value())

	lo, hi := fe.ctrl.Range()
	fe.slider.Min = float64(lo)
	fe.slider.Max = float64(hi)
	fe.slider.SetValue(float64(fe.ctrl.TimeStep()))
	fe.slider.Refresh()
	fe.stepEntry.SetText(strconv.Itoa(fe.ctrl.TimeStep()))
	fe.rangeLabel.SetText(fmt.Sprintf("[%d, %d]", lo, hi))

	if fe.ctrl.ScrubberVisible() {
		fe.scrubber.Show()
	} else {
		fe.scrubber.Hide()
	}
	fe.Refresh()
}

func (fe *FileEntry) browse() {
	if fe.win == nil {
		return
	}
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			fe.reportError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		fe.Apply(path)
	}, fe.win)

	if fe.ctrl != nil && fe.ctrl.Dir() != "" {
		if dir, err := storage.ListerForURI(storage.NewFileURI(fe.ctrl.Dir())); err == nil {
			d.SetLocation(dir)
		}
	}
	d.Resize(fyne.NewSize(800, 600))
	d.Show()
}

// filesContent builds the two lists shown by the Timesteps button: every
// file of the directory and the files of the sequence.
func (fe *FileEntry) filesContent(onPicked func()) fyne.CanvasObject {
	available := fe.ctrl.Available()
	selected := fe.ctrl.Files()

	availableList := widget.NewList(
		func() int { return len(available) },
		func() fyne.CanvasObject { return widget.NewLabel("filename.ext") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(available[id].Name)
		},
	)
	availableList.OnSelected = func(id widget.ListItemID) {
		fe.Apply(filepath.Join(fe.ctrl.Dir(), available[id].Name))
		onPicked()
	}

	selectedList := widget.NewList(
		func() int { return len(selected) },
		func() fyne.CanvasObject { return widget.NewLabel("filename.ext") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			label.SetText(fmt.Sprintf("%d: %s", id, selected[id]))
			label.TextStyle.Bold = id == fe.ctrl.TimeStep()
			label.Refresh()
		},
	)
	selectedList.OnSelected = func(id widget.ListItemID) {
		fe.StepTo(id)
		onPicked()
	}

	return container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel(fmt.Sprintf("Available (%d)", len(available))), nil, nil, nil, availableList),
		container.NewBorder(widget.NewLabel(fmt.Sprintf("Timesteps (%d)", len(selected))), nil, nil, nil, selectedList),
	)
}

func (fe *FileEntry) showFiles() {
	if fe.ctrl == nil || fe.win == nil {
		return
	}
	if len(fe.ctrl.Available()) == 0 {
		if err := fe.ctrl.UpdateAvailableFiles(true); err != nil {
			fe.reportError(err)
		}
	}
	var d dialog.Dialog
	content := fe.filesContent(func() {
		if d != nil {
			d.Hide()
		}
	})
	d = dialog.NewCustom("Timesteps", "Close", content, fe.win)
	d.Resize(fyne.NewSize(700, 500))
	d.Show()
}
