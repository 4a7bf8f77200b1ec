package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyseq/internal/scan"
	"fyseq/internal/service"
	"fyseq/internal/store"
)

type fakeLister struct {
	dirs map[string][]string
}

func (f *fakeLister) List(dir string) (scan.FileItems, error) {
	var items scan.FileItems
	for _, name := range f.dirs[dir] {
		items = append(items, scan.FileItem{Name: name})
	}
	return items, nil
}

func newTestService() *service.Service {
	lister := &fakeLister{dirs: map[string][]string{
		"/data": {"frame000.vtk", "frame001.vtk", "frame002.vtk", "frame003.vtk", "frame004.vtk", "notes.txt"},
	}}
	return service.NewService(store.NewMemoryStore(), lister, nil)
}

func TestFileEntryShowsScrubberForSequence(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	svc := newTestService()
	fe := NewFileEntry("File", w)
	var calls int
	fe.OnChanged = func(string, int) { calls++ }
	fe.SetController(svc.NewEntry("reader", fe.Changed))
	w.SetContent(fe)

	fe.Apply("/data/frame002.vtk")

	assert.True(t, fe.scrubber.Visible())
	assert.Equal(t, 4.0, fe.slider.Max)
	assert.Equal(t, 2.0, fe.slider.Value)
	assert.Equal(t, "/data/frame002.vtk", fe.entry.Text)
	assert.Equal(t, "2", fe.stepEntry.Text)
	assert.Equal(t, "[0, 4]", fe.rangeLabel.Text)

	fe.StepTo(4)
	assert.Equal(t, filepath.Join("/data", "frame004.vtk"), fe.entry.Text)
	assert.Equal(t, 4, fe.Controller().TimeStep())
	assert.Positive(t, calls)
}

func TestFileEntryHidesScrubberForSingleFile(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	svc := newTestService()
	fe := NewFileEntry("File", w)
	fe.SetController(svc.NewEntry("reader", fe.Changed))
	w.SetContent(fe)

	fe.Apply("/data/notes.txt")

	assert.False(t, fe.scrubber.Visible())
	assert.Equal(t, "/data/notes.txt", fe.entry.Text)
}

func TestFileEntryReportsOutOfRange(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	svc := newTestService()
	fe := NewFileEntry("File", w)
	var got error
	fe.OnError = func(err error) { got = err }
	fe.SetController(svc.NewEntry("reader", fe.Changed))

	fe.Apply("/data/frame001.vtk")
	fe.StepTo(9)

	require.Error(t, got)
	assert.Equal(t, 1, fe.Controller().TimeStep())
	assert.Equal(t, "/data/frame001.vtk", fe.entry.Text)
}

func TestLogUIManagerPaging(t *testing.T) {
	test.NewApp()
	label := widget.NewLabel("")
	up := widget.NewButton("", nil)
	down := widget.NewButton("", nil)
	lm := NewLogUIManager(label, up, down, 3)

	lm.UpdateLogDisplay()
	assert.True(t, up.Disabled())
	assert.True(t, down.Disabled())

	for i := 1; i <= 4; i++ {
		lm.AddLogMessage(fmt.Sprintf("msg %d", i))
	}
	assert.Equal(t, []string{"msg 2", "msg 3", "msg 4"}, lm.Messages())
	assert.Equal(t, "[3/3] msg 4", label.Text)
	assert.False(t, up.Disabled())
	assert.True(t, down.Disabled())

	lm.ShowPreviousLogMessage()
	lm.ShowPreviousLogMessage()
	lm.ShowPreviousLogMessage()
	assert.Equal(t, "[1/3] msg 2", label.Text)
	assert.True(t, up.Disabled())

	lm.ShowNextLogMessage()
	assert.Equal(t, "[2/3] msg 3", label.Text)
	assert.False(t, down.Disabled())
}

func TestFormatNumberWithCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-98765, "-98,765"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumberWithCommas(tt.in))
	}
}

func TestAppOpensFileAndNavigates(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("step_%d.csv", i)), []byte("x"), 0o644))
	}
	lister, err := scan.NewLister("", nil)
	require.NoError(t, err)
	svc := service.NewService(store.NewMemoryStore(), lister, nil)

	fyneApp := test.NewApp()
	a := NewApp(fyneApp, svc, nil, Options{File: filepath.Join(dir, "step_1.csv"), HistorySize: 5, Debounce: time.Hour})
	defer a.shutdown()

	ctrl := a.fileEntry.Controller()
	assert.Equal(t, []string{"step_1.csv", "step_2.csv", "step_3.csv"}, ctrl.Files())
	assert.Equal(t, 0, ctrl.TimeStep())
	assert.Equal(t, 1, a.history.Len())
	assert.Equal(t, dir, a.watchedDir)

	a.stepBy(1)
	assert.Equal(t, 1, ctrl.TimeStep())
	a.lastStep()
	assert.Equal(t, 2, ctrl.TimeStep())
	a.stepBy(5)
	assert.Equal(t, 2, ctrl.TimeStep())
	a.firstStep()
	assert.Equal(t, 0, ctrl.TimeStep())

	// Stepping inside one sequence is not a new history entry.
	assert.Equal(t, 1, a.history.Len())
	assert.Contains(t, a.UI.statusPathLabel.Text, "Timestep 0 / 2")
	assert.Contains(t, a.UI.statusPathLabel.Text, "Paused")

	a.accept()
	rec, err := svc.Store.Load(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "step_1.csv"), rec.Value)
	assert.Len(t, rec.Files, 3)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "step_4.csv"), []byte("x"), 0o644))
	a.refresh()
	assert.Len(t, ctrl.Files(), 4)
	assert.Equal(t, 0, ctrl.TimeStep())
}

func TestAppPlayTick(t *testing.T) {
	fyneApp := test.NewApp()
	a := NewApp(fyneApp, newTestService(), nil, Options{File: "/data/frame003.vtk", Loop: false})
	defer a.shutdown()

	a.togglePlay()
	assert.False(t, a.player.IsPaused())
	assert.True(t, a.playTick())
	assert.Equal(t, 4, a.fileEntry.Controller().TimeStep())
	assert.Equal(t, theme.MediaPauseIcon().Name(), a.UI.pauseAction.Icon.Name())

	assert.False(t, a.playTick())
	assert.Equal(t, 4, a.fileEntry.Controller().TimeStep())
	assert.True(t, a.player.IsPaused())
	assert.Equal(t, theme.MediaPlayIcon().Name(), a.UI.pauseAction.Icon.Name())
	assert.Contains(t, a.UI.statusPathLabel.Text, "Paused")
}

func TestAppHistoryDropsDeletedDataset(t *testing.T) {
	root := t.TempDir()
	dirs := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(dir, 0o755))
		for i := 1; i <= 2; i++ {
			require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s_%d.csv", name, i)), []byte("x"), 0o644))
		}
		dirs[name] = filepath.Join(dir, name+"_1.csv")
	}
	lister, err := scan.NewLister("", nil)
	require.NoError(t, err)
	svc := service.NewService(store.NewMemoryStore(), lister, nil)

	fyneApp := test.NewApp()
	a := NewApp(fyneApp, svc, nil, Options{File: dirs["a"], HistorySize: 10, Debounce: time.Hour})
	defer a.shutdown()

	a.fileEntry.Apply(dirs["b"])
	a.fileEntry.Apply(dirs["c"])
	require.Equal(t, 3, a.history.Len())

	require.NoError(t, os.Remove(dirs["b"]))
	a.historyBack()

	assert.Equal(t, dirs["a"], a.fileEntry.Controller().Value())
	assert.Equal(t, 2, a.history.Len())
	assert.Contains(t, a.logUIManager.Messages(), "Removed b_1.csv from history, the file is gone")

	a.historyForward()
	assert.Equal(t, dirs["c"], a.fileEntry.Controller().Value())
	assert.False(t, a.history.CanForward())

	a.clearHistory()
	assert.Equal(t, 1, a.history.Len())
	cur, ok := a.history.Current()
	require.True(t, ok)
	assert.Equal(t, dirs["c"], cur)
	assert.False(t, a.history.CanBack())
}

func TestAppToggleLoop(t *testing.T) {
	fyneApp := test.NewApp()
	a := NewApp(fyneApp, newTestService(), nil, Options{File: "/data/frame004.vtk", Loop: false})
	defer a.shutdown()

	require.NotNil(t, a.UI.loopItem)
	assert.False(t, a.UI.loopItem.Checked)

	a.toggleLoop()
	assert.True(t, a.player.Loop())
	assert.True(t, a.UI.loopItem.Checked)

	// At the last timestep a looping player wraps to the first one.
	a.togglePlay()
	assert.True(t, a.playTick())
	assert.Equal(t, 0, a.fileEntry.Controller().TimeStep())

	a.toggleLoop()
	assert.False(t, a.player.Loop())
	assert.False(t, a.UI.loopItem.Checked)
}

func TestAppShowLog(t *testing.T) {
	fyneApp := test.NewApp()
	a := NewApp(fyneApp, newTestService(), nil, Options{File: "/data/frame001.vtk"})
	defer a.shutdown()

	a.addLogMessage("first")
	a.addLogMessage("second")
	a.showLog()

	overlays := a.UI.MainWin.Canvas().Overlays()
	require.NotNil(t, overlays.Top())
	assert.Contains(t, a.logUIManager.Messages(), "second")
}
