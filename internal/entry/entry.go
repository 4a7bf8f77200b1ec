// Package entry holds the state behind a file entry with a timestep scrubber:
// the chosen file, the sequence it belongs to and the selected timestep.
//
// An Entry is not safe for concurrent use. The GUI drives it from the fyne
// main goroutine and the CLI from a single command.
package entry

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyseq/internal/scan"
	"fyseq/internal/sequence"
	"fyseq/internal/store"
)

var (
	// ErrEmptyPath is returned when an empty file name is applied or accepted.
	ErrEmptyPath = errors.New("file name is empty")
	// ErrNoStore is returned when the entry has no store or key to persist to.
	ErrNoStore = errors.New("entry has no sequence store")
	// ErrOutOfRange is returned by SetTimeStep for an index outside the sequence.
	ErrOutOfRange = errors.New("timestep out of range")
	// ErrDesync means the current file could not be found in the sequence
	// right after it was added. It indicates a bug.
	ErrDesync = errors.New("current file missing from sequence")
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Options configure a new Entry. Store and Key are required for SetValue,
// Accept and Reset. A nil Lister behaves like an empty directory and a nil
// Detector uses the default container extensions.
type Options struct {
	Key      string
	Store    store.SequenceStore
	Lister   scan.DirectoryLister
	Detector *sequence.Detector
	Logger   LoggerFunc

	// OnChanged is called after the value or timestep changed. Calling
	// SetValue from inside it is ignored.
	OnChanged func(value string, timeStep int)
}

// Entry is the controller behind one file entry.
type Entry struct {
	opts Options

	value       string
	path        string // directory shared by the sequence
	stem        string // stem of the last detected name
	initialized bool
	inSetValue  bool

	available scan.FileItems
	files     []string // sequence, short names
	timeStep  int
	domain    []string // full paths, mirrored into the store on Accept
}

// New creates an Entry with the given options.
func New(opts Options) *Entry {
	if opts.Detector == nil {
		opts.Detector = sequence.NewDetector()
	}
	return &Entry{opts: opts}
}

func (e *Entry) logMessage(format string, args ...interface{}) {
	if e.opts.Logger != nil {
		e.opts.Logger(fmt.Sprintf(format, args...))
	}
}

func (e *Entry) changed() {
	if e.opts.OnChanged != nil {
		e.opts.OnChanged(e.value, e.timeStep)
	}
}

// Key returns the store key the entry persists under.
func (e *Entry) Key() string { return e.opts.Key }

// Value returns the current file name.
func (e *Entry) Value() string { return e.value }

// Dir returns the directory of the current sequence.
func (e *Entry) Dir() string { return e.path }

// TimeStep returns the selected index into Files.
func (e *Entry) TimeStep() int { return e.timeStep }

// Initialized reports whether a sequence has been detected or loaded.
func (e *Entry) Initialized() bool { return e.initialized }

// Files returns a copy of the sequence as short names.
func (e *Entry) Files() []string {
	return append([]string(nil), e.files...)
}

// Paths returns the sequence as full paths.
func (e *Entry) Paths() []string {
	paths := make([]string, len(e.files))
	for i, name := range e.files {
		paths[i] = e.fullPath(name)
	}
	return paths
}

// Domain returns the full paths committed by the last Accept or Reset.
func (e *Entry) Domain() []string {
	return append([]string(nil), e.domain...)
}

// Available returns the last directory listing.
func (e *Entry) Available() scan.FileItems {
	return append(scan.FileItems(nil), e.available...)
}

// ScrubberVisible reports whether there is more than one timestep to choose from.
func (e *Entry) ScrubberVisible() bool {
	return len(e.files) > 1
}

// Range returns the inclusive bounds of the timestep scrubber.
func (e *Entry) Range() (lo, hi int) {
	if len(e.files) == 0 {
		return 0, 0
	}
	return 0, len(e.files) - 1
}

func (e *Entry) fullPath(name string) string {
	if filepath.IsAbs(name) || e.path == "" {
		return name
	}
	return filepath.Join(e.path, name)
}

func (e *Entry) list() scan.FileItems {
	if e.opts.Lister == nil {
		return nil
	}
	items, err := e.opts.Lister.List(e.path)
	if err != nil {
		e.logMessage("Error listing %s, using an empty listing: %v", e.path, err)
		return nil
	}
	return items
}

// SetValue applies a newly chosen file. When the directory or the stem
// differs from the previous file the directory is listed again and the
// sequence is detected; otherwise the sequence is kept and only the timestep
// follows the file.
func (e *Entry) SetValue(fileName string) error {
	if e.inSetValue {
		return nil
	}
	if fileName == "" {
		return ErrEmptyPath
	}
	if e.opts.Store == nil || e.opts.Key == "" {
		return ErrNoStore
	}
	if fileName == e.value {
		return nil
	}

	e.inSetValue = true
	defer func() { e.inSetValue = false }()

	name := e.opts.Detector.Decompose(fileName)
	if name.Base == "" {
		return fmt.Errorf("%w: %q names a directory", ErrEmptyPath, fileName)
	}
	e.value = fileName

	if len(e.files) > 0 && name.Dir == e.path && name.Stem == e.stem {
		return e.UpdateTimeStep()
	}

	e.path = name.Dir
	e.stem = name.Stem
	e.available = e.list()

	det := e.opts.Detector.Analyze(fileName, e.available.Listing())
	e.files = det.Files
	e.logMessage("detected %d timesteps for %s (%s, %d..%d)",
		len(det.Files), name.Base, det.Pattern, det.Range.Min, det.Range.Max)

	if !e.initialized {
		e.domain = e.Paths()
		if idx, err := sequence.IndexOf(e.files, fileName); err == nil {
			e.timeStep = idx
		}
		e.initialized = true
	}

	return e.UpdateTimeStep()
}

// SetTimeStep selects the file at index ts of the sequence.
func (e *Entry) SetTimeStep(ts int) error {
	if ts < 0 || ts >= len(e.files) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, ts, len(e.files))
	}
	e.value = e.fullPath(e.files[ts])
	e.timeStep = ts
	e.changed()
	return nil
}

// UpdateTimeStep makes sure the current file is part of the sequence and
// selects it.
func (e *Entry) UpdateTimeStep() error {
	if e.value == "" {
		return nil
	}
	base := sequence.BaseName(e.value)
	if _, err := sequence.IndexOf(e.files, base); err != nil {
		e.files = append(e.files, base)
	}
	idx, err := sequence.IndexOf(e.files, base)
	if err != nil {
		e.logMessage("Error: cannot find %q in sequence %v", base, e.files)
		return fmt.Errorf("%w: %s", ErrDesync, base)
	}
	e.timeStep = idx
	e.changed()
	return nil
}

// UpdateAvailableFiles lists the directory again. With force the stored
// listing is replaced. The sequence itself is not re-detected.
func (e *Entry) UpdateAvailableFiles(force bool) error {
	if e.path == "" && e.value == "" {
		return nil
	}
	items := e.list()
	if force {
		e.available = items
	}
	return e.UpdateTimeStep()
}

// Redetect lists the directory and detects the sequence of the current file
// again, keeping the current file selected. It is used when the directory
// changes on disk.
func (e *Entry) Redetect() error {
	if e.value == "" {
		return nil
	}
	e.available = e.list()
	e.files = e.opts.Detector.Detect(e.value, e.available.Listing())
	return e.UpdateTimeStep()
}

// Accept commits the current value, sequence and timestep to the store. A
// value that is not part of the sequence replaces the sequence.
func (e *Entry) Accept() error {
	if e.value == "" {
		return ErrEmptyPath
	}
	if e.opts.Store == nil || e.opts.Key == "" {
		return ErrNoStore
	}

	base := sequence.BaseName(e.value)
	if _, err := sequence.IndexOf(e.files, base); err != nil {
		e.files = []string{base}
	}
	if err := e.UpdateTimeStep(); err != nil {
		return err
	}
	e.domain = e.Paths()

	rec := store.Record{
		Key:      e.opts.Key,
		Value:    e.value,
		Files:    e.Domain(),
		TimeStep: e.timeStep,
		Updated:  time.Now(),
	}
	if err := e.opts.Store.Save(rec); err != nil {
		return fmt.Errorf("failed to save %s: %w", e.opts.Key, err)
	}
	e.logMessage("accepted %s at timestep %d of %d", e.value, e.timeStep, len(e.files))
	return nil
}

// Reset reloads value, sequence and timestep from the store. It returns an
// error wrapping store.ErrNotFound when nothing was accepted under the key.
func (e *Entry) Reset() error {
	if e.opts.Store == nil || e.opts.Key == "" {
		return ErrNoStore
	}
	rec, err := e.opts.Store.Load(e.opts.Key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", e.opts.Key, err)
	}
	if rec.Value == "" {
		return fmt.Errorf("record %s: %w", e.opts.Key, ErrEmptyPath)
	}

	name := e.opts.Detector.Decompose(rec.Value)
	if name.Base == "" {
		return fmt.Errorf("record %s: %w: %q names a directory", e.opts.Key, ErrEmptyPath, rec.Value)
	}
	e.value = rec.Value
	e.path = name.Dir
	e.stem = name.Stem
	e.domain = append([]string(nil), rec.Files...)
	e.files = make([]string, 0, len(rec.Files))
	for _, f := range rec.Files {
		e.files = append(e.files, sequence.BaseName(f))
	}
	e.initialized = true

	if rec.TimeStep >= 0 && rec.TimeStep < len(e.files) {
		e.timeStep = rec.TimeStep
	}
	return e.UpdateTimeStep()
}

// Script renders the entry as a shell snippet: the array of sequence files
// and the selected element when there is more than one, the value otherwise.
func (e *Entry) Script() string {
	var b strings.Builder
	if len(e.files) > 1 {
		b.WriteString("FILES=(\n")
		for _, p := range e.Paths() {
			b.WriteString("  ")
			b.WriteString(shellQuote(p))
			b.WriteByte('\n')
		}
		b.WriteString(")\n")
		fmt.Fprintf(&b, "FILE=\"${FILES[%d]}\"\n", e.timeStep)
		return b.String()
	}
	fmt.Fprintf(&b, "FILE=%s\n", shellQuote(e.value))
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
