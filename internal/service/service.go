package service

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"fyseq/internal/entry"
	"fyseq/internal/scan"
	"fyseq/internal/sequence"
	"fyseq/internal/store"
)

// Version of fyseq, shown by the CLI and the about dialog.
const Version = "0.3.0"

// Service is the main entry point for business logic shared by the CLI and
// the GUI.
type Service struct {
	Store    store.SequenceStore
	Lister   scan.DirectoryLister
	Detector *sequence.Detector
	Logger   func(string)
}

// NewService constructs a new Service using the default container extensions.
func NewService(st store.SequenceStore, lister scan.DirectoryLister, logger func(string)) *Service {
	return &Service{
		Store:    st,
		Lister:   lister,
		Detector: sequence.NewDetector(),
		Logger:   logger,
	}
}

func (s *Service) logMessage(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger(fmt.Sprintf(format, args...))
	}
}

// NewEntry builds an entry controller bound to the service's store, lister
// and detector.
func (s *Service) NewEntry(key string, onChanged func(value string, timeStep int)) *entry.Entry {
	return entry.New(entry.Options{
		Key:       key,
		Store:     s.Store,
		Lister:    s.Lister,
		Detector:  s.Detector,
		Logger:    entry.LoggerFunc(s.Logger),
		OnChanged: onChanged,
	})
}

// list returns the listing of dir. Failures degrade to an empty listing.
func (s *Service) list(dir string) scan.FileItems {
	if s.Lister == nil {
		return nil
	}
	items, err := s.Lister.List(dir)
	if err != nil {
		s.logMessage("Error listing %s: %v", dir, err)
		return nil
	}
	return items
}

// Report describes the sequence detected for one file.
type Report struct {
	File     string   `json:"file" yaml:"file"`
	Dir      string   `json:"dir" yaml:"dir"`
	Stem     string   `json:"stem" yaml:"stem"`
	Run      string   `json:"run" yaml:"run"`
	Ext      string   `json:"ext" yaml:"ext"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Min      int      `json:"min" yaml:"min"`
	Max      int      `json:"max" yaml:"max"`
	Index    int      `json:"index" yaml:"index"` // -1 when the file is not part of the winning pattern
	Files    []string `json:"files" yaml:"files"`
	Listed   int      `json:"listed" yaml:"listed"`
	Fallback bool     `json:"fallback" yaml:"fallback"`
}

// Detect lists the directory of path and reports the sequence path belongs to.
func (s *Service) Detect(path string) (*Report, error) {
	if path == "" {
		return nil, errors.New("file path required")
	}
	name := s.Detector.Decompose(path)
	if name.Base == "" {
		return nil, fmt.Errorf("%q names a directory, not a file", path)
	}
	items := s.list(name.Dir)
	det := s.Detector.Analyze(path, items.Listing())

	idx, err := sequence.IndexOf(det.Files, path)
	if err != nil {
		idx = -1
	}
	return &Report{
		File:     path,
		Dir:      name.Dir,
		Stem:     name.Stem,
		Run:      name.Run,
		Ext:      name.Ext,
		Pattern:  det.Pattern.String(),
		Min:      det.Range.Min,
		Max:      det.Range.Max,
		Index:    idx,
		Files:    det.Files,
		Listed:   len(items),
		Fallback: det.Singleton(),
	}, nil
}

// Open detects the sequence of path and accepts it under key.
func (s *Service) Open(key, path string) (*store.Record, error) {
	e := s.NewEntry(key, nil)
	if err := e.SetValue(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := e.Accept(); err != nil {
		return nil, err
	}
	return s.Store.Load(key)
}

// Step moves the entry stored under key to timestep ts and accepts it.
func (s *Service) Step(key string, ts int) (*store.Record, error) {
	e := s.NewEntry(key, nil)
	if err := e.Reset(); err != nil {
		return nil, err
	}
	if err := e.SetTimeStep(ts); err != nil {
		return nil, err
	}
	if err := e.Accept(); err != nil {
		return nil, err
	}
	return s.Store.Load(key)
}

// Show returns the record stored under key.
func (s *Service) Show(key string) (*store.Record, error) {
	if key == "" {
		return nil, errors.New("key required")
	}
	return s.Store.Load(key)
}

// Forget removes the record stored under key.
func (s *Service) Forget(key string) error {
	if _, err := s.Show(key); err != nil {
		return err
	}
	if err := s.Store.Delete(key); err != nil {
		return fmt.Errorf("failed to forget %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key.
func (s *Service) Keys() ([]string, error) {
	return s.Store.Keys()
}

// Script renders the stored entry as a shell snippet.
func (s *Service) Script(key string) (string, error) {
	e := s.NewEntry(key, nil)
	if err := e.Reset(); err != nil {
		return "", err
	}
	return e.Script(), nil
}

// CleanStore removes records whose accepted file no longer shows up in its
// directory listing. Directories that cannot be listed for other reasons
// than being gone are left alone.
func (s *Service) CleanStore() (removed int, err error) {
	keys, err := s.Store.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to get keys: %w", err)
	}
	for _, key := range keys {
		rec, err := s.Store.Load(key)
		if err != nil {
			s.logMessage("Error loading %s: %v", key, err)
			continue
		}
		gone, err := s.Missing(rec.Value)
		if err != nil {
			s.logMessage("Error checking %s: %v", rec.Value, err)
			continue
		}
		if !gone {
			continue
		}
		if err := s.Store.Delete(key); err != nil {
			s.logMessage("Error removing %s: %v", key, err)
			continue
		}
		s.logMessage("removed %s, %s no longer exists", key, rec.Value)
		removed++
	}
	return removed, nil
}

// Missing reports whether path is no longer listed in its directory.
func (s *Service) Missing(path string) (bool, error) {
	if path == "" {
		return true, nil
	}
	if s.Lister == nil {
		return false, errors.New("no directory lister")
	}
	items, err := s.Lister.List(filepath.Dir(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	_, ok := items.Find(filepath.Base(path))
	return !ok, nil
}
