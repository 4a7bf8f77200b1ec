// Package scan lists the files of a directory for sequence detection.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fyseq/internal/sequence"

	"github.com/gobwas/glob"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// FileItem is one entry of a directory listing.
type FileItem struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileItems is a slice of FileItem, sorted by name.
type FileItems []FileItem

// Names returns the bare file names in listing order.
func (items FileItems) Names() []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// Listing converts the items into the membership set used by the detector.
func (items FileItems) Listing() sequence.Listing {
	return sequence.NewListing(items.Names()...)
}

// Find looks up an item by name.
func (items FileItems) Find(name string) (FileItem, bool) {
	i := sort.Search(len(items), func(i int) bool { return items[i].Name >= name })
	if i < len(items) && items[i].Name == name {
		return items[i], true
	}
	return FileItem{}, false
}

// DirectoryLister abstracts directory listing so callers can be tested
// without touching the file system.
type DirectoryLister interface {
	List(dir string) (FileItems, error)
}

// Lister lists directories with os.ReadDir. Directories are skipped and, when a
// filter is set, only names matching it are kept.
type Lister struct {
	pattern string
	filter  glob.Glob
	logger  LoggerFunc
}

// NewLister creates a Lister. filter is a glob such as "*.vtk"; empty keeps
// every file.
func NewLister(filter string, logger LoggerFunc) (*Lister, error) {
	l := &Lister{pattern: filter, logger: logger}
	if filter != "" {
		g, err := glob.Compile(filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
		l.filter = g
	}
	return l, nil
}

// Filter returns the glob pattern the lister was created with.
func (l *Lister) Filter() string {
	return l.pattern
}

func (l *Lister) logMessage(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger(fmt.Sprintf(format, args...))
	}
}

// List returns the files of dir sorted by name. An empty dir means the
// current directory.
func (l *Lister) List(dir string) (FileItems, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	items := make(FileItems, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if l.filter != nil && !l.filter.Match(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			l.logMessage("skipping %s: %v", filepath.Join(dir, e.Name()), err)
			continue
		}
		items = append(items, FileItem{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	l.logMessage("listed %d files in %s", len(items), dir)
	return items, nil
}
