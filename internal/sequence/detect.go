package sequence

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned by IndexOf when a name is not part of a sequence.
var ErrNotFound = errors.New("file not found in sequence")

// Listing is a snapshot of the file names present in one directory.
// A nil Listing is valid and empty.
type Listing map[string]struct{}

// NewListing builds a Listing from bare file names.
func NewListing(names ...string) Listing {
	l := make(Listing, len(names))
	for _, name := range names {
		l[name] = struct{}{}
	}
	return l
}

// Has reports whether name is present.
func (l Listing) Has(name string) bool {
	_, ok := l[name]
	return ok
}

// Names returns the names in lexical order.
func (l Listing) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detection is the full result of analysing one chosen file.
type Detection struct {
	Name     Name
	Padded   Range
	Unpadded Range
	Pattern  Pattern  // winning pattern
	Range    Range    // range of the winning pattern
	Files    []string // present siblings in frame order, never empty
}

// Singleton reports whether detection fell back to the chosen file alone.
func (d Detection) Singleton() bool {
	return len(d.Files) == 1 && d.Files[0] == d.Name.Base
}

// Detector holds the few knobs that change how names are decomposed.
// It carries no per-call state and is safe to share.
type Detector struct {
	containers map[string]bool
}

// NewDetector returns a Detector that treats the given extensions as container
// formats. With no arguments DefaultContainerExtensions are used.
func NewDetector(containerExts ...string) *Detector {
	if len(containerExts) == 0 {
		containerExts = DefaultContainerExtensions
	}
	return DetectorFor(containerExts)
}

// DetectorFor builds a Detector from a configured extension list. A nil list
// means DefaultContainerExtensions; an empty, non-nil list turns container
// handling off.
func DetectorFor(containerExts []string) *Detector {
	if containerExts == nil {
		containerExts = DefaultContainerExtensions
	}
	d := &Detector{containers: make(map[string]bool, len(containerExts))}
	for _, ext := range containerExts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			d.containers[ext] = true
		}
	}
	return d
}

var defaultDetector = NewDetector()

// Decompose splits fileName using the default container extensions.
func Decompose(fileName string) Name {
	return defaultDetector.Decompose(fileName)
}

// Analyze runs detection with the default container extensions.
func Analyze(fileName string, listing Listing) Detection {
	return defaultDetector.Analyze(fileName, listing)
}

// Detect returns the sequence fileName belongs to, using the default detector.
func Detect(fileName string, listing Listing) []string {
	return defaultDetector.Detect(fileName, listing)
}

// Decompose splits fileName into directory, stem, numeric run and extension.
func (d *Detector) Decompose(fileName string) Name {
	return d.decompose(fileName)
}

// Detect returns the ordered short names of the sequence fileName belongs to.
func (d *Detector) Detect(fileName string, listing Listing) []string {
	return d.Analyze(fileName, listing).Files
}

// Analyze decomposes fileName, probes the listing under both patterns, keeps
// the one with the strictly larger span (padded on a tie) and returns the
// siblings of that range that are present in the listing. It always returns at
// least the chosen file.
func (d *Detector) Analyze(fileName string, listing Listing) Detection {
	n := d.decompose(fileName)
	det := Detection{Name: n, Pattern: Padded}

	seed, ok := n.Seed()
	if !ok {
		det.Files = []string{n.Base}
		return det
	}

	det.Padded = FindRange(n, listing, Padded)
	det.Unpadded = FindRange(n, listing, Unpadded)
	det.Range = det.Padded
	if det.Unpadded.Span() > det.Padded.Span() {
		det.Pattern = Unpadded
		det.Range = det.Unpadded
	}

	if rangeExceeds(det.Range, len(listing)) {
		det.Files = membersFromListing(n, listing, det.Pattern, det.Range)
	} else {
		det.Files = membersFromRange(n, listing, det.Pattern, det.Range)
	}

	if len(det.Files) == 0 {
		det.Range = Range{Min: seed, Max: seed}
		det.Files = []string{n.Base}
	}
	return det
}

// rangeExceeds reports whether r covers more values than there are names.
func rangeExceeds(r Range, names int) bool {
	return uint(r.Max-r.Min) >= uint(names)
}

// membersFromRange generates every candidate of r and keeps the listed ones.
func membersFromRange(n Name, listing Listing, p Pattern, r Range) []string {
	var files []string
	for v := r.Min; ; v++ {
		if name := n.Candidate(p, v); listing.Has(name) {
			files = append(files, name)
		}
		if v == r.Max {
			break
		}
	}
	return files
}

// membersFromListing finds the same members as membersFromRange by parsing
// the listed names, for ranges much wider than the listing.
func membersFromListing(n Name, listing Listing, p Pattern, r Range) []string {
	type member struct {
		v    int
		name string
	}
	suffix := ""
	if n.dotted {
		suffix = "." + n.Ext
	}

	var found []member
	for name := range listing {
		if len(name) <= len(n.Stem)+len(suffix) ||
			!strings.HasPrefix(name, n.Stem) || !strings.HasSuffix(name, suffix) {
			continue
		}
		digits := name[len(n.Stem) : len(name)-len(suffix)]
		v, err := strconv.Atoi(digits)
		if err != nil || v < r.Min || v > r.Max {
			continue
		}
		if n.Candidate(p, v) != name {
			continue
		}
		found = append(found, member{v: v, name: name})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].v < found[j].v })

	files := make([]string, len(found))
	for i, m := range found {
		files[i] = m.name
	}
	return files
}

// BaseName returns the file name part of fileName the way detection sees it:
// a path ending in a separator has an empty base name.
func BaseName(fileName string) string {
	_, base := splitPath(fileName)
	return base
}

// IndexOf returns the position of fileName in sequence, comparing base names
// only. It returns ErrNotFound when the name is absent.
func IndexOf(sequence []string, fileName string) (int, error) {
	_, base := splitPath(fileName)
	for i, name := range sequence {
		if name == base {
			return i, nil
		}
	}
	return -1, ErrNotFound
}
