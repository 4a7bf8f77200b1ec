// Package sequence infers the family of numbered sibling files ("timesteps")
// that a chosen file belongs to. Everything here is pure: the directory
// listing is handed in as a snapshot and never re-queried.
package sequence

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultContainerExtensions are extensions whose trailing digit is part of the
// format name rather than a frame number (e.g. "data.h5").
var DefaultContainerExtensions = []string{"h5"}

// Name is a chosen file name split into the parts used to regenerate its siblings.
type Name struct {
	Dir  string // directory part, "" when the name has none
	Base string // file name without directory
	Stem string // everything before the numeric run
	Run  string // literal trailing digits, may be zero padded or empty
	Ext  string // text after the last '.', without the dot

	dotted bool
}

// HasRun reports whether a numeric run was found.
func (n Name) HasRun() bool {
	return n.Run != ""
}

// Seed returns the integer value of the numeric run. ok is false when there is
// no run or it does not fit in an int.
func (n Name) Seed() (seed int, ok bool) {
	if n.Run == "" {
		return 0, false
	}
	v, err := strconv.Atoi(n.Run)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Width is the literal width of the run, used by the padded pattern.
func (n Name) Width() int {
	return len(n.Run)
}

// Candidate builds the sibling name for value v under pattern p.
func (n Name) Candidate(p Pattern, v int) string {
	var b strings.Builder
	b.WriteString(n.Stem)
	b.WriteString(p.Format(v, n.Width()))
	if n.dotted {
		b.WriteByte('.')
		b.WriteString(n.Ext)
	}
	return b.String()
}

// Path joins Dir and Base back together.
func (n Name) Path() string {
	if n.Dir == "" {
		return n.Base
	}
	return filepath.Join(n.Dir, n.Base)
}

func (n Name) String() string {
	return fmt.Sprintf("%s[%s].%s", n.Stem, n.Run, n.Ext)
}

// scanState is the state of the backward digit scan.
type scanState int

const (
	// inExtension: still inside the presumed extension. Non-digits are skipped
	// until a digit has been seen; the first '.' switches to inNumber.
	inExtension scanState = iota
	// inNumber: past the extension separator. Only digits continue the run.
	inNumber
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanRun walks base from its end towards its start and returns the length of
// the stem and the digits of the numeric run. The byte at index mask never
// counts as a digit (pass -1 to disable masking).
func scanRun(base string, mask int) (stemLen int, run string) {
	state := inExtension
	digits := make([]byte, 0, len(base))

	i := len(base) - 1
scan:
	for ; i >= 0; i-- {
		c := base[i]
		switch {
		case i != mask && isDigit(c):
			digits = append(digits, c)
		case state == inExtension && c == '.':
			state = inNumber
			digits = digits[:0]
		case state == inNumber || len(digits) > 0:
			break scan
		}
	}

	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return i + 1, string(digits)
}

func splitPath(fileName string) (dir, base string) {
	dir, base = filepath.Split(fileName)
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	return dir, base
}

func (d *Detector) decompose(fileName string) Name {
	dir, base := splitPath(fileName)
	n := Name{Dir: dir, Base: base}

	if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
		n.Ext = base[dot+1:]
		n.dotted = true
	}

	mask := -1
	if d.containers[strings.ToLower(n.Ext)] && base != "" {
		mask = len(base) - 1
	}

	stemLen, run := scanRun(base, mask)
	n.Stem = base[:stemLen]
	n.Run = run
	return n
}
