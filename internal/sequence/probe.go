package sequence

import (
	"fmt"
	"math"
	"strconv"
)

// Pattern is one of the two ways a frame number can be written back into a name.
type Pattern int

const (
	// Padded writes numbers with the width of the original run ("007").
	Padded Pattern = iota
	// Unpadded writes numbers with their natural width ("7").
	Unpadded
)

func (p Pattern) String() string {
	switch p {
	case Padded:
		return "padded"
	case Unpadded:
		return "unpadded"
	default:
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
}

// Format renders v under the pattern. width is only used by Padded.
func (p Pattern) Format(v, width int) string {
	if p == Padded {
		return fmt.Sprintf("%0*d", width, v)
	}
	return strconv.Itoa(v)
}

// Range is an inclusive interval of frame numbers. Only the endpoints are known
// to exist; values in between may be missing.
type Range struct {
	Min int
	Max int
}

// Span is Max-Min.
func (r Range) Span() int {
	return r.Max - r.Min
}

// Len is the number of integers covered by the range.
func (r Range) Len() int {
	return r.Max - r.Min + 1
}

// ProbeUp searches upward from seed with a doubling offset that halves on every
// miss, starting at 2 and stopping when it reaches 0. It returns the largest
// value reached. Gaps in the series can be jumped over; values between seed and
// the result are not checked.
func ProbeUp(seed int, exists func(int) bool) int {
	limit := seed
	for offset := 2; offset != 0; {
		if limit <= math.MaxInt-offset && exists(limit+offset) {
			limit += offset
			offset <<= 1
		} else {
			offset >>= 1
		}
	}
	return limit
}

// ProbeDown is ProbeUp in the decreasing direction.
func ProbeDown(seed int, exists func(int) bool) int {
	limit := seed
	for offset := 2; offset != 0; {
		if limit >= math.MinInt+offset && exists(limit-offset) {
			limit -= offset
			offset <<= 1
		} else {
			offset >>= 1
		}
	}
	return limit
}

// FindRange probes the listing in both directions for siblings of n written
// with pattern p. A name without a usable run yields the empty range {0, 0}.
func FindRange(n Name, listing Listing, p Pattern) Range {
	seed, ok := n.Seed()
	if !ok {
		return Range{}
	}
	exists := func(v int) bool {
		return listing.Has(n.Candidate(p, v))
	}
	return Range{
		Min: ProbeDown(seed, exists),
		Max: ProbeUp(seed, exists),
	}
}
