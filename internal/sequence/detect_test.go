package sequence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(format string, from, to int) []string {
	var names []string
	for i := from; i <= to; i++ {
		names = append(names, fmt.Sprintf(format, i))
	}
	return names
}

func TestDetectWithoutRun(t *testing.T) {
	listing := NewListing("notes.txt", "notes1.txt", "notes2.txt")
	assert.Equal(t, []string{"notes.txt"}, Detect("/tmp/notes.txt", listing))
	assert.Equal(t, []string{"a.b.c"}, Detect("a.b.c", listing))
}

func TestDetectApproximateBoundary(t *testing.T) {
	listing := NewListing("frame005.vtk", "frame006.vtk", "frame007.vtk", "frame008.vtk", "frame010.vtk", "other.txt")

	det := Analyze("/data/frame007.vtk", listing)

	assert.Equal(t, Range{Min: 5, Max: 10}, det.Padded)
	assert.Equal(t, Range{Min: 7, Max: 7}, det.Unpadded)
	assert.Equal(t, Padded, det.Pattern)
	// 009 is missing but the upward probe reaches 010 through 008.
	assert.Equal(t, []string{"frame005.vtk", "frame006.vtk", "frame007.vtk", "frame008.vtk", "frame010.vtk"}, det.Files)
	assert.False(t, det.Singleton())
}

func TestDetectSparseListing(t *testing.T) {
	// Each value doubles the gap, so the probe range grows far beyond the listing.
	var want []string
	for i := 1; i <= 25; i++ {
		want = append(want, fmt.Sprintf("f%d.vtk", 1<<i-2))
	}
	listing := NewListing(append([]string{"f06.vtk", "f3x.vtk", "g2.vtk", "f2.txt"}, want...)...)

	det := Analyze("/data/f0.vtk", listing)

	assert.Equal(t, Range{Min: 0, Max: 1<<25 - 2}, det.Range)
	assert.Equal(t, want, det.Files)
}

func TestMembersFromListingMatchesRange(t *testing.T) {
	listing := NewListing("frame005.vtk", "frame006.vtk", "frame7.vtk", "frame008.vtk",
		"frame010.vtk", "frame-01.vtk", "frame+09.vtk", "frame.vtk", "other.txt")
	n := Decompose("/data/frame007.vtk")

	for _, p := range []Pattern{Padded, Unpadded} {
		r := Range{Min: -5, Max: 12}
		assert.Equal(t, membersFromRange(n, listing, p, r), membersFromListing(n, listing, p, r), p.String())
	}
}

func TestDetectStopsAtUnreachableMember(t *testing.T) {
	listing := NewListing("f1.vtk", "f2.vtk", "f3.vtk", "f10.vtk")
	assert.Equal(t, []string{"f1.vtk", "f2.vtk", "f3.vtk"}, Detect("f1.vtk", listing))
}

func TestDetectTiePrefersPadded(t *testing.T) {
	names := append(numbered("img%d.png", 1, 9), numbered("img%02d.png", 1, 9)...)
	listing := NewListing(names...)

	det := Analyze("img05.png", listing)
	require.Equal(t, det.Padded.Span(), det.Unpadded.Span())
	assert.Equal(t, Padded, det.Pattern)
	assert.Equal(t, numbered("img%02d.png", 1, 9), det.Files)
}

func TestDetectPicksStrictlyLargerSpan(t *testing.T) {
	names := append(numbered("img%d.png", 1, 9), numbered("img%02d.png", 1, 3)...)
	listing := NewListing(names...)

	det := Analyze("img02.png", listing)
	assert.Equal(t, Range{Min: 1, Max: 3}, det.Padded)
	assert.Equal(t, Range{Min: 1, Max: 9}, det.Unpadded)
	assert.Equal(t, Unpadded, det.Pattern)
	assert.Equal(t, numbered("img%d.png", 1, 9), det.Files)

	// The chosen file is not part of the winning pattern.
	_, err := IndexOf(det.Files, "img02.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetectWithoutListing(t *testing.T) {
	assert.Equal(t, []string{"frame007.vtk"}, Detect("/data/frame007.vtk", nil))
	assert.Equal(t, []string{"frame007.vtk"}, Detect("/data/frame007.vtk", NewListing()))
}

func TestDetectContainerExtension(t *testing.T) {
	listing := NewListing(numbered("sim%04d.h5", 1, 4)...)

	assert.Equal(t, numbered("sim%04d.h5", 1, 4), Detect("sim0002.h5", listing))

	// Without the quirk the trailing '5' is read as the run.
	plain := NewDetector("nc")
	n := plain.Decompose("sim0002.h5")
	assert.Equal(t, "sim0002.h", n.Stem)
	assert.Equal(t, "5", n.Run)
	assert.Equal(t, []string{"sim0002.h5"}, plain.Detect("sim0002.h5", listing))
}

func TestDetectorFor(t *testing.T) {
	assert.Empty(t, DetectorFor(nil).Decompose("data.h5").Run, "nil uses the defaults")
	assert.Equal(t, "5", DetectorFor([]string{}).Decompose("data.h5").Run)
	assert.Empty(t, DetectorFor([]string{".NC4"}).Decompose("data.nc4").Run)
	assert.Equal(t, "5", DetectorFor([]string{"nc"}).Decompose("data.h5").Run)
}

func TestDetectNoExtension(t *testing.T) {
	listing := NewListing("frame001", "frame002", "frame003")
	assert.Equal(t, []string{"frame001", "frame002", "frame003"}, Detect("frame002", listing))
}

func TestDetectIsIdempotent(t *testing.T) {
	listing := NewListing(append(numbered("step_%03d.vtu", 0, 40), "step_050.vtu")...)

	first := Detect("step_012.vtu", listing)
	second := Detect("step_012.vtu", listing)
	assert.Equal(t, first, second)

	seen := map[string]bool{}
	for _, name := range first {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestDetectRoundTrip(t *testing.T) {
	listing := NewListing(append(numbered("cut.%04d.vtk", 3, 27), "cut.0029.vtk", "cut.0031.vtk")...)

	det := Analyze("cut.0010.vtk", listing)
	require.NotEmpty(t, det.Files)
	for _, name := range det.Files {
		n := Decompose(name)
		v, ok := n.Seed()
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, v, det.Range.Min)
		assert.LessOrEqual(t, v, det.Range.Max)
		assert.Equal(t, name, n.Candidate(det.Pattern, v))
	}
}

func TestIndexOf(t *testing.T) {
	seq := []string{"a.vtk", "b.vtk"}

	idx, err := IndexOf(seq, "b.vtk")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = IndexOf(seq, "/some/dir/b.vtk")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = IndexOf(seq, "c.vtk")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, idx)
}

func TestListing(t *testing.T) {
	var empty Listing
	assert.False(t, empty.Has("x"))
	assert.Empty(t, empty.Names())

	l := NewListing("b", "a")
	assert.True(t, l.Has("a"))
	assert.Equal(t, []string{"a", "b"}, l.Names())
}
