// Package timeline implements the caption and subtitle sequencing core:
// fragment discontinuity tracking, reference-timestamp gating,
// per-discontinuity timestamp rebasing, and overlap-based cue
// deduplication.
package timeline

import (
	"math"

	"github.com/zsiec/cueflow/media"
)

// Action is the overlap resolver's verdict for a candidate cue span.
type Action int

const (
	// Forward accepts the candidate as a new standalone range.
	Forward Action = iota
	// ForwardMerged accepts the candidate after it extended one or more
	// existing ranges.
	ForwardMerged
	// Drop rejects the candidate: the majority of it was already covered.
	Drop
)

// RangeStore holds the union of time spans covered by emitted caption
// cues. Fragment boundaries are fetched with deliberate small overlaps,
// so re-decoded captions at a boundary arrive as near-duplicate spans;
// the store's job is to let small overlaps through while suppressing
// majority duplicates.
type RangeStore struct {
	ranges []media.CueRange
}

// Submit resolves candidate [start, end] against the accepted ranges.
// Ranges are scanned newest to oldest by index, and extended in place as
// overlaps are found. If at any point more than half of the candidate's
// duration lies inside a range, the scan stops and the candidate is
// dropped; extensions applied before that point are kept. A candidate
// overlapping exactly half is kept. A candidate that never merged is
// appended as a new range.
func (s *RangeStore) Submit(start, end float64) Action {
	merged := false
	for i := len(s.ranges) - 1; i >= 0; i-- {
		r := &s.ranges[i]
		overlap := math.Min(r.End, end) - math.Max(r.Start, start)
		if overlap < 0 {
			continue
		}
		r.Start = math.Min(r.Start, start)
		r.End = math.Max(r.End, end)
		merged = true
		// IEEE division handles the degenerate cases: a zero-duration
		// candidate inside a range yields +Inf and is dropped, and a
		// zero-duration candidate touching a range edge yields NaN,
		// which fails the comparison and keeps the candidate.
		if overlap/(end-start) > 0.5 {
			return Drop
		}
	}
	if !merged {
		s.ranges = append(s.ranges, media.CueRange{Start: start, End: end})
		return Forward
	}
	return ForwardMerged
}

// Ranges returns a copy of the accepted ranges, newest last.
func (s *RangeStore) Ranges() []media.CueRange {
	out := make([]media.CueRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Reset empties the store.
func (s *RangeStore) Reset() {
	s.ranges = s.ranges[:0]
}
