package timeline

// Sequencer tracks main-fragment sequence continuity. A fragment whose
// sequence number is not exactly one past the previous fragment's means
// the player seeked or the stream spliced; the caption decoder's
// accumulated control-code state belongs to the old position and must be
// discarded before feeding it new data.
type Sequencer struct {
	lastSeq int64
}

// NewSequencer returns a Sequencer that has seen no fragments yet.
func NewSequencer() *Sequencer {
	return &Sequencer{lastSeq: -1}
}

// OnFragment records a main-fragment sequence number and reports whether
// the caption decoder must be reset. This is recovery, not failure: a
// gap is never an error.
func (s *Sequencer) OnFragment(seq int64) bool {
	reset := seq != s.lastSeq+1
	s.lastSeq = seq
	return reset
}

// Reset returns the sequencer to its initial no-fragments-seen state.
func (s *Sequencer) Reset() {
	s.lastSeq = -1
}
