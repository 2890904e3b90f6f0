package timeline

import "testing"

func TestSequencer_ResetOnGap(t *testing.T) {
	s := NewSequencer()

	resets := 0
	for _, seq := range []int64{5, 6, 8} {
		if s.OnFragment(seq) {
			resets++
		}
	}
	// 5 from the no-fragments sentinel is a gap, 6 is contiguous, 8
	// skips 7.
	if resets != 2 {
		t.Errorf("reset count = %d, want 2", resets)
	}
}

func TestSequencer_ContiguousFromZero(t *testing.T) {
	s := NewSequencer()
	if s.OnFragment(0) {
		t.Error("sequence 0 follows the sentinel contiguously, no reset expected")
	}
	if s.OnFragment(1) {
		t.Error("sequence 1 is contiguous, no reset expected")
	}
}

func TestSequencer_BackwardJump(t *testing.T) {
	s := NewSequencer()
	s.OnFragment(0)
	s.OnFragment(1)
	if !s.OnFragment(0) {
		t.Error("rewind to an earlier sequence must reset")
	}
	// State updated unconditionally: 1 now follows 0.
	if s.OnFragment(1) {
		t.Error("sequence 1 after replayed 0 is contiguous")
	}
}

func TestSequencer_Reset(t *testing.T) {
	s := NewSequencer()
	s.OnFragment(0)
	s.Reset()
	if s.OnFragment(0) {
		t.Error("after reset, sequence 0 is contiguous with the sentinel")
	}
}
