package timeline

import "testing"

func TestRangeStore_AppendWhenDisjoint(t *testing.T) {
	s := &RangeStore{}

	if got := s.Submit(0, 10); got != Forward {
		t.Errorf("first candidate: got %v, want Forward", got)
	}
	if got := s.Submit(20, 30); got != Forward {
		t.Errorf("disjoint candidate: got %v, want Forward", got)
	}
	if n := len(s.Ranges()); n != 2 {
		t.Errorf("expected 2 stored ranges, got %d", n)
	}
}

func TestRangeStore_MergeUnderThreshold(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)

	// Overlap 2 over duration 12: ratio ~0.167, candidate kept, range extended.
	if got := s.Submit(8, 20); got != ForwardMerged {
		t.Errorf("got %v, want ForwardMerged", got)
	}
	ranges := s.Ranges()
	if len(ranges) != 1 {
		t.Fatalf("expected 1 merged range, got %d", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != 20 {
		t.Errorf("merged range = [%v,%v], want [0,20]", ranges[0].Start, ranges[0].End)
	}
}

func TestRangeStore_DropMajorityOverlap(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)
	s.Submit(8, 20)

	// Overlap 2 over duration 2: ratio 1.0, dropped; range untouched.
	if got := s.Submit(9, 11); got != Drop {
		t.Errorf("got %v, want Drop", got)
	}
	ranges := s.Ranges()
	if len(ranges) != 1 || ranges[0].Start != 0 || ranges[0].End != 20 {
		t.Errorf("store after drop = %v, want [[0,20]]", ranges)
	}
}

func TestRangeStore_ExactlyHalfKept(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)

	// Overlap 5 over duration 10: ratio exactly 0.5 is not a drop.
	if got := s.Submit(5, 15); got != ForwardMerged {
		t.Errorf("got %v, want ForwardMerged at ratio 0.5", got)
	}
	ranges := s.Ranges()
	if len(ranges) != 1 || ranges[0].End != 15 {
		t.Errorf("store = %v, want [[0,15]]", ranges)
	}
}

func TestRangeStore_DropStopsScan(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)  // older
	s.Submit(20, 30) // newer, scanned first

	// Candidate overlaps the newer range by 8/10 (drop) and would also
	// touch the older one; the scan must stop at the newer range,
	// leaving the older unmerged.
	if got := s.Submit(10, 20); got == Drop {
		t.Fatalf("candidate [10,20] overlap with [20,30] is 0, should not drop")
	}

	s2 := &RangeStore{}
	s2.Submit(0, 17)  // older, would merge with the candidate if scanned
	s2.Submit(16, 30) // newer
	// Overlap with the newer range: min(30,24)-max(16,16) = 8 over
	// duration 8, ratio 1.0.
	if got := s2.Submit(16, 24); got != Drop {
		t.Fatalf("got %v, want Drop", got)
	}
	ranges := s2.Ranges()
	// The drop stopped the scan at the newer range; the older one was
	// never reached and keeps its bounds.
	if ranges[0].Start != 0 || ranges[0].End != 17 {
		t.Errorf("older range = %v, want [0,17] untouched", ranges[0])
	}
	if ranges[1].Start != 16 || ranges[1].End != 30 {
		t.Errorf("newer range = %v, want [16,30]", ranges[1])
	}
}

func TestRangeStore_TouchingCountsAsMerge(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)

	// Zero overlap at the shared edge still extends the range rather
	// than appending a second one.
	if got := s.Submit(10, 20); got != ForwardMerged {
		t.Errorf("got %v, want ForwardMerged", got)
	}
	ranges := s.Ranges()
	if len(ranges) != 1 || ranges[0].End != 20 {
		t.Errorf("store = %v, want [[0,20]]", ranges)
	}
}

func TestRangeStore_MergeKeptOnDrop(t *testing.T) {
	s := &RangeStore{}
	s.Submit(5, 10)

	// Ratio 5/6 > 0.5: dropped, but the extension to [4,11] applied
	// before the threshold check is kept.
	if got := s.Submit(4, 11); got != Drop {
		t.Fatalf("got %v, want Drop", got)
	}
	ranges := s.Ranges()
	if len(ranges) != 1 || ranges[0].Start != 4 || ranges[0].End != 11 {
		t.Errorf("store = %v, want [[4,11]]", ranges)
	}
}

func TestRangeStore_Reset(t *testing.T) {
	s := &RangeStore{}
	s.Submit(0, 10)
	s.Reset()
	if n := len(s.Ranges()); n != 0 {
		t.Errorf("expected empty store after reset, got %d ranges", n)
	}
	if got := s.Submit(2, 4); got != Forward {
		t.Errorf("post-reset candidate: got %v, want Forward", got)
	}
}
