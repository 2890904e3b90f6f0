package timeline

// Segment is the timestamp-rebasing state for one discontinuity region
// of the stream. BaseStart is the absolute start time of the first
// subtitle fragment seen in the region; the subtitle parser uses it to
// translate segment-relative cue times onto the absolute media timeline
// across splices and ad breaks. New is set on insertion and is readable
// any number of times; nothing in this package clears it.
type Segment struct {
	BaseStart float64
	PrevID    int64
	New       bool
}

// ContinuityMap holds one Segment per discontinuity id. Entries are
// created on first sight and never removed except by a full reset on a
// new media attachment.
type ContinuityMap struct {
	segs   map[int64]*Segment
	lastID int64
}

// NewContinuityMap returns an empty map.
func NewContinuityMap() *ContinuityMap {
	return &ContinuityMap{
		segs:   make(map[int64]*Segment),
		lastID: -1,
	}
}

// Rebase returns the Segment for id, creating it from fragStart if this
// is the first fragment seen for the region. An existing entry is
// returned untouched: only the first fragment of a region defines its
// base time.
func (m *ContinuityMap) Rebase(id int64, fragStart float64) *Segment {
	if seg, ok := m.segs[id]; ok {
		return seg
	}
	seg := &Segment{
		BaseStart: fragStart,
		PrevID:    m.lastID,
		New:       true,
	}
	m.segs[id] = seg
	m.lastID = id
	return seg
}

// Segment returns the entry for id, if present.
func (m *ContinuityMap) Segment(id int64) (*Segment, bool) {
	seg, ok := m.segs[id]
	return seg, ok
}

// Reset discards all entries.
func (m *ContinuityMap) Reset() {
	m.segs = make(map[int64]*Segment)
	m.lastID = -1
}
