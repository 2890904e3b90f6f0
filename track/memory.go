// Package track provides an in-memory TrackSink for hosts without a
// platform text-track layer, and for tests.
package track

import (
	"github.com/zsiec/cueflow/media"
	"github.com/zsiec/cueflow/timeline"
)

type memTrack struct {
	info timeline.TrackInfo
	cues []media.Cue
	byID map[string]int
}

// MemorySink stores tracks and cues in memory. It implements
// timeline.TrackSink. Not safe for concurrent use; like the controller,
// it belongs to the event goroutine.
type MemorySink struct {
	tracks []*memTrack
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// CreateTrack adds a track and returns its handle.
func (s *MemorySink) CreateTrack(kind, label, language string) timeline.TrackHandle {
	h := timeline.TrackHandle(len(s.tracks))
	s.tracks = append(s.tracks, &memTrack{
		info: timeline.TrackInfo{
			Handle:   h,
			Kind:     kind,
			Label:    label,
			Language: language,
		},
		byID: make(map[string]int),
	})
	return h
}

// Tracks enumerates existing tracks for reuse-by-label matching.
func (s *MemorySink) Tracks() []timeline.TrackInfo {
	out := make([]timeline.TrackInfo, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t.info
	}
	return out
}

// ClearCues removes all cues from a track.
func (s *MemorySink) ClearCues(h timeline.TrackHandle) {
	t, ok := s.track(h)
	if !ok {
		return
	}
	t.cues = nil
	t.byID = make(map[string]int)
}

// AddCue appends a cue to a track. A cue whose ID is already present
// replaces nothing and is ignored.
func (s *MemorySink) AddCue(h timeline.TrackHandle, cue media.Cue) {
	t, ok := s.track(h)
	if !ok {
		return
	}
	if _, dup := t.byID[cue.ID]; dup {
		return
	}
	t.byID[cue.ID] = len(t.cues)
	t.cues = append(t.cues, cue)
}

// CueByID looks a cue up by identity.
func (s *MemorySink) CueByID(h timeline.TrackHandle, id string) (media.Cue, bool) {
	t, ok := s.track(h)
	if !ok {
		return media.Cue{}, false
	}
	i, ok := t.byID[id]
	if !ok {
		return media.Cue{}, false
	}
	return t.cues[i], true
}

// Cues returns a copy of a track's cues in insertion order.
func (s *MemorySink) Cues(h timeline.TrackHandle) []media.Cue {
	t, ok := s.track(h)
	if !ok {
		return nil
	}
	out := make([]media.Cue, len(t.cues))
	copy(out, t.cues)
	return out
}

func (s *MemorySink) track(h timeline.TrackHandle) (*memTrack, bool) {
	if int(h) < 0 || int(h) >= len(s.tracks) {
		return nil, false
	}
	return s.tracks[h], true
}
