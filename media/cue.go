// Package media defines the cue and fragment types that flow through the
// cueflow processing pipeline, from byte-pair demuxing through track dispatch.
package media

// Channel buffer size for fragment-processed notifications delivered to the
// host event bus. Sized to absorb a burst of fragment outcomes without
// blocking the event goroutine.
const EventBufferSize = 16

// Cue is a single timed text entry ready for a text track. Identity is the
// ID: two cues with the same ID are the same cue, regardless of how many
// overlapping fragments re-delivered it.
type Cue struct {
	ID        string
	StartTime float64
	EndTime   float64
	Text      string
}

// Duration returns the cue's length in seconds.
func (c Cue) Duration() float64 {
	return c.EndTime - c.StartTime
}

// CueRange is a span of the media timeline already covered by emitted
// caption cues. All caption channels share one set of ranges.
type CueRange struct {
	Start float64
	End   float64
}

// FragmentInfo identifies one media fragment within the stream timeline.
// Sequence numbers increase by one across contiguous fragments; the
// discontinuity id increments across timeline splices such as ad breaks.
type FragmentInfo struct {
	Sequence      int64
	Discontinuity int64
	Start         float64
	Duration      float64
	URL           string
}

// CaptionSample is one raw user-data sample attached to a video frame,
// carrying cc_data triplets, together with the frame's presentation
// timestamp in seconds.
type CaptionSample struct {
	PTS  float64
	Data []byte
}
