package timeline

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/zsiec/cueflow/cea608"
	"github.com/zsiec/cueflow/media"
)

// SubtitleParser converts one subtitle fragment payload into cues on the
// absolute media timeline. refTS is the stream's time origin; the
// continuity map supplies per-discontinuity base times for payloads that
// carry only segment-relative timestamps.
type SubtitleParser interface {
	Parse(payload []byte, refTS float64, ccs *ContinuityMap, discontinuity int64) ([]media.Cue, error)
}

// TrackHandle identifies one text track within a TrackSink.
type TrackHandle int

// TrackInfo describes an existing track for reuse-by-label matching.
type TrackInfo struct {
	Handle   TrackHandle
	Kind     string
	Label    string
	Language string
}

// TrackSink is the destination for finished cues.
type TrackSink interface {
	CreateTrack(kind, label, language string) TrackHandle
	Tracks() []TrackInfo
	ClearCues(TrackHandle)
	AddCue(TrackHandle, media.Cue)
	CueByID(TrackHandle, string) (media.Cue, bool)
}

// StatsRecorder is the interface accepted by Controller for recording
// processing telemetry. The stats package's Recorder implements it.
type StatsRecorder interface {
	RecordCaptionCue(channel int)
	RecordCueDropped()
	RecordDecoderReset()
	RecordSubtitleFragment(success bool)
}

// FragmentEvent reports the outcome of one subtitle fragment to the host
// event bus. Success is false for empty payloads and parse failures; no
// fragment outcome is fatal to the pipeline.
type FragmentEvent struct {
	Fragment media.FragmentInfo
	Success  bool
}

// Config is the read-only configuration surface consumed by Controller.
type Config struct {
	CaptionsEnabled bool
	WebVTTEnabled   bool

	// Per-608-channel track labels and language codes; channels without
	// an entry get a "CC<n>" label and an empty language.
	CaptionLabels    map[int]string
	CaptionLanguages map[int]string

	SubtitleLabel    string
	SubtitleLanguage string
}

// Controller is the event core tying the pieces together: main-fragment
// events drive the Sequencer, caption samples flow through the byte-pair
// extractor and decoder into overlap resolution, and subtitle fragments
// pass the reference-timestamp gate before parsing and cue dedup.
//
// All state belongs to a single event goroutine: every method must be
// called from the goroutine delivering host events, and no internal
// locking exists. Fragment outcomes are delivered on the Events channel.
type Controller struct {
	log     *slog.Logger
	cfg     Config
	decoder cea608.Decoder
	parser  SubtitleParser
	sink    TrackSink

	seq    *Sequencer
	ranges *RangeStore
	ccs    *ContinuityMap
	gate   gate

	captionTracks map[int]TrackHandle
	subtitleTrack TrackHandle
	haveSubTrack  bool

	events chan FragmentEvent
	stats  StatsRecorder
}

// New creates a Controller. If log is nil, slog.Default() is used.
func New(cfg Config, decoder cea608.Decoder, parser SubtitleParser, sink TrackSink, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		log:           log.With("component", "timeline"),
		cfg:           cfg,
		decoder:       decoder,
		parser:        parser,
		sink:          sink,
		seq:           NewSequencer(),
		ranges:        &RangeStore{},
		ccs:           NewContinuityMap(),
		captionTracks: make(map[int]TrackHandle),
		events:        make(chan FragmentEvent, media.EventBufferSize),
	}
}

// SetStats attaches a StatsRecorder that receives telemetry callbacks
// for every cue, decoder reset, and fragment outcome.
func (c *Controller) SetStats(s StatsRecorder) {
	c.stats = s
}

// Events returns the channel on which subtitle fragment outcomes are
// delivered.
func (c *Controller) Events() <-chan FragmentEvent {
	return c.events
}

// ContinuityMap exposes the rebasing map, for hosts that hand it to an
// out-of-process parser.
func (c *Controller) ContinuityMap() *ContinuityMap {
	return c.ccs
}

// OnMainFragment records a loaded main-stream fragment. A sequence gap
// resets the caption decoder so control codes accumulated before a seek
// or splice cannot corrupt cues decoded after it.
func (c *Controller) OnMainFragment(seq int64) {
	if !c.seq.OnFragment(seq) {
		return
	}
	c.log.Debug("fragment sequence gap, resetting caption decoder", "sequence", seq)
	c.decoder.Reset()
	if c.stats != nil {
		c.stats.RecordDecoderReset()
	}
}

// OnCaptionSample feeds one video frame's user-data sample through the
// byte-pair extractor and decoder. A malformed sample is dropped whole;
// the pipeline continues.
func (c *Controller) OnCaptionSample(sample media.CaptionSample) {
	if !c.cfg.CaptionsEnabled {
		return
	}
	pairs, err := cea608.ExtractPairs(sample.Data)
	if err != nil {
		c.log.Debug("dropping malformed caption sample", "pts", sample.PTS, "error", err)
		return
	}
	if len(pairs) == 0 {
		return
	}
	for _, cue := range c.decoder.AddData(sample.PTS, pairs) {
		c.dispatchCaption(cue)
	}
}

// DispatchCaption resolves a decoded caption cue against the accepted
// ranges and forwards it to the channel's track unless it is a majority
// duplicate. Exported for hosts that drive a decoder themselves.
func (c *Controller) DispatchCaption(cue cea608.Cue) {
	c.dispatchCaption(cue)
}

func (c *Controller) dispatchCaption(cue cea608.Cue) {
	if c.ranges.Submit(cue.StartTime, cue.EndTime) == Drop {
		c.log.Debug("suppressing duplicate caption cue", "channel", cue.Channel, "start", cue.StartTime)
		if c.stats != nil {
			c.stats.RecordCueDropped()
		}
		return
	}
	track := c.captionTrack(cue.Channel)
	c.sink.AddCue(track, media.Cue{
		ID:        captionCueID(cue),
		StartTime: cue.StartTime,
		EndTime:   cue.EndTime,
		Text:      cue.Text,
	})
	if c.stats != nil {
		c.stats.RecordCaptionCue(cue.Channel)
	}
}

// OnReferenceTimestamp records the stream-wide time origin, first writer
// wins, and replays any parked subtitle fragments in arrival order.
func (c *Controller) OnReferenceTimestamp(ts float64) {
	drained, first := c.gate.setReference(ts)
	if !first {
		return
	}
	c.log.Debug("reference timestamp discovered", "ts", ts, "buffered", len(drained))
	for _, p := range drained {
		c.processSubtitleFragment(p.frag, p.payload)
	}
}

// OnSubtitleFragment handles a loaded subtitle fragment. Empty payloads
// short-circuit to a failed outcome; fragments arriving before the
// reference timestamp are parked until it resolves.
func (c *Controller) OnSubtitleFragment(frag media.FragmentInfo, payload []byte) {
	if !c.cfg.WebVTTEnabled {
		return
	}
	if len(payload) == 0 {
		c.finish(frag, false)
		return
	}
	if c.gate.park(frag, payload) {
		c.log.Debug("parking subtitle fragment until reference timestamp", "sequence", frag.Sequence)
		return
	}
	c.processSubtitleFragment(frag, payload)
}

func (c *Controller) processSubtitleFragment(frag media.FragmentInfo, payload []byte) {
	c.ccs.Rebase(frag.Discontinuity, frag.Start)

	cues, err := c.parser.Parse(payload, c.gate.refTS, c.ccs, frag.Discontinuity)
	if err != nil {
		c.log.Warn("subtitle parse failed", "sequence", frag.Sequence, "error", err)
		c.finish(frag, false)
		return
	}

	track := c.subtitleTrackHandle()
	for _, cue := range cues {
		// Segmented subtitle files re-send cues across overlapping
		// fragments; only the first copy lands. Idempotent, so replayed
		// or re-ordered fragment processing is harmless.
		if _, exists := c.sink.CueByID(track, cue.ID); exists {
			continue
		}
		c.sink.AddCue(track, cue)
	}
	c.finish(frag, true)
}

// Detach is the hard reset boundary for a media detachment: pending
// fragments, continuity map, cue ranges, sequence state, reference
// timestamp, and track bindings are cleared together. Stale state from a
// previous attachment would miscompute every subsequent cue time.
func (c *Controller) Detach() {
	c.gate.reset()
	c.ccs.Reset()
	c.ranges.Reset()
	c.seq.Reset()
	c.decoder.Reset()

	for _, h := range c.captionTracks {
		c.sink.ClearCues(h)
	}
	if c.haveSubTrack {
		c.sink.ClearCues(c.subtitleTrack)
	}
	c.captionTracks = make(map[int]TrackHandle)
	c.haveSubTrack = false
}

func (c *Controller) finish(frag media.FragmentInfo, success bool) {
	if c.stats != nil {
		c.stats.RecordSubtitleFragment(success)
	}
	select {
	case c.events <- FragmentEvent{Fragment: frag, Success: success}:
	default:
		c.log.Warn("event channel full, dropping fragment notification", "sequence", frag.Sequence)
	}
}

// captionTrack returns the track bound to a 608 channel, binding one on
// first use. An existing sink track with the configured label is reused
// rather than duplicated.
func (c *Controller) captionTrack(channel int) TrackHandle {
	if h, ok := c.captionTracks[channel]; ok {
		return h
	}
	label := c.cfg.CaptionLabels[channel]
	if label == "" {
		label = fmt.Sprintf("CC%d", channel)
	}
	h, ok := c.findTrack("captions", label)
	if !ok {
		h = c.sink.CreateTrack("captions", label, c.cfg.CaptionLanguages[channel])
	}
	c.captionTracks[channel] = h
	return h
}

func (c *Controller) subtitleTrackHandle() TrackHandle {
	if c.haveSubTrack {
		return c.subtitleTrack
	}
	label := c.cfg.SubtitleLabel
	if label == "" {
		label = "Subtitles"
	}
	h, ok := c.findTrack("subtitles", label)
	if !ok {
		h = c.sink.CreateTrack("subtitles", label, c.cfg.SubtitleLanguage)
	}
	c.subtitleTrack = h
	c.haveSubTrack = true
	return h
}

func (c *Controller) findTrack(kind, label string) (TrackHandle, bool) {
	for _, t := range c.sink.Tracks() {
		if t.Kind == kind && t.Label == label {
			return t.Handle, true
		}
	}
	return 0, false
}

// captionCueID derives a stable identity for a decoded caption cue from
// its channel, timing, and text, so the same caption re-decoded from an
// overlapping fragment maps to the same cue.
func captionCueID(cue cea608.Cue) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d/%.3f/%.3f/%s", cue.Channel, cue.StartTime, cue.EndTime, cue.Text)
	return fmt.Sprintf("cc%d-%08x", cue.Channel, h.Sum32())
}
