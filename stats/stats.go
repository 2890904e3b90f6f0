// Package stats implements timeline.StatsRecorder on Prometheus
// counters.
package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts cues, drops, decoder resets, and fragment outcomes.
type Recorder struct {
	captionCues *prometheus.CounterVec
	fragments   *prometheus.CounterVec
	resets      prometheus.Counter
	dropped     prometheus.Counter
}

// NewRecorder registers the cueflow metrics with reg and returns the
// Recorder. A nil reg uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		captionCues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cueflow_caption_cues_total",
			Help: "Caption cues forwarded to a track, by CEA-608 channel.",
		}, []string{"channel"}),
		fragments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cueflow_subtitle_fragments_total",
			Help: "Subtitle fragment outcomes.",
		}, []string{"result"}),
		resets: f.NewCounter(prometheus.CounterOpts{
			Name: "cueflow_decoder_resets_total",
			Help: "Caption decoder resets triggered by fragment sequence gaps.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "cueflow_cues_dropped_total",
			Help: "Caption cues suppressed as majority duplicates.",
		}),
	}
}

// RecordCaptionCue counts a forwarded caption cue.
func (r *Recorder) RecordCaptionCue(channel int) {
	r.captionCues.WithLabelValues(strconv.Itoa(channel)).Inc()
}

// RecordCueDropped counts a suppressed duplicate cue.
func (r *Recorder) RecordCueDropped() {
	r.dropped.Inc()
}

// RecordDecoderReset counts a caption decoder reset.
func (r *Recorder) RecordDecoderReset() {
	r.resets.Inc()
}

// RecordSubtitleFragment counts one fragment outcome.
func (r *Recorder) RecordSubtitleFragment(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.fragments.WithLabelValues(result).Inc()
}
