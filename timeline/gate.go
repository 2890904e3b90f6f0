package timeline

import "github.com/zsiec/cueflow/media"

// pendingFragment pairs a subtitle fragment with its raw payload while
// the reference timestamp is still unknown.
type pendingFragment struct {
	frag    media.FragmentInfo
	payload []byte
}

// gate defers subtitle processing until the stream-wide reference
// timestamp is discovered. Subtitle and main-stream loaders run
// independently, so subtitle data can physically arrive before the
// stream's time origin is known; absolute cue timing is impossible until
// it is. There is no timeout: an unresolved reference means indefinite
// buffering for the attachment's lifetime.
type gate struct {
	refTS   float64
	haveRef bool
	pending []pendingFragment
}

// park buffers the fragment if the reference timestamp is unset,
// reporting whether it did.
func (g *gate) park(frag media.FragmentInfo, payload []byte) bool {
	if g.haveRef {
		return false
	}
	g.pending = append(g.pending, pendingFragment{frag: frag, payload: payload})
	return true
}

// setReference records the reference timestamp, first writer wins, and
// hands back the buffered fragments in arrival order for a one-time
// replay. Later calls are no-ops and drain nothing.
func (g *gate) setReference(ts float64) (drained []pendingFragment, first bool) {
	if g.haveRef {
		return nil, false
	}
	g.refTS = ts
	g.haveRef = true
	drained = g.pending
	g.pending = nil
	return drained, true
}

// reset forgets the reference timestamp and discards any parked
// fragments.
func (g *gate) reset() {
	*g = gate{}
}
