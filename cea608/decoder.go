package cea608

import "github.com/zsiec/ccx"

// Cue is one decoded caption: a stretch of display text on one CEA-608
// channel with its on-screen interval in seconds.
type Cue struct {
	Channel   int
	StartTime float64
	EndTime   float64
	Text      string
}

// Decoder is the caption decoder consumed by the timeline controller.
// AddData feeds field-1 byte pairs for one video frame and returns any
// cues whose display interval closed as a result. Reset discards all
// accumulated decoder state, including any partially-built control codes
// and open cues; it is invoked after a seek or fragment sequence gap.
type Decoder interface {
	Reset()
	AddData(pts float64, pairs []byte) []Cue
}

// channelState tracks one CEA-608 data channel: its decoder instance and
// the currently displayed text, which becomes a cue when it changes.
type channelState struct {
	dec   *ccx.CEA608Decoder
	text  string
	start float64
	open  bool
}

// CCXDecoder decodes CEA-608 field-1 byte pairs into cues using
// github.com/zsiec/ccx. Field-1 carries two data channels (CC1, CC2);
// control codes with the 0x08 bit select channel 2, and data codes flow
// to whichever channel the last control code addressed.
type CCXDecoder struct {
	channels map[int]*channelState
	cur      int

	// Doubled control codes: CEA-608 transmits control pairs twice for
	// robustness. A repeat of the last control pair within two samples is
	// a retransmission and must be consumed without effect.
	lastCtrl       [2]byte
	lastWasCtrl    bool
	lastCtrlSample int64
	sampleCount    int64
}

// NewCCXDecoder creates a decoder with fresh channel state for CC1 and CC2.
func NewCCXDecoder() *CCXDecoder {
	d := &CCXDecoder{}
	d.Reset()
	return d
}

// Reset discards all decoder state. Any open display intervals are
// dropped, not emitted: after a seek their timing is no longer
// trustworthy.
func (d *CCXDecoder) Reset() {
	d.channels = map[int]*channelState{
		1: {dec: ccx.NewCEA608Decoder()},
		2: {dec: ccx.NewCEA608Decoder()},
	}
	d.cur = 1
	d.lastWasCtrl = false
	d.sampleCount = 0
}

// AddData decodes one sample's worth of byte pairs and returns the cues
// closed by it.
func (d *CCXDecoder) AddData(pts float64, pairs []byte) []Cue {
	d.sampleCount++

	var out []Cue
	for i := 0; i+1 < len(pairs); i += 2 {
		cc1, cc2 := pairs[i], pairs[i+1]

		isCtrl := cc1 >= 0x10 && cc1 <= 0x1F
		if isCtrl {
			cp := [2]byte{cc1, cc2}
			if d.lastWasCtrl && d.lastCtrl == cp && d.sampleCount-d.lastCtrlSample <= 2 {
				d.lastWasCtrl = false
				continue
			}
			d.lastCtrl = cp
			d.lastWasCtrl = true
			d.lastCtrlSample = d.sampleCount

			if cc1&0x08 != 0 {
				d.cur = 2
			} else {
				d.cur = 1
			}
		} else {
			d.lastWasCtrl = false
		}

		st := d.channels[d.cur]
		text := st.dec.Decode(cc1, cc2)
		if text == "" || text == st.text {
			continue
		}
		if st.open {
			out = append(out, Cue{
				Channel:   d.cur,
				StartTime: st.start,
				EndTime:   pts,
				Text:      st.text,
			})
		}
		st.text = text
		st.start = pts
		st.open = true
	}
	return out
}

// Flush closes any open display intervals at the given timestamp and
// returns them. Used at end of stream, where no further control codes
// will arrive to close the last caption.
func (d *CCXDecoder) Flush(pts float64) []Cue {
	var out []Cue
	for _, ch := range []int{1, 2} {
		st := d.channels[ch]
		if !st.open {
			continue
		}
		out = append(out, Cue{
			Channel:   ch,
			StartTime: st.start,
			EndTime:   pts,
			Text:      st.text,
		})
		st.open = false
		st.text = ""
	}
	return out
}
