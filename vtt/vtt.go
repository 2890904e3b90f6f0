// Package vtt parses segmented WebVTT payloads into cues on the absolute
// media timeline. It implements the minimal grammar that HLS subtitle
// renditions use: an optional X-TIMESTAMP-MAP header for MPEG-TS
// synchronization, cue identifiers, and hour or minute timestamp forms.
package vtt

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zsiec/cueflow/media"
	"github.com/zsiec/cueflow/timeline"
)

// Parser implements timeline.SubtitleParser for segmented WebVTT.
type Parser struct {
	log *slog.Logger
}

// NewParser creates a Parser. If log is nil, slog.Default() is used.
func NewParser(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{log: log.With("component", "vtt")}
}

// Parse converts one fragment payload into absolute-timeline cues.
//
// Rebasing: with an X-TIMESTAMP-MAP header, cue times shift by
// MPEGTS/90000 − LOCAL − refTS, anchoring the payload's local clock to
// the stream timeline. Without one, cue times are segment-relative and
// shift by the discontinuity region's base start time from the
// continuity map.
//
// Individual malformed cue blocks are skipped; a payload whose cue
// blocks are all malformed is a parse failure. A header-only payload
// yields zero cues and no error.
func (p *Parser) Parse(payload []byte, refTS float64, ccs *timeline.ContinuityMap, discontinuity int64) ([]media.Cue, error) {
	text := strings.ReplaceAll(string(payload), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimPrefix(text, "\ufeff")

	blocks := strings.Split(text, "\n\n")
	header := blocks[0]
	if !strings.HasPrefix(header, "WEBVTT") {
		return nil, fmt.Errorf("vtt: missing WEBVTT header")
	}

	offset := p.offset(header, refTS, ccs, discontinuity)

	var cues []media.Cue
	sawBlock := false
	for _, block := range blocks[1:] {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(lines[0], "NOTE"),
			strings.HasPrefix(lines[0], "STYLE"),
			strings.HasPrefix(lines[0], "REGION"):
			continue
		}
		sawBlock = true

		cue, err := parseCueBlock(lines)
		if err != nil {
			p.log.Debug("skipping malformed cue block", "error", err)
			continue
		}
		cue.StartTime += offset
		cue.EndTime += offset
		if cue.ID == "" {
			cue.ID = generateCueID(cue)
		}
		cues = append(cues, cue)
	}

	if sawBlock && len(cues) == 0 {
		return nil, fmt.Errorf("vtt: no parseable cues in payload")
	}
	return cues, nil
}

// offset computes the shift from payload-local to absolute cue times.
func (p *Parser) offset(header string, refTS float64, ccs *timeline.ContinuityMap, discontinuity int64) float64 {
	for _, line := range strings.Split(header, "\n") {
		if !strings.HasPrefix(line, "X-TIMESTAMP-MAP=") {
			continue
		}
		mpegts, local, err := parseTimestampMap(strings.TrimPrefix(line, "X-TIMESTAMP-MAP="))
		if err != nil {
			p.log.Debug("ignoring bad X-TIMESTAMP-MAP", "error", err)
			break
		}
		return mpegts/90000 - local - refTS
	}
	if ccs != nil {
		if seg, ok := ccs.Segment(discontinuity); ok {
			return seg.BaseStart
		}
	}
	return 0
}

func parseTimestampMap(s string) (mpegts, local float64, err error) {
	var haveTS, haveLocal bool
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "MPEGTS:"):
			val := strings.TrimPrefix(part, "MPEGTS:")
			ticks, perr := strconv.ParseInt(val, 10, 64)
			if perr != nil {
				return 0, 0, fmt.Errorf("vtt: bad MPEGTS value %q", val)
			}
			mpegts = float64(ticks)
			haveTS = true
		case strings.HasPrefix(part, "LOCAL:"):
			local, err = parseTimestamp(strings.TrimPrefix(part, "LOCAL:"))
			if err != nil {
				return 0, 0, err
			}
			haveLocal = true
		}
	}
	if !haveTS || !haveLocal {
		return 0, 0, fmt.Errorf("vtt: incomplete timestamp map %q", s)
	}
	return mpegts, local, nil
}

func parseCueBlock(lines []string) (media.Cue, error) {
	var cue media.Cue

	timingIdx := 0
	if !strings.Contains(lines[0], "-->") {
		cue.ID = strings.TrimSpace(lines[0])
		timingIdx = 1
	}
	if timingIdx >= len(lines) {
		return cue, fmt.Errorf("cue block has no timing line")
	}

	fields := strings.Fields(lines[timingIdx])
	if len(fields) < 3 || fields[1] != "-->" {
		return cue, fmt.Errorf("bad timing line %q", lines[timingIdx])
	}
	start, err := parseTimestamp(fields[0])
	if err != nil {
		return cue, err
	}
	end, err := parseTimestamp(fields[2])
	if err != nil {
		return cue, err
	}
	cue.StartTime = start
	cue.EndTime = end
	cue.Text = strings.Join(lines[timingIdx+1:], "\n")
	if cue.Text == "" {
		return cue, fmt.Errorf("cue block has no text")
	}
	return cue, nil
}

// parseTimestamp accepts "ss.mmm" prefixed by minutes and optional
// hours: mm:ss.mmm or hh:mm:ss.mmm. A comma decimal separator is
// tolerated for payloads converted from SRT.
func parseTimestamp(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("vtt: bad timestamp %q", s)
	}

	sec, err := strconv.ParseFloat(strings.Replace(parts[len(parts)-1], ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("vtt: bad timestamp %q", s)
	}
	min, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("vtt: bad timestamp %q", s)
	}
	total := float64(min)*60 + sec
	if len(parts) == 3 {
		hour, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("vtt: bad timestamp %q", s)
		}
		total += float64(hour) * 3600
	}
	return total, nil
}

func nonEmptyLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// generateCueID derives a stable identity from timing and text for cues
// that carry no identifier, so a cue re-sent by an overlapping fragment
// resolves to the same identity.
func generateCueID(cue media.Cue) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%.3f/%.3f/%s", cue.StartTime, cue.EndTime, cue.Text)
	return fmt.Sprintf("vtt-%08x", h.Sum32())
}
