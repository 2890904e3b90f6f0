// Package cea608 extracts line-21 closed-caption byte pairs from video
// user-data samples and decodes them into timed caption cues.
package cea608

import "fmt"

// ExtractPairs walks the cc_data triplets of one user-data sample and
// returns the masked field-1 byte pairs in order, as a flat even-length
// slice. Padding triplets (both data bytes zero) produce no output, as do
// triplets that are not valid or not line-21 field 1: field 2 and DTVCC
// channel packets are not this extractor's concern.
//
// The triplet count is a 5-bit field in the first byte and is not trusted:
// a sample too short to hold the declared triplets is rejected whole.
func ExtractPairs(sample []byte) ([]byte, error) {
	if len(sample) < 2 {
		return nil, fmt.Errorf("cea608: sample too short: %d bytes", len(sample))
	}

	count := int(sample[0] & 0x1F)
	if 2+count*3 > len(sample) {
		return nil, fmt.Errorf("cea608: truncated sample: %d triplets declared in %d bytes", count, len(sample))
	}

	var pairs []byte
	pos := 2
	for j := 0; j < count; j++ {
		marker := sample[pos]
		b1 := sample[pos+1] & 0x7F
		b2 := sample[pos+2] & 0x7F
		pos += 3

		// Padding triplet.
		if b1 == 0 && b2 == 0 {
			continue
		}

		valid := marker&0x04 != 0
		ccType := marker & 0x03
		if valid && ccType == 0 {
			pairs = append(pairs, b1, b2)
		}
	}
	return pairs, nil
}
