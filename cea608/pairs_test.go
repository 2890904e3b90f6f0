package cea608

import (
	"bytes"
	"testing"
)

// triplet builds one cc_data triplet.
func triplet(valid bool, ccType byte, b1, b2 byte) []byte {
	marker := byte(0xF8) | ccType
	if valid {
		marker |= 0x04
	}
	return []byte{marker, b1, b2}
}

func sample(triplets ...[]byte) []byte {
	// High reserved bits of the count byte are set to verify masking.
	out := []byte{0xE0 | byte(len(triplets)), 0x00}
	for _, t := range triplets {
		out = append(out, t...)
	}
	return out
}

func TestExtractPairs_Field1Kept(t *testing.T) {
	pairs, err := ExtractPairs(sample(
		triplet(true, 0, 0x48, 0x49),
		triplet(true, 0, 0x4A, 0x4B),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(pairs, []byte{0x48, 0x49, 0x4A, 0x4B}) {
		t.Errorf("pairs = %x, want 48494a4b", pairs)
	}
}

func TestExtractPairs_PaddingSkipped(t *testing.T) {
	// Both data bytes zero after masking: padding, no output, no error.
	pairs, err := ExtractPairs(sample(
		triplet(true, 0, 0x00, 0x00),
		triplet(true, 0, 0x80, 0x80), // masks to 0x00/0x00
		triplet(true, 0, 0x48, 0x49),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(pairs, []byte{0x48, 0x49}) {
		t.Errorf("pairs = %x, want 4849", pairs)
	}
}

func TestExtractPairs_InvalidDropped(t *testing.T) {
	pairs, err := ExtractPairs(sample(
		triplet(false, 0, 0x48, 0x49),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("invalid triplet produced pairs %x", pairs)
	}
}

func TestExtractPairs_OtherTypesDropped(t *testing.T) {
	// Field 2 and DTVCC types are valid but out of scope here.
	for _, ccType := range []byte{1, 2, 3} {
		pairs, err := ExtractPairs(sample(triplet(true, ccType, 0x48, 0x49)))
		if err != nil {
			t.Fatalf("type %d: unexpected error: %v", ccType, err)
		}
		if len(pairs) != 0 {
			t.Errorf("type %d produced pairs %x", ccType, pairs)
		}
	}
}

func TestExtractPairs_HighBitsMasked(t *testing.T) {
	pairs, err := ExtractPairs(sample(triplet(true, 0, 0xC8, 0xC9)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(pairs, []byte{0x48, 0x49}) {
		t.Errorf("pairs = %x, want 4849 after 0x7F masking", pairs)
	}
}

func TestExtractPairs_TruncatedSample(t *testing.T) {
	// Declares 4 triplets but carries one.
	s := sample(triplet(true, 0, 0x48, 0x49))
	s[0] = 0xE4
	if _, err := ExtractPairs(s); err == nil {
		t.Error("expected error for truncated sample")
	}
}

func TestExtractPairs_TooShort(t *testing.T) {
	for _, s := range [][]byte{nil, {0x01}} {
		if _, err := ExtractPairs(s); err == nil {
			t.Errorf("expected error for %d-byte sample", len(s))
		}
	}
}

func TestExtractPairs_ZeroTriplets(t *testing.T) {
	pairs, err := ExtractPairs([]byte{0x00, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("pairs = %x, want none", pairs)
	}
}
