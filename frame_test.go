package zstd

import "testing"

func TestParseFrameHeaderSingleSegmentZeroContent(t *testing.T) {
	// Frame_Header_Descriptor 0x20: fcs_flag=0, single_segment=1, no
	// checksum, no dict id -> 1-byte content size field follows directly.
	data := []byte{0x28, 0xB5, 0x2F, 0xFD, 0x20, 0x00}
	hdr, n, err := parseFrameHeader(data, DefaultMaxWindowSize)
	if err != nil {
		t.Fatalf("parseFrameHeader: %v", err)
	}
	if n != len(data) {
		t.Fatalf("consumed %d, want %d", n, len(data))
	}
	if !hdr.singleSegment {
		t.Fatal("expected single_segment flag")
	}
	if !hdr.hasContentSize || hdr.contentSize != 0 {
		t.Fatalf("contentSize = %v, %v", hdr.contentSize, hdr.hasContentSize)
	}
	if hdr.windowSize < 1024 {
		t.Fatalf("windowSize = %d, want it clamped up to the 1024-byte minimum", hdr.windowSize)
	}
}

func TestParseFrameHeaderShortInput(t *testing.T) {
	data := []byte{0x28, 0xB5, 0x2F} // missing the 4th magic byte
	_, _, err := parseFrameHeader(data, DefaultMaxWindowSize)
	if !isErrShortInput(err) {
		t.Fatalf("expected ErrShortInput, got %v", err)
	}
}

func TestParseFrameHeaderBadMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x20, 0x00}
	_, _, err := parseFrameHeader(data, DefaultMaxWindowSize)
	if err == nil {
		t.Fatal("expected error")
	}
	if de, ok := err.(*DecodeError); !ok || de.Kind != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestParseFrameHeaderSkipsSkippableFrame(t *testing.T) {
	skippable := []byte{0x50, 0x2A, 0x4D, 0x18, 0x03, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC}
	real := []byte{0x28, 0xB5, 0x2F, 0xFD, 0x20, 0x00}
	data := append(append([]byte{}, skippable...), real...)

	hdr, n, err := parseFrameHeader(data, DefaultMaxWindowSize)
	if err != nil {
		t.Fatalf("parseFrameHeader: %v", err)
	}
	if n != len(data) {
		t.Fatalf("consumed %d, want %d (expected the skippable frame to be skipped)", n, len(data))
	}
	if !hdr.hasContentSize || hdr.contentSize != 0 {
		t.Fatalf("unexpected header: %+v", hdr)
	}
}

func TestParseFrameHeaderWindowTooLarge(t *testing.T) {
	// Non-single-segment frame: descriptor 0x00 (fcs_flag=0, not single
	// segment), window descriptor exponent=31 -> enormous window.
	data := []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00, 0xF8}
	_, _, err := parseFrameHeader(data, DefaultMaxWindowSize)
	if de, ok := err.(*DecodeError); !ok || de.Kind != ErrWindowTooLarge {
		t.Fatalf("expected ErrWindowTooLarge, got %v", err)
	}
}

func isErrShortInput(err error) bool {
	de, ok := err.(*DecodeError)
	return ok && de.Kind == ErrShortInput
}
