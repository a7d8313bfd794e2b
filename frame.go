package zstd

import "encoding/binary"

// frameMagic is the little-endian Zstandard frame magic number.
const frameMagic = 0xFD2FB528

// skippableMagicMask/skippableMagicValue recognise the 16 skippable-frame
// magic numbers 0x184D2A50 through 0x184D2A5F.
const (
	skippableMagicMask  = 0xFFFFFFF0
	skippableMagicValue = 0x184D2A50
)

type frameHeader struct {
	singleSegment   bool
	contentChecksum bool
	windowSize      int
	contentSize     uint64
	hasContentSize  bool
	dictID          uint32
	hasDictID       bool
}

// parseFrameHeader consumes leading skippable frames, then parses the
// real frame header from the front of data. It returns the header and the
// number of bytes consumed, or (nil, 0, ErrShortInput) if data does not
// yet contain a complete header.
func parseFrameHeader(data []byte, maxWindowSize int) (*frameHeader, int, error) {
	pos := 0
	for {
		if len(data)-pos < 4 {
			return nil, 0, wrapErr(ErrShortInput, "need at least 4 bytes for a frame magic number")
		}
		magic := binary.LittleEndian.Uint32(data[pos : pos+4])
		if magic&skippableMagicMask == skippableMagicValue {
			if len(data)-pos < 8 {
				return nil, 0, wrapErr(ErrShortInput, "truncated skippable frame header")
			}
			size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
			need := 8 + int(size)
			if len(data)-pos < need {
				return nil, 0, wrapErr(ErrShortInput, "truncated skippable frame body")
			}
			pos += need
			continue
		}
		if magic != frameMagic {
			return nil, 0, wrapErr(ErrBadMagic, "got %#08x", magic)
		}
		pos += 4
		break
	}

	if len(data)-pos < 1 {
		return nil, 0, wrapErr(ErrShortInput, "missing frame header descriptor")
	}
	descriptor := data[pos]
	pos++

	fcsFlag := descriptor >> 6
	singleSegment := descriptor&(1<<5) != 0
	reservedBit := descriptor & (1 << 3)
	checksumFlag := descriptor&(1<<2) != 0
	dictIDFlag := descriptor & 0x3

	if reservedBit != 0 {
		return nil, 0, wrapErr(ErrUnsupportedFrameFlags, "reserved bit set in frame header descriptor")
	}

	hdr := &frameHeader{singleSegment: singleSegment, contentChecksum: checksumFlag}

	if !singleSegment {
		if len(data)-pos < 1 {
			return nil, 0, wrapErr(ErrShortInput, "missing window descriptor")
		}
		wd := data[pos]
		pos++
		exponent := int(wd >> 3)
		mantissa := int(wd & 0x7)
		base := 1 << (10 + exponent)
		windowSize := base + (base/8)*mantissa
		hdr.windowSize = windowSize
	}

	dictIDLen := [4]int{0, 1, 2, 4}[dictIDFlag]
	if dictIDLen > 0 {
		if len(data)-pos < dictIDLen {
			return nil, 0, wrapErr(ErrShortInput, "truncated dictionary id field")
		}
		var v uint32
		for i := 0; i < dictIDLen; i++ {
			v |= uint32(data[pos+i]) << (8 * i)
		}
		hdr.dictID = v
		hdr.hasDictID = true
		pos += dictIDLen
	}

	var fcsLen int
	switch {
	case fcsFlag == 0 && singleSegment:
		fcsLen = 1
	case fcsFlag == 0:
		fcsLen = 0
	case fcsFlag == 1:
		fcsLen = 2
	case fcsFlag == 2:
		fcsLen = 4
	case fcsFlag == 3:
		fcsLen = 8
	}
	if fcsLen > 0 {
		if len(data)-pos < fcsLen {
			return nil, 0, wrapErr(ErrShortInput, "truncated frame content size field")
		}
		var v uint64
		for i := 0; i < fcsLen; i++ {
			v |= uint64(data[pos+i]) << (8 * i)
		}
		if fcsLen == 2 {
			v += 256
		}
		hdr.contentSize = v
		hdr.hasContentSize = true
		pos += fcsLen
	}

	if singleSegment {
		hdr.windowSize = int(hdr.contentSize)
	}

	if hdr.windowSize < 1024 {
		hdr.windowSize = 1024
	}
	if hdr.windowSize > maxWindowSize {
		return nil, 0, wrapErr(ErrWindowTooLarge, "window size %d exceeds maximum %d", hdr.windowSize, maxWindowSize)
	}

	return hdr, pos, nil
}
