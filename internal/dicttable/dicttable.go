// Package dicttable parses a Zstandard dictionary: a magic-prefixed blob
// carrying pre-built Huff0 and FSE entropy tables plus an initial offset
// history, or (absent that magic) a bare content-only dictionary that
// contributes nothing but a prefix for back-references.
package dicttable

import (
	"encoding/binary"
	"errors"

	"github.com/mpx42/zstd/internal/bitreader"
	"github.com/mpx42/zstd/internal/fse"
	"github.com/mpx42/zstd/internal/huff0"
)

// Magic is the little-endian magic number a dictionary blob starts with.
// Bytes with any other prefix are treated as RawContent dictionaries.
var Magic = [4]byte{0x37, 0xA4, 0x30, 0xEC}

var (
	// ErrTruncated is returned when a magic-prefixed dictionary ends
	// before its declared fixed-size fields (id, 3 offsets) are present.
	ErrTruncated = errors.New("dicttable: dictionary truncated")
	// ErrAccuracyLogTooLarge is returned when one of the three FSE
	// tables declares an accuracy log past what that table's role
	// allows.
	ErrAccuracyLogTooLarge = errors.New("dicttable: FSE accuracy log exceeds its table's maximum")
)

// Maximum accuracy logs and largest symbol values for the three dictionary-borne
// FSE tables, matching the sequences-section limits (spec.md §4.1/§4.3).
const (
	offsetsMaxLog    = 8
	offsetsMaxSymbol = 31
	matchLengthsMaxLog    = 9
	matchLengthsMaxSymbol = 52
	literalLengthsMaxLog    = 9
	literalLengthsMaxSymbol = 35
)

// Table holds everything a dictionary contributes to a frame decode: its
// id (for matching against a frame's declared dict_id), pre-built entropy
// tables, the initial offset history, and the raw content bytes that
// serve as a back-reference prefix.
type Table struct {
	ID             uint32
	Huffman        *huff0.Table
	Offsets        *fse.Table
	MatchLengths   *fse.Table
	LiteralLengths *fse.Table
	OffsetHistory  [3]uint32
	Content        []byte

	// RawContent is true when raw lacked the dictionary magic: Content
	// is then the entirety of raw, OffsetHistory is the default [1, 4, 8],
	// and every other field is zero/nil.
	RawContent bool
}

// Parse decodes a dictionary blob. A blob without the magic prefix is
// treated as a content-only dictionary: any byte string can serve as one.
func Parse(raw []byte) (*Table, error) {
	if len(raw) < 4 || raw[0] != Magic[0] || raw[1] != Magic[1] || raw[2] != Magic[2] || raw[3] != Magic[3] {
		content := make([]byte, len(raw))
		copy(content, raw)
		return &Table{
			Content:       content,
			OffsetHistory: [3]uint32{1, 4, 8},
			RawContent:    true,
		}, nil
	}
	if len(raw) < 8 {
		return nil, ErrTruncated
	}

	id := binary.LittleEndian.Uint32(raw[4:8])
	rest := raw[8:]

	huf, hufSize, err := huff0.ReadTable(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[hufSize:]

	of, ofSize, err := readFSETable(rest, offsetsMaxLog, offsetsMaxSymbol)
	if err != nil {
		return nil, err
	}
	rest = rest[ofSize:]

	ml, mlSize, err := readFSETable(rest, matchLengthsMaxLog, matchLengthsMaxSymbol)
	if err != nil {
		return nil, err
	}
	rest = rest[mlSize:]

	ll, llSize, err := readFSETable(rest, literalLengthsMaxLog, literalLengthsMaxSymbol)
	if err != nil {
		return nil, err
	}
	rest = rest[llSize:]

	if len(rest) < 12 {
		return nil, ErrTruncated
	}
	var hist [3]uint32
	hist[0] = binary.LittleEndian.Uint32(rest[0:4])
	hist[1] = binary.LittleEndian.Uint32(rest[4:8])
	hist[2] = binary.LittleEndian.Uint32(rest[8:12])

	content := make([]byte, len(rest)-12)
	copy(content, rest[12:])

	return &Table{
		ID:             id,
		Huffman:        huf,
		Offsets:        of,
		MatchLengths:   ml,
		LiteralLengths: ll,
		OffsetHistory:  hist,
		Content:        content,
	}, nil
}

func readFSETable(data []byte, maxAccuracyLog, maxSymbol int) (*fse.Table, int, error) {
	br := bitreader.NewForward(data)
	counts, accuracyLog, err := fse.ReadNCount(br, maxSymbol)
	if err != nil {
		return nil, 0, err
	}
	if accuracyLog > maxAccuracyLog {
		return nil, 0, ErrAccuracyLogTooLarge
	}
	tbl, err := fse.Build(counts, accuracyLog)
	if err != nil {
		return nil, 0, err
	}
	return tbl, br.BytesConsumed(), nil
}
