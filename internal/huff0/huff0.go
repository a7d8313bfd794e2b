// Package huff0 decodes Zstandard's Huff0 canonical-Huffman literals
// stream: a weight description (direct nibbles or FSE-compressed), turned
// into a flat decode table, walked across one or four interleaved
// reverse bitstreams.
package huff0

import (
	"errors"
	"math/bits"

	"github.com/mpx42/zstd/internal/bitreader"
	"github.com/mpx42/zstd/internal/fse"
)

var (
	// ErrTableCorrupt covers every structural failure while parsing a
	// weight description or assembling the canonical code table.
	ErrTableCorrupt = errors.New("huff0: corrupt Huffman table description")
	// ErrTooManyBits is returned when the canonical assignment would need
	// more bits than Huff0 allows for a single symbol.
	ErrTooManyBits = errors.New("huff0: table exceeds maximum code length")
	// ErrStreamCorrupt covers a decode that runs past its expected symbol
	// count or underruns its bitstream.
	ErrStreamCorrupt = errors.New("huff0: corrupt entropy stream")
)

// MaxTableLog is the largest code length (in bits) a Huff0 table may use.
const MaxTableLog = 11

// weightMaxSymbol is the largest value a Huffman weight nibble may take;
// the alphabet used to FSE-decode compressed weight descriptions.
const weightMaxSymbol = MaxTableLog

type tableEntry struct {
	symbol byte
	nbBits uint8
}

// Table is a built Huff0 decode table: a flat array of 1<<tableLog
// entries, one per possible max_bits-wide bit pattern.
type Table struct {
	tableLog int
	entries  []tableEntry
}

// TableLog reports the table's maximum code length in bits.
func (t *Table) TableLog() int {
	return t.tableLog
}

// ReadTable parses a Huffman table description from the front of data and
// returns the built decode table plus the number of bytes it consumed.
func ReadTable(data []byte) (*Table, int, error) {
	if len(data) == 0 {
		return nil, 0, ErrTableCorrupt
	}
	header := data[0]
	var weights []byte
	var consumed int

	if header >= 128 {
		nbSymbols := int(header) - 127
		packedLen := (nbSymbols + 1) / 2
		if 1+packedLen > len(data) {
			return nil, 0, ErrTableCorrupt
		}
		weights = make([]byte, nbSymbols)
		for i := 0; i < nbSymbols; i++ {
			b := data[1+i/2]
			if i%2 == 0 {
				weights[i] = b >> 4
			} else {
				weights[i] = b & 0xF
			}
		}
		consumed = 1 + packedLen
	} else {
		streamLen := int(header)
		if 1+streamLen > len(data) {
			return nil, 0, ErrTableCorrupt
		}
		br := bitreader.NewForward(data[1 : 1+streamLen])
		counts, accuracyLog, err := fse.ReadNCount(br, weightMaxSymbol)
		if err != nil {
			return nil, 0, err
		}
		tbl, err := fse.Build(counts, accuracyLog)
		if err != nil {
			return nil, 0, err
		}
		rev, err := bitreader.NewReverse(data[1 : 1+streamLen])
		if err != nil {
			return nil, 0, err
		}
		weights, err = decodeWeights(tbl, rev)
		if err != nil {
			return nil, 0, err
		}
		consumed = 1 + streamLen
	}

	tbl, err := buildFromWeights(weights)
	if err != nil {
		return nil, 0, err
	}
	return tbl, consumed, nil
}

// decodeWeights runs the alternating two-state FSE decode Huff0 uses for
// its compressed weight stream: two states share one table and one
// bitstream, each emitting one weight per round, until the stream's
// padding sentinel leaves too few bits for another round.
func decodeWeights(tbl *fse.Table, rev *bitreader.Reverse) ([]byte, error) {
	state1, err := tbl.NewState(rev)
	if err != nil {
		return nil, err
	}
	state2, err := tbl.NewState(rev)
	if err != nil {
		return nil, err
	}

	var weights []byte
	for {
		weights = append(weights, tbl.Symbol(state1))
		if rev.Remaining() == 0 {
			break
		}
		state1, err = tbl.Update(state1, rev)
		if err != nil {
			return nil, err
		}

		weights = append(weights, tbl.Symbol(state2))
		if rev.Remaining() == 0 {
			break
		}
		state2, err = tbl.Update(state2, rev)
		if err != nil {
			return nil, err
		}
	}
	return weights, nil
}

// buildFromWeights derives the implied last symbol's weight, assigns
// canonical code lengths, and fills the flat decode table.
func buildFromWeights(weights []byte) (*Table, error) {
	weightSum := 0
	for _, w := range weights {
		if w > 0 {
			weightSum += 1 << (w - 1)
		}
	}
	if weightSum == 0 {
		return nil, ErrTableCorrupt
	}
	tableLog := highBit(weightSum) + 1
	if tableLog > MaxTableLog {
		return nil, ErrTooManyBits
	}
	total := 1 << tableLog
	rest := total - weightSum
	if rest <= 0 {
		return nil, ErrTableCorrupt
	}
	verif := 1 << highBit(rest)
	if verif != rest {
		return nil, ErrTableCorrupt
	}
	lastWeight := byte(highBit(rest) + 1)
	allWeights := append(append([]byte{}, weights...), lastWeight)

	nbSymbols := len(allWeights)
	codeLen := make([]uint8, nbSymbols)
	var blCount [MaxTableLog + 2]int
	for s, w := range allWeights {
		if w == 0 {
			codeLen[s] = 0
			continue
		}
		l := uint8(tableLog + 1 - int(w))
		codeLen[s] = l
		blCount[l]++
	}

	var firstCode [MaxTableLog + 2]uint32
	code := uint32(0)
	for l := 1; l <= MaxTableLog+1; l++ {
		code = (code + uint32(blCount[l-1])) << 1
		firstCode[l] = code
	}

	entries := make([]tableEntry, total)
	for s, l := range codeLen {
		if l == 0 {
			continue
		}
		c := firstCode[l]
		firstCode[l]++
		fillRange(entries, tableLog, c, int(l), byte(s))
	}
	return &Table{tableLog: tableLog, entries: entries}, nil
}

// fillRange fills every decode-table slot whose top `length` bits equal
// code with (symbol, length): Huff0's codes are read MSB-first, so any
// suffix bits below the code's own length are don't-cares.
func fillRange(entries []tableEntry, tableLog int, code uint32, length int, symbol byte) {
	shift := uint(tableLog - length)
	base := int(code) << shift
	span := 1 << shift
	for i := base; i < base+span; i++ {
		entries[i] = tableEntry{symbol: symbol, nbBits: uint8(length)}
	}
}

func highBit(v int) int {
	return 31 - bits.LeadingZeros32(uint32(v))
}

// Decode fills dst with exactly len(dst) decoded bytes from a single
// reverse-ordered entropy stream.
func (t *Table) Decode(stream []byte, dst []byte) error {
	rev, err := bitreader.NewReverse(stream)
	if err != nil {
		return err
	}
	return t.decodeInto(rev, dst)
}

func (t *Table) decodeInto(rev *bitreader.Reverse, dst []byte) error {
	for i := range dst {
		peek, err := rev.Peek(t.tableLog)
		if err != nil {
			return ErrStreamCorrupt
		}
		e := t.entries[peek]
		if e.nbBits == 0 {
			return ErrStreamCorrupt
		}
		if err := rev.Advance(int(e.nbBits)); err != nil {
			return ErrStreamCorrupt
		}
		dst[i] = e.symbol
	}
	return nil
}

// DecodeX4 decodes Huff0's 4-stream interleaved layout: a 6-byte jump
// table giving the compressed sizes of streams 1-3 (stream 4 is
// whatever remains), with regeneratedSize split into four roughly-equal
// output spans, each produced independently from its own stream.
func (t *Table) DecodeX4(data []byte, regeneratedSize int) ([]byte, error) {
	if len(data) < 6 {
		return nil, ErrStreamCorrupt
	}
	size1 := int(data[0]) | int(data[1])<<8
	size2 := int(data[2]) | int(data[3])<<8
	size3 := int(data[4]) | int(data[5])<<8
	off := 6
	if off+size1+size2+size3 > len(data) {
		return nil, ErrStreamCorrupt
	}
	s1 := data[off : off+size1]
	off += size1
	s2 := data[off : off+size2]
	off += size2
	s3 := data[off : off+size3]
	off += size3
	s4 := data[off:]

	outLens := splitFour(regeneratedSize)
	dst := make([]byte, regeneratedSize)
	pos := 0
	for i, stream := range [][]byte{s1, s2, s3, s4} {
		n := outLens[i]
		if err := t.Decode(stream, dst[pos:pos+n]); err != nil {
			return nil, err
		}
		pos += n
	}
	return dst, nil
}

// splitFour divides total into Huff0's four stream segment sizes: the
// first three equal to ceil(total/4) rounded to a whole number, the last
// absorbing the remainder.
func splitFour(total int) [4]int {
	seg := (total + 3) / 4
	var out [4]int
	remaining := total
	for i := 0; i < 3; i++ {
		n := seg
		if n > remaining {
			n = remaining
		}
		out[i] = n
		remaining -= n
	}
	out[3] = remaining
	return out
}
