// Package fse builds and walks Zstandard's FSE (tANS) decode tables: the
// entropy coder behind the sequences section's literal-length, match-length,
// and offset-code streams, and behind Huff0's own compressed weight
// description.
package fse

import (
	"errors"
	"math/bits"

	"github.com/mpx42/zstd/internal/bitreader"
)

var (
	// ErrInvalidAccuracyLog is returned for an accuracy log outside [1, 9].
	ErrInvalidAccuracyLog = errors.New("fse: invalid accuracy log")
	// ErrProbabilitiesInvalid is returned when a normalized count table
	// does not sum to exactly the declared table size.
	ErrProbabilitiesInvalid = errors.New("fse: probabilities do not sum to table size")
	// ErrTooManySymbols is returned when the probability description names
	// more symbols than the caller's maxSymbol bound allows.
	ErrTooManySymbols = errors.New("fse: symbol count exceeds maximum")
)

// MaxAccuracyLog is the largest accuracy log any of the three sequence
// tables (literal lengths, match lengths, offsets) may declare.
const MaxAccuracyLog = 9

type decEntry struct {
	symbol   byte
	nbBits   uint8
	baseline uint16
}

// Table is a built FSE decode table: for every state in [0, 1<<accuracyLog)
// it records the symbol that state decodes to, how many bits to read to
// find the next state, and the baseline that those bits are added to.
type Table struct {
	accuracyLog int
	dt          []decEntry
}

// AccuracyLog reports the table's size as a power-of-two exponent.
func (t *Table) AccuracyLog() int {
	return t.accuracyLog
}

// Build constructs a decode table from a normalized probability
// description: norm[s] is the symbol s's probability, or -1 for a
// "less than one" probability. The values must sum to 1<<accuracyLog.
func Build(norm []int16, accuracyLog int) (*Table, error) {
	if accuracyLog < 1 || accuracyLog > MaxAccuracyLog {
		return nil, ErrInvalidAccuracyLog
	}
	tableSize := 1 << accuracyLog
	sym := make([]byte, tableSize)
	next := make([]int32, len(norm))
	highThreshold := tableSize - 1

	sum := 0
	for s, c := range norm {
		if c == -1 {
			sym[highThreshold] = byte(s)
			highThreshold--
			next[s] = 1
			sum++
		} else if c > 0 {
			next[s] = int32(c)
			sum += int(c)
		}
	}
	if sum != tableSize {
		return nil, ErrProbabilitiesInvalid
	}

	step := (tableSize >> 1) + (tableSize >> 3) + 3
	mask := tableSize - 1
	pos := 0
	for s, c := range norm {
		if c <= 0 {
			continue
		}
		for i := int16(0); i < c; i++ {
			sym[pos] = byte(s)
			pos = (pos + step) & mask
			for pos > highThreshold {
				pos = (pos + step) & mask
			}
		}
	}
	if pos != 0 {
		return nil, ErrProbabilitiesInvalid
	}

	dt := make([]decEntry, tableSize)
	for i := 0; i < tableSize; i++ {
		s := sym[i]
		nextState := next[s]
		next[s]++
		nbBits := uint8(accuracyLog - highBit(nextState))
		baseline := uint16((nextState << nbBits) - int32(tableSize))
		dt[i] = decEntry{symbol: s, nbBits: nbBits, baseline: baseline}
	}
	return &Table{accuracyLog: accuracyLog, dt: dt}, nil
}

// BuildRLE builds a degenerate one-state table that always decodes to
// the same symbol and never consumes bits, for a block's RLE-mode streams.
func BuildRLE(symbol byte) *Table {
	return &Table{
		accuracyLog: 0,
		dt:          []decEntry{{symbol: symbol, nbBits: 0, baseline: 0}},
	}
}

func highBit(v int32) int {
	return 31 - bits.LeadingZeros32(uint32(v))
}

// NewState reads the table's initial state: accuracyLog bits from the
// reverse bitstream, used directly as an index into the decode table.
func (t *Table) NewState(br *bitreader.Reverse) (uint32, error) {
	v, err := br.GetBits(t.accuracyLog)
	return v, err
}

// Symbol returns the symbol the given state currently decodes to.
func (t *Table) Symbol(state uint32) byte {
	return t.dt[state].symbol
}

// Update reads the current state's transition bits and returns the next
// state, to be used for the table's following symbol decode.
func (t *Table) Update(state uint32, br *bitreader.Reverse) (uint32, error) {
	e := t.dt[state]
	if e.nbBits == 0 {
		return uint32(e.baseline), nil
	}
	bits, err := br.GetBits(int(e.nbBits))
	if err != nil {
		return 0, err
	}
	return uint32(e.baseline) + bits, nil
}
