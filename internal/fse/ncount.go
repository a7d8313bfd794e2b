package fse

import (
	"errors"

	"github.com/mpx42/zstd/internal/bitreader"
)

// ErrNCountCorrupt is returned when a probability description's bit layout
// cannot be parsed (too many symbols, or the adaptive-width field runs past
// the table size it declared).
var ErrNCountCorrupt = errors.New("fse: corrupt probability description")

// ReadNCount parses a table description from the forward bit reader: a
// 4-bit accuracy-log field (value + 5), followed by a symbol-by-symbol
// stream of signed counts encoded with a shrinking adaptive bit width, with
// runs of zero-probability symbols compressed by a 2-bit repeat field. It
// returns the normalized counts (indexed by symbol) and the accuracy log.
//
// maxSymbol bounds how many counts may be read (35 for literal lengths, 52
// for match lengths, or the frame's maximum offset code for offsets).
func ReadNCount(br *bitreader.Forward, maxSymbol int) ([]int16, int, error) {
	rawLog, err := br.GetBits(4)
	if err != nil {
		return nil, 0, err
	}
	accuracyLog := int(rawLog) + 5
	if accuracyLog < 5 || accuracyLog > MaxAccuracyLog {
		return nil, 0, ErrInvalidAccuracyLog
	}

	tableSize := 1 << accuracyLog
	counts := make([]int16, maxSymbol+1)

	nbBits := accuracyLog + 1
	threshold := 1 << accuracyLog
	remaining := tableSize + 1
	charnum := 0
	previous0 := false

	for remaining > 1 && charnum <= maxSymbol {
		if previous0 {
			for {
				n2, err := br.GetBits(2)
				if err != nil {
					return nil, 0, err
				}
				charnum += int(n2)
				if n2 < 3 {
					break
				}
			}
			if charnum > maxSymbol {
				return nil, 0, ErrTooManySymbols
			}
		}

		lowBits, err := br.GetBits(nbBits - 1)
		if err != nil {
			return nil, 0, err
		}
		max := (2*threshold - 1) - remaining
		var count int
		if int(lowBits) < max {
			count = int(lowBits)
		} else {
			extra, err := br.GetBits(1)
			if err != nil {
				return nil, 0, err
			}
			full := int(lowBits) | (int(extra) << uint(nbBits-1))
			if full >= threshold {
				full -= max
			}
			count = full
		}
		count--

		if count < 0 {
			remaining -= -count
		} else {
			remaining -= count
		}
		if charnum > maxSymbol {
			return nil, 0, ErrTooManySymbols
		}
		counts[charnum] = int16(count)
		charnum++
		previous0 = count == 0

		for remaining < threshold {
			nbBits--
			threshold >>= 1
		}
	}
	if remaining != 1 {
		return nil, 0, ErrNCountCorrupt
	}
	return counts, accuracyLog, nil
}
