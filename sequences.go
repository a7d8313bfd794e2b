package zstd

import (
	"github.com/mpx42/zstd/internal/bitreader"
	"github.com/mpx42/zstd/internal/fse"
)

type sequenceMode int

const (
	modePredefined sequenceMode = iota
	modeRLE
	modeFSECompressed
	modeRepeat
)

type sequence struct {
	ll, of, ml uint32
}

// llBase/llExtraBits give the base value and number of extra bits for
// literal-length codes 16..35; codes 0..15 are literal (base=code, 0 bits).
var llBase = [...]uint32{16, 18, 20, 22, 24, 28, 32, 40, 48, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 65536}
var llExtraBits = [...]uint8{1, 1, 1, 1, 2, 2, 3, 3, 4, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

// mlBase/mlExtraBits give the base value and number of extra bits for
// match-length codes 32..52; codes 0..31 are base=code+3, 0 bits.
var mlBase = [...]uint32{35, 37, 39, 41, 43, 47, 51, 59, 67, 83, 99, 131, 163, 227, 355, 611, 1123, 2147, 4195, 8291, 16483}
var mlExtraBits = [...]uint8{1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

func literalLengthFromCode(code byte, extra uint32) uint32 {
	if code < 16 {
		return uint32(code)
	}
	i := int(code) - 16
	return llBase[i] + extra
}

func matchLengthFromCode(code byte, extra uint32) uint32 {
	if code < 32 {
		return uint32(code) + 3
	}
	i := int(code) - 32
	return mlBase[i] + extra
}

// parseSequencesHeader reads num_sequences and, if non-zero, the
// compression-modes byte, returning the number of bytes consumed.
func parseSequencesHeader(data []byte) (numSeq int, ll, of, ml sequenceMode, n int, err error) {
	if len(data) < 1 {
		return 0, 0, 0, 0, 0, wrapErr(ErrShortInput, "missing sequences header")
	}
	b0 := data[0]
	switch {
	case b0 == 0:
		return 0, 0, 0, 0, 1, nil
	case b0 < 128:
		numSeq = int(b0)
		n = 1
	case b0 < 255:
		if len(data) < 2 {
			return 0, 0, 0, 0, 0, wrapErr(ErrShortInput, "truncated sequences header")
		}
		numSeq = (int(b0)-128)<<8 + int(data[1])
		n = 2
	default:
		if len(data) < 3 {
			return 0, 0, 0, 0, 0, wrapErr(ErrShortInput, "truncated sequences header")
		}
		numSeq = int(data[1]) + int(data[2])<<8 + 0x7F00
		n = 3
	}
	if len(data) < n+1 {
		return 0, 0, 0, 0, 0, wrapErr(ErrShortInput, "missing compression modes byte")
	}
	modes := data[n]
	ll = sequenceMode(modes >> 6)
	of = sequenceMode((modes >> 4) & 0x3)
	ml = sequenceMode((modes >> 2) & 0x3)
	n++
	return numSeq, ll, of, ml, n, nil
}

// buildSeqTable returns the FSE table to use for one of LL/OF/ML given its
// mode byte, consuming a probability description from data when the mode
// requires one. scratch/valid hold the frame's persisted Repeat-mode table.
func buildSeqTable(mode sequenceMode, data []byte, maxAccuracyLog, maxSymbol int, predefined func() (*fse.Table, error), scratch **fse.Table, valid *bool) (*fse.Table, int, error) {
	switch mode {
	case modePredefined:
		t, err := predefined()
		if err != nil {
			return nil, 0, err
		}
		*scratch, *valid = t, true
		return t, 0, nil
	case modeRLE:
		if len(data) < 1 {
			return nil, 0, wrapErr(ErrShortInput, "missing RLE mode symbol byte")
		}
		t := fse.BuildRLE(data[0])
		*scratch, *valid = t, true
		return t, 1, nil
	case modeRepeat:
		if !*valid {
			return nil, 0, wrapErr(ErrFSEProbsInvalid, "Repeat mode selected with no previously built table")
		}
		return *scratch, 0, nil
	case modeFSECompressed:
		fwd := bitreader.NewForward(data)
		norm, accLog, err := fse.ReadNCount(fwd, maxSymbol)
		if err != nil {
			return nil, 0, err
		}
		if accLog > maxAccuracyLog {
			return nil, 0, wrapErr(ErrFSEProbsInvalid, "accuracy log %d exceeds maximum %d", accLog, maxAccuracyLog)
		}
		t, err := fse.Build(norm, accLog)
		if err != nil {
			return nil, 0, err
		}
		*scratch, *valid = t, true
		return t, fwd.BytesConsumed(), nil
	}
	return nil, 0, wrapErr(ErrFSEProbsInvalid, "unknown compression mode")
}

// decodeSequences reads numSeq (ll, of, ml) triples from the reverse
// bitstream occupying the remainder of a compressed block's body, after
// the three FSE tables have been selected.
func (d *Decoder) decodeSequences(body []byte, numSeq int, llTable, ofTable, mlTable *fse.Table) ([]sequence, error) {
	rev, err := bitreader.NewReverse(body)
	if err != nil {
		return nil, wrapErr(ErrBitstreamUnderrun, "empty sequences bitstream: %v", err)
	}

	llState, err := llTable.NewState(rev)
	if err != nil {
		return nil, err
	}
	ofState, err := ofTable.NewState(rev)
	if err != nil {
		return nil, err
	}
	mlState, err := mlTable.NewState(rev)
	if err != nil {
		return nil, err
	}

	seqs := make([]sequence, 0, numSeq)
	for i := 0; i < numSeq; i++ {
		ofCode := ofTable.Symbol(ofState)
		mlCode := mlTable.Symbol(mlState)
		llCode := llTable.Symbol(llState)

		var ofExtra uint32
		if ofCode > 3 {
			ofExtra, err = rev.GetBits(int(ofCode))
			if err != nil {
				return nil, wrapErr(ErrBitstreamUnderrun, "offset extra bits: %v", err)
			}
		}
		mlExtraBitsN := 0
		if mlCode >= 32 {
			mlExtraBitsN = int(mlExtraBits[mlCode-32])
		}
		mlExtra, err := rev.GetBits(mlExtraBitsN)
		if err != nil {
			return nil, wrapErr(ErrBitstreamUnderrun, "match length extra bits: %v", err)
		}
		llExtraBitsN := 0
		if llCode >= 16 {
			llExtraBitsN = int(llExtraBits[llCode-16])
		}
		llExtra, err := rev.GetBits(llExtraBitsN)
		if err != nil {
			return nil, wrapErr(ErrBitstreamUnderrun, "literal length extra bits: %v", err)
		}

		ll := literalLengthFromCode(llCode, llExtra)
		ml := matchLengthFromCode(mlCode, mlExtra)

		offset, err := d.resolveOffset(ofCode, ofExtra, ll)
		if err != nil {
			return nil, err
		}

		seqs = append(seqs, sequence{ll: ll, of: offset, ml: ml})

		if i < numSeq-1 {
			llState, err = llTable.Update(llState, rev)
			if err != nil {
				return nil, err
			}
			mlState, err = mlTable.Update(mlState, rev)
			if err != nil {
				return nil, err
			}
			ofState, err = ofTable.Update(ofState, rev)
			if err != nil {
				return nil, err
			}
		}
	}
	return seqs, nil
}

// resolveOffset applies the repeat-offset rule, updating the decoder's
// three-entry offset history and returning the effective match offset.
func (d *Decoder) resolveOffset(ofCode byte, extra uint32, ll uint32) (uint32, error) {
	o1, o2, o3 := d.offsetHistory[0], d.offsetHistory[1], d.offsetHistory[2]

	if ofCode > 3 {
		offset := (uint32(1) << ofCode) + extra
		d.offsetHistory = [3]uint32{offset, o1, o2}
		return offset, nil
	}

	// slot identifies which history entry fed the chosen offset, so the
	// post-update shift is driven by position rather than by value
	// (repeat offsets can coincide numerically without being the same slot).
	const (
		slotO1 = iota
		slotO2
		slotO3
		slotO1Minus1
	)
	var chosen uint32
	var slot int
	switch ofCode {
	case 0:
		if ll == 0 {
			chosen, slot = o2, slotO2
		} else {
			chosen, slot = o1, slotO1
		}
	case 1:
		if ll == 0 {
			chosen, slot = o3, slotO3
		} else {
			chosen, slot = o2, slotO2
		}
	case 2:
		if ll == 0 {
			if o1 <= 1 {
				return 0, wrapErr(ErrFSEProbsInvalid, "repeat offset code 2 with ll==0 requires o1>1")
			}
			chosen, slot = o1-1, slotO1Minus1
		} else {
			chosen, slot = o3, slotO3
		}
	case 3:
		if ll == 0 {
			if o1 <= 1 {
				return 0, wrapErr(ErrFSEProbsInvalid, "repeat offset code 3 with ll==0 requires o1>1")
			}
			chosen, slot = o1-1, slotO1Minus1
		} else {
			chosen, slot = o1, slotO1
		}
	}

	switch slot {
	case slotO1:
		// o1 stays first; history unchanged.
	case slotO2:
		d.offsetHistory = [3]uint32{o2, o1, o3}
	case slotO3:
		d.offsetHistory = [3]uint32{o3, o1, o2}
	case slotO1Minus1:
		d.offsetHistory = [3]uint32{chosen, o1, o2}
	}
	return chosen, nil
}
