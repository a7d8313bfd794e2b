package zstd

import (
	"errors"

	"github.com/mpx42/zstd/internal/window"
)

// executeSequences replays a block's decoded sequences against the sliding
// window, consuming literal bytes from lits in order and invoking Repeat
// for each match. After the last sequence, any literal bytes not yet
// consumed are appended verbatim.
func (d *Decoder) executeSequences(lits []byte, seqs []sequence, decompressedSize int) error {
	cursor := 0
	total := 0
	for _, s := range seqs {
		if cursor+int(s.ll) > len(lits) {
			return wrapErr(ErrSequenceCountMismatch, "literal run exceeds available literals")
		}
		if s.ll > 0 {
			d.window.Push(lits[cursor : cursor+int(s.ll)])
			cursor += int(s.ll)
		}
		if err := d.window.Repeat(int(s.of), int(s.ml)); err != nil {
			if errors.Is(err, window.ErrDictionaryOffsetTooLarge) {
				return wrapErr(ErrDictionaryOffsetTooLarge, "offset %d, match length %d", s.of, s.ml)
			}
			return wrapErr(ErrOffsetExceedsWindow, "offset %d, match length %d", s.of, s.ml)
		}
		total += int(s.ll) + int(s.ml)
	}
	remaining := lits[cursor:]
	if len(remaining) > 0 {
		d.window.Push(remaining)
	}
	total += len(remaining)
	if total != decompressedSize {
		return wrapErr(ErrSequenceCountMismatch, "decoded %d bytes, block declared %d", total, decompressedSize)
	}
	return nil
}
