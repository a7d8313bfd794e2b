// Package bitreader implements the two bit-level cursors the Zstandard
// entropy coders need: a plain forward LSB-first reader for header fields,
// and a reverse MSB-first reader for Huff0/FSE bitstreams, which the
// format writes so that decoding starts from the high-order end of the
// block and walks back toward byte 0.
package bitreader

import (
	"errors"
	"math/bits"
)

var (
	// ErrEmptyStream is returned building a Reverse reader over no bytes.
	ErrEmptyStream = errors.New("bitreader: empty reverse bitstream")
	// ErrNoSentinel is returned when the final byte of a reverse stream
	// has no set bit to serve as the padding sentinel.
	ErrNoSentinel = errors.New("bitreader: reverse bitstream missing sentinel bit")
	// ErrUnderrun is returned when fewer bits remain than were requested.
	ErrUnderrun = errors.New("bitreader: not enough bits remain in stream")
	// ErrOverrun is returned for a request wider than a single read can serve.
	ErrOverrun = errors.New("bitreader: requested width out of range")
)

// Forward reads bits out of a byte slice LSB-first, advancing from byte 0
// onward. It backs the bit-packed FSE table descriptions (fse.ReadNCount)
// found in sequences sections, Huff0 weight headers and dictionaries.
type Forward struct {
	data   []byte
	bitPos int
}

// NewForward wraps data for forward LSB-first reading.
func NewForward(data []byte) *Forward {
	return &Forward{data: data}
}

// GetBits returns the next n bits (0..56), LSB-first.
func (r *Forward) GetBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 56 {
		return 0, ErrOverrun
	}
	if r.bitPos+n > len(r.data)*8 {
		return 0, ErrUnderrun
	}
	var v uint64
	for i := 0; i < n; i++ {
		bitIndex := r.bitPos + i
		bit := (r.data[bitIndex/8] >> uint(bitIndex%8)) & 1
		v |= uint64(bit) << uint(i)
	}
	r.bitPos += n
	return v, nil
}

// BytesConsumed rounds the current bit position up to whole bytes.
func (r *Forward) BytesConsumed() int {
	return (r.bitPos + 7) / 8
}

const accBits = 64

// Reverse reads a Huff0/FSE bitstream from its high-order end backward.
// The stream's last byte carries a padding sentinel: its highest set bit
// marks the boundary between real data (below) and unused filler (above).
//
// The accumulator mirrors the little-endian fill trick in the teacher
// repo's internal/sit/bitreader.go: good bits sit in the low end of acc with a
// single marker bit immediately above them, so the marker's position IS
// the live bit count and no separate counter is needed.
type Reverse struct {
	data     []byte
	nextByte int // index of the next (lower-addressed) byte to fold in
	acc      uint64
}

// NewReverse locates the padding sentinel in the final byte of data and
// prepares to read backward from there.
func NewReverse(data []byte) (*Reverse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyStream
	}
	last := data[len(data)-1]
	if last == 0 {
		return nil, ErrNoSentinel
	}
	return &Reverse{
		data:     data,
		nextByte: len(data) - 2,
		acc:      uint64(last),
	}, nil
}

func (r *Reverse) bitsHeld() int {
	return accBits - bits.LeadingZeros64(r.acc) - 1
}

// fill ensures the accumulator holds at least n valid bits, or every
// remaining byte of the stream, whichever comes first.
func (r *Reverse) fill(n int) {
	held := r.bitsHeld()
	if held >= n {
		return
	}
	r.acc &^= uint64(1) << uint(held) // clear marker, about to extend
	goodbits := held
	for r.nextByte >= 0 {
		r.acc |= uint64(r.data[r.nextByte]) << uint(goodbits)
		r.nextByte--
		goodbits += 8
		if goodbits+9 > accBits {
			break
		}
	}
	r.acc |= uint64(1) << uint(goodbits) // replace marker
}

// GetBits returns the next n bits (0..32) read MSB-first from the
// remaining stream, consuming them.
func (r *Reverse) GetBits(n int) (uint32, error) {
	v, err := r.Peek(n)
	if err != nil {
		return 0, err
	}
	if err := r.Advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

// Peek returns the next n bits (0..32) without consuming them. Huff0
// decode looks up a table entry by peeking max_bits, then advances by
// only however many bits that entry's code actually uses.
func (r *Reverse) Peek(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 32 {
		return 0, ErrOverrun
	}
	r.fill(n)
	held := r.bitsHeld()
	if held < n {
		return 0, ErrUnderrun
	}
	v := (r.acc >> uint(held-n)) & (uint64(1)<<uint(n) - 1)
	return uint32(v), nil
}

// Advance consumes n bits already made available by a prior Peek/fill.
func (r *Reverse) Advance(n int) error {
	if n == 0 {
		return nil
	}
	held := r.bitsHeld()
	if held < n {
		return ErrUnderrun
	}
	keepMask := uint64(1)<<uint(held-n) - 1
	r.acc = (r.acc & keepMask) | (uint64(1) << uint(held-n))
	return nil
}

// Remaining reports how many unread bits are left, including bytes not
// yet folded into the accumulator. Used to detect bitstream underrun
// (left-over unconsumed bits past what the entropy decode expected).
func (r *Reverse) Remaining() int {
	return r.bitsHeld() + 8*(r.nextByte+1)
}
