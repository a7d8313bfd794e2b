// Package window implements the sequence executor's sliding-window output
// buffer: an append-only byte slice that serves LZ77 back-references
// (including ones that reach into an optional dictionary prefix) and
// drains completed bytes to a caller while keeping enough trailing history
// live to satisfy the frame's declared window size.
package window

import (
	"errors"
	"io"
)

var (
	// ErrOffsetExceedsWindow is returned when a repeat's offset reaches
	// further back than the buffer holds and no dictionary content can
	// serve it: none is loaded, or the output has already outgrown the
	// window.
	ErrOffsetExceedsWindow = errors.New("window: offset exceeds available history")
	// ErrDictionaryOffsetTooLarge is returned when a repeat's offset
	// reaches past the start of the loaded dictionary content.
	ErrDictionaryOffsetTooLarge = errors.New("window: offset reaches past dictionary content")
)

// Hasher accumulates a running checksum over every byte that leaves the
// buffer via a drain. *xxhash.Digest satisfies this directly.
type Hasher interface {
	io.Writer
	Sum64() uint64
}

// Buffer is the frame decoder's OutputBuffer: bytes accumulate via Push
// and Repeat, then leave via Drain/DrainToWindowSize, hashed exactly once
// as they go.
type Buffer struct {
	buf         []byte
	dictContent []byte
	windowSize  int
	totalOutput uint64
	hash        Hasher
}

// New creates a Buffer bounded to windowSize bytes of retained history,
// feeding hash with every byte that is eventually drained.
func New(windowSize int, hash Hasher) *Buffer {
	return &Buffer{windowSize: windowSize, hash: hash}
}

// Reset clears all content and counters for reuse across frames and
// installs hash as the Hasher that drained bytes are fed to.
func (b *Buffer) Reset(windowSize int, hash Hasher) {
	b.buf = b.buf[:0]
	b.dictContent = nil
	b.windowSize = windowSize
	b.totalOutput = 0
	b.hash = hash
}

// SetDictContent installs a dictionary's raw content as the prefix that
// offsets reaching past the start of buf fall back to.
func (b *Buffer) SetDictContent(content []byte) {
	b.dictContent = content
}

// Len reports how many bytes are currently buffered (not yet drained).
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Push appends literal or raw-block bytes verbatim.
func (b *Buffer) Push(data []byte) {
	b.buf = append(b.buf, data...)
	b.totalOutput += uint64(len(data))
}

// Repeat copies matchLength bytes starting offset bytes back from the
// current end of the buffer, falling back into dictionary content (and
// recursing once the dictionary portion is exhausted) when offset reaches
// further back than the buffer alone can supply.
func (b *Buffer) Repeat(offset, matchLength int) error {
	if offset > len(b.buf) {
		if b.totalOutput > uint64(b.windowSize) || len(b.dictContent) == 0 {
			return ErrOffsetExceedsWindow
		}
		bytesFromDict := offset - len(b.buf)
		if bytesFromDict > len(b.dictContent) {
			return ErrDictionaryOffsetTooLarge
		}
		if bytesFromDict < matchLength {
			dictSlice := b.dictContent[len(b.dictContent)-bytesFromDict:]
			b.buf = append(b.buf, dictSlice...)
			b.totalOutput += uint64(bytesFromDict)
			return b.Repeat(len(b.buf), matchLength-bytesFromDict)
		}
		low := len(b.dictContent) - bytesFromDict
		high := low + matchLength
		b.buf = append(b.buf, b.dictContent[low:high]...)
		b.totalOutput += uint64(matchLength)
		return nil
	}

	startIdx := len(b.buf) - offset
	if startIdx+matchLength > len(b.buf) {
		// Overlapping copy: source and destination regions intersect, so
		// bytes must be copied one at a time in order.
		for i := 0; i < matchLength; i++ {
			b.buf = append(b.buf, b.buf[startIdx+i])
		}
	} else {
		b.buf = append(b.buf, b.buf[startIdx:startIdx+matchLength]...)
	}
	b.totalOutput += uint64(matchLength)
	return nil
}

// CanDrainToWindowSize reports how many leading bytes may be drained while
// still retaining windowSize bytes of trailing history, or false if no more
// than windowSize bytes are currently held.
func (b *Buffer) CanDrainToWindowSize() (int, bool) {
	if len(b.buf) > b.windowSize {
		return len(b.buf) - b.windowSize, true
	}
	return 0, false
}

// CanDrain reports how many bytes could be drained if the window size
// did not need to be preserved (used once the frame is finished).
func (b *Buffer) CanDrain() int {
	return len(b.buf)
}

// DrainToWindowSize removes and returns as many leading bytes as
// CanDrainToWindowSize allows, hashing them first.
func (b *Buffer) DrainToWindowSize() []byte {
	n, ok := b.CanDrainToWindowSize()
	if !ok {
		return nil
	}
	b.hash.Write(b.buf[:n])
	out := make([]byte, n)
	copy(out, b.buf[:n])
	b.buf = b.buf[:copy(b.buf, b.buf[n:])]
	return out
}

// Drain removes and returns every buffered byte, hashing them first. Used
// once a frame has finished and no further back-references are possible.
func (b *Buffer) Drain() []byte {
	b.hash.Write(b.buf)
	out := b.buf
	b.buf = nil
	return out
}

// Read drains up to len(target) bytes while preserving windowSize bytes of
// trailing history, the streaming decoder's pull path into a caller's
// buffer. It returns the number of bytes copied.
func (b *Buffer) Read(target []byte) int {
	maxAmount, ok := b.CanDrainToWindowSize()
	if !ok {
		return 0
	}
	amount := maxAmount
	if amount > len(target) {
		amount = len(target)
	}
	if amount == 0 {
		return 0
	}
	b.hash.Write(b.buf[:amount])
	copy(target, b.buf[:amount])
	b.buf = b.buf[:copy(b.buf, b.buf[amount:])]
	return amount
}
