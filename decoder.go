package zstd

import (
	"encoding/binary"
	"errors"

	"github.com/mpx42/zstd/internal/dicttable"
	"github.com/mpx42/zstd/internal/fse"
	"github.com/mpx42/zstd/internal/huff0"
	"github.com/mpx42/zstd/internal/window"
)

type decoderState int

const (
	stateIdle decoderState = iota
	stateDecodingBlocks
	stateAwaitingChecksum
	stateDone
)

// Decoder turns a Zstandard-compressed byte stream into its original
// bytes. It owns the frame's entropy scratch tables, offset history and
// sliding-window output buffer for the duration of one frame, and
// supports being fed fresh, non-overlapping chunks of compressed input
// across repeated DecodeFromTo calls.
type Decoder struct {
	maxWindowSize int
	newHasher     func() Hasher
	dictCache     *DictTableCache

	dict *dicttable.Table

	state  decoderState
	header *frameHeader

	pending []byte // compressed bytes received but not yet consumed into frame/block state

	window        *window.Buffer
	hasher        Hasher
	offsetHistory [3]uint32

	huffTable *huff0.Table
	huffValid bool
	llTable   *fse.Table
	llValid   bool
	ofTable   *fse.Table
	ofValid   bool
	mlTable   *fse.Table
	mlValid   bool

	outReady []byte // decoded bytes drained from window but not yet copied to a caller

	checksumFromData   uint32
	hasChecksumFromData bool
	calculatedChecksum   uint32
	hasCalculatedChecksum bool
}

// New constructs a Decoder with no frame loaded. Call Reset (directly, or
// implicitly via the first DecodeFromTo call) before decoding.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		maxWindowSize: DefaultMaxWindowSize,
		newHasher:     NewHasher,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddDict installs a dictionary to be used by the next Reset. The
// dictionary's own FSE/Huffman tables become the frame's Repeat-mode
// defaults, and its declared offset history seeds the frame's initial
// [o1, o2, o3].
func (d *Decoder) AddDict(raw []byte) error {
	var (
		tbl *dicttable.Table
		err error
	)
	if d.dictCache != nil {
		tbl, err = d.dictCache.Parse(raw)
	} else {
		tbl, err = dicttable.Parse(raw)
	}
	if err != nil {
		return err
	}
	d.dict = tbl
	return nil
}

// Reset discards any in-progress frame and prepares the decoder for a new
// one, clearing all entropy scratch and offset history to the defaults
// (or to the installed dictionary's, if any).
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.header = nil
	d.pending = nil
	d.outReady = nil
	d.hasChecksumFromData = false
	d.hasCalculatedChecksum = false

	d.offsetHistory = [3]uint32{1, 4, 8}
	d.huffTable, d.huffValid = nil, false
	d.llTable, d.llValid = nil, false
	d.ofTable, d.ofValid = nil, false
	d.mlTable, d.mlValid = nil, false

	if d.dict != nil && !d.dict.RawContent {
		d.offsetHistory = d.dict.OffsetHistory
		if d.dict.Huffman != nil {
			d.huffTable, d.huffValid = d.dict.Huffman, true
		}
		if d.dict.LiteralLengths != nil {
			d.llTable, d.llValid = d.dict.LiteralLengths, true
		}
		if d.dict.Offsets != nil {
			d.ofTable, d.ofValid = d.dict.Offsets, true
		}
		if d.dict.MatchLengths != nil {
			d.mlTable, d.mlValid = d.dict.MatchLengths, true
		}
	}

	d.hasher = d.newHasher()
	d.window = window.New(d.maxWindowSize, d.hasher)
	if d.dict != nil {
		d.window.SetDictContent(d.dict.Content)
	}
}

// IsFinished reports whether the current frame has been fully decoded
// (all blocks processed and, if present, the checksum verified).
func (d *Decoder) IsFinished() bool {
	return d.state == stateDone
}

// CanCollect reports how many decoded bytes are currently available to
// read without supplying more compressed input.
func (d *Decoder) CanCollect() int {
	if d.window == nil {
		return 0
	}
	n := len(d.outReady)
	if d.state == stateDone {
		return n + d.window.CanDrain()
	}
	wn, _ := d.window.CanDrainToWindowSize()
	return n + wn
}

// Collect drains all currently-available decoded output and returns it as
// a new slice, the non-streaming counterpart to CanCollect/DecodeFromTo for
// callers that would rather own a growing buffer than pre-size a target.
func (d *Decoder) Collect() ([]byte, error) {
	n := d.CanCollect()
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	d.drainInto(out)
	return out, nil
}

// ContentSize reports the frame's declared content size, if its header
// carried one.
func (d *Decoder) ContentSize() (uint64, bool) {
	if d.header == nil {
		return 0, false
	}
	return d.header.contentSize, d.header.hasContentSize
}

// ChecksumFromData reports the XXH64 checksum read from the frame's
// trailer, once the whole frame has been consumed.
func (d *Decoder) ChecksumFromData() (uint32, bool) {
	return d.checksumFromData, d.hasChecksumFromData
}

// CalculatedChecksum reports the checksum the decoder computed over the
// bytes it actually produced, once the whole frame has been consumed.
func (d *Decoder) CalculatedChecksum() (uint32, bool) {
	return d.calculatedChecksum, d.hasCalculatedChecksum
}

// DecodeFromTo feeds source (fresh bytes continuing exactly where the
// previous call's consumption left off) into the decoder and copies as
// much decoded output as fits into target, decoding as many blocks as
// necessary (and as the buffered input allows) to do so. It returns the
// number of bytes consumed from source and written to target.
//
// Reset is called implicitly on the first use of a Decoder returned by
// New. Once a frame has reached IsFinished, further calls only deliver its
// remaining output; Reset must be called explicitly to decode another frame.
func (d *Decoder) DecodeFromTo(source, target []byte) (read, written int, err error) {
	if d.window == nil {
		d.Reset()
	}
	d.pending = append(d.pending, source...)
	read = len(source)

	if len(target) == 0 && d.CanCollect() > 0 {
		return read, 0, wrapErr(ErrTargetTooSmall, "%d decoded bytes are ready but target has no capacity", d.CanCollect())
	}

	for {
		n := d.drainInto(target[written:])
		written += n

		if written == len(target) {
			return read, written, nil
		}
		if d.state == stateDone {
			return read, written, nil
		}

		advanced, err := d.step()
		if err != nil {
			return read, written, err
		}
		if !advanced {
			return read, written, nil
		}
	}
}

// drainInto copies already-decoded bytes into target, pulling more from
// the window buffer (respecting the window-size retention rule unless
// the frame is finished) only once outReady is empty.
func (d *Decoder) drainInto(target []byte) int {
	if len(target) == 0 {
		return 0
	}
	if len(d.outReady) == 0 {
		if d.state == stateDone {
			d.outReady = d.window.Drain()
		} else {
			d.outReady = d.window.DrainToWindowSize()
		}
	}
	n := copy(target, d.outReady)
	d.outReady = d.outReady[n:]
	return n
}

// step advances the decoder's state machine by exactly one unit of work
// (a frame header, one block, or the trailing checksum), provided enough
// bytes are already buffered in d.pending. It reports false, nil when
// more input is required before any progress can be made.
func (d *Decoder) step() (bool, error) {
	switch d.state {
	case stateIdle:
		hdr, n, err := parseFrameHeader(d.pending, d.maxWindowSize)
		if err != nil {
			if errors.Is(err, ErrShortInput) {
				return false, nil
			}
			return false, err
		}
		if err := d.onFrameHeader(hdr); err != nil {
			return false, err
		}
		d.pending = d.pending[n:]
		d.state = stateDecodingBlocks
		return true, nil

	case stateDecodingBlocks:
		return d.decodeOneBlock()

	case stateAwaitingChecksum:
		if len(d.pending) < 4 {
			return false, nil
		}
		d.checksumFromData = binary.LittleEndian.Uint32(d.pending[:4])
		d.hasChecksumFromData = true
		d.pending = d.pending[4:]

		// Drain (and so hash) every byte still held by the window, so the
		// computed checksum covers the frame's whole output.
		d.outReady = append(d.outReady, d.window.Drain()...)
		sum := d.hasher.Sum64()
		d.calculatedChecksum = uint32(sum)
		d.hasCalculatedChecksum = true
		d.state = stateDone
		if d.calculatedChecksum != d.checksumFromData {
			return false, wrapErr(ErrChecksumMismatch, "frame declared %#08x, computed %#08x", d.checksumFromData, d.calculatedChecksum)
		}
		return true, nil

	default:
		return false, nil
	}
}

func (d *Decoder) onFrameHeader(hdr *frameHeader) error {
	if hdr.hasDictID && hdr.dictID != 0 {
		if d.dict == nil {
			return wrapErr(ErrDictNotProvided, "frame requires dictionary id %d", hdr.dictID)
		}
		if !d.dict.RawContent && d.dict.ID != hdr.dictID {
			return wrapErr(ErrDictIdMismatch, "frame wants %d, installed dictionary is %d", hdr.dictID, d.dict.ID)
		}
	}
	d.header = hdr
	d.window.Reset(hdr.windowSize, d.hasher)
	if d.dict != nil {
		d.window.SetDictContent(d.dict.Content)
	}
	return nil
}

// decodeOneBlock parses and executes exactly one block from the front of
// d.pending, provided its entire wire representation is already
// buffered. It reports false, nil if more input is needed.
func (d *Decoder) decodeOneBlock() (bool, error) {
	hdr, hn, err := parseBlockHeader(d.pending, d.header.windowSize)
	if err != nil {
		if errors.Is(err, ErrShortInput) {
			return false, nil
		}
		return false, err
	}

	wireLen := hdr.blockSize
	if hdr.kind == blockRLE {
		wireLen = 1
	}
	if len(d.pending) < hn+wireLen {
		return false, nil
	}
	body := d.pending[hn : hn+wireLen]
	d.pending = d.pending[hn+wireLen:]

	switch hdr.kind {
	case blockRaw:
		d.window.Push(body)
	case blockRLE:
		out := make([]byte, hdr.blockSize)
		for i := range out {
			out[i] = body[0]
		}
		d.window.Push(out)
	case blockCompressed:
		if err := d.decodeCompressedBlock(body); err != nil {
			return false, err
		}
	}

	if hdr.last {
		if d.header.contentChecksum {
			d.state = stateAwaitingChecksum
		} else {
			d.state = stateDone
		}
	}
	return true, nil
}

func (d *Decoder) decodeCompressedBlock(body []byte) error {
	lits, n, err := d.parseLiterals(body)
	if err != nil {
		return err
	}
	rest := body[n:]

	numSeq, llMode, ofMode, mlMode, n2, err := parseSequencesHeader(rest)
	if err != nil {
		return err
	}
	rest = rest[n2:]

	if numSeq == 0 {
		return d.executeSequences(lits.data, nil, lits.regeneratedSize)
	}

	const (
		maxAccuracyLogLL = 9
		maxAccuracyLogOF = 8
		maxAccuracyLogML = 9
	)

	llTable, n3, err := buildSeqTable(llMode, rest, maxAccuracyLogLL, 35, fse.PredefinedLL, &d.llTable, &d.llValid)
	if err != nil {
		return err
	}
	rest = rest[n3:]

	ofTable, n4, err := buildSeqTable(ofMode, rest, maxAccuracyLogOF, 31, fse.PredefinedOF, &d.ofTable, &d.ofValid)
	if err != nil {
		return err
	}
	rest = rest[n4:]

	mlTable, n5, err := buildSeqTable(mlMode, rest, maxAccuracyLogML, 52, fse.PredefinedML, &d.mlTable, &d.mlValid)
	if err != nil {
		return err
	}
	rest = rest[n5:]

	seqs, err := d.decodeSequences(rest, numSeq, llTable, ofTable, mlTable)
	if err != nil {
		return err
	}

	decompressedSize := lits.regeneratedSize
	for _, s := range seqs {
		decompressedSize += int(s.ml)
	}
	return d.executeSequences(lits.data, seqs, decompressedSize)
}
