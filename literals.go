package zstd

import (
	"github.com/mpx42/zstd/internal/huff0"
)

type literalsType int

const (
	literalsRaw literalsType = iota
	literalsRLE
	literalsCompressed
	literalsTreeless
)

type literalsSection struct {
	kind          literalsType
	regeneratedSize int
	data          []byte // decoded literal bytes, ready for the executor's cursor
}

// parseLiterals reads the literals section at the front of data (which
// holds exactly one block's body) and returns the decoded literals plus
// the number of bytes of data consumed.
func (d *Decoder) parseLiterals(data []byte) (*literalsSection, int, error) {
	if len(data) < 1 {
		return nil, 0, wrapErr(ErrShortInput, "missing literals section header")
	}
	first := data[0]
	kind := literalsType(first & 0x3)
	sizeFormat := (first >> 2) & 0x3

	switch kind {
	case literalsRaw, literalsRLE:
		var regen, headerLen int
		switch sizeFormat {
		case 0, 2:
			headerLen = 1
			regen = int(first >> 3)
		case 1:
			if len(data) < 2 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen = 2
			regen = int(first>>4) | int(data[1])<<4
		case 3:
			if len(data) < 3 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen = 3
			regen = int(first>>4) | int(data[1])<<4 | int(data[2])<<12
		}
		if kind == literalsRaw {
			if len(data) < headerLen+regen {
				return nil, 0, wrapErr(ErrShortInput, "truncated raw literals")
			}
			out := make([]byte, regen)
			copy(out, data[headerLen:headerLen+regen])
			return &literalsSection{kind: kind, regeneratedSize: regen, data: out}, headerLen + regen, nil
		}
		if len(data) < headerLen+1 {
			return nil, 0, wrapErr(ErrShortInput, "truncated RLE literals")
		}
		out := make([]byte, regen)
		b := data[headerLen]
		for i := range out {
			out[i] = b
		}
		return &literalsSection{kind: kind, regeneratedSize: regen, data: out}, headerLen + 1, nil

	case literalsCompressed, literalsTreeless:
		var regen, compSize, headerLen, streams int
		switch sizeFormat {
		case 0:
			if len(data) < 3 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen, streams = 3, 1
			v := uint32(first) | uint32(data[1])<<8 | uint32(data[2])<<16
			regen = int((v >> 4) & 0x3FF)
			compSize = int((v >> 14) & 0x3FF)
		case 1:
			if len(data) < 3 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen, streams = 3, 4
			v := uint32(first) | uint32(data[1])<<8 | uint32(data[2])<<16
			regen = int((v >> 4) & 0x3FF)
			compSize = int((v >> 14) & 0x3FF)
		case 2:
			if len(data) < 4 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen, streams = 4, 4
			v := uint32(first) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
			regen = int((v >> 4) & 0x3FFF)
			compSize = int((v >> 18) & 0x3FFF)
		case 3:
			if len(data) < 5 {
				return nil, 0, wrapErr(ErrShortInput, "truncated literals header")
			}
			headerLen, streams = 5, 4
			v := uint64(first) | uint64(data[1])<<8 | uint64(data[2])<<16 | uint64(data[3])<<24 | uint64(data[4])<<32
			regen = int((v >> 4) & 0x3FFFF)
			compSize = int((v >> 22) & 0x3FFFF)
		}
		if len(data) < headerLen+compSize {
			return nil, 0, wrapErr(ErrShortInput, "truncated compressed literals body")
		}
		body := data[headerLen : headerLen+compSize]

		if kind == literalsCompressed {
			tbl, n, err := huff0.ReadTable(body)
			if err != nil {
				return nil, 0, err
			}
			d.huffTable = tbl
			d.huffValid = true
			body = body[n:]
		} else if !d.huffValid {
			return nil, 0, wrapErr(ErrHuffmanTableCorrupt, "treeless literals with no prior Huffman table")
		}

		var out []byte
		var err error
		if streams == 1 {
			out = make([]byte, regen)
			err = d.huffTable.Decode(body, out)
		} else {
			out, err = d.huffTable.DecodeX4(body, regen)
		}
		if err != nil {
			return nil, 0, err
		}
		return &literalsSection{kind: kind, regeneratedSize: regen, data: out}, headerLen + compSize, nil
	}
	return nil, 0, wrapErr(ErrLiteralsHeaderCorrupt, "unreachable literals type")
}
