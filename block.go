package zstd

const maxBlockSize = 128 << 10

type blockType int

const (
	blockRaw blockType = iota
	blockRLE
	blockCompressed
	blockReserved
)

type blockHeader struct {
	last      bool
	kind      blockType
	blockSize int // on-wire size for Raw/Compressed; decompressed size for RLE (whose wire body is 1 byte)
}

// parseBlockHeader reads the 3-byte little-endian block header from the
// front of data.
func parseBlockHeader(data []byte, windowSize int) (*blockHeader, int, error) {
	if len(data) < 3 {
		return nil, 0, wrapErr(ErrShortInput, "need 3 bytes for a block header")
	}
	raw := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16

	hdr := &blockHeader{
		last: raw&1 != 0,
		kind: blockType((raw >> 1) & 0x3),
	}
	size := int(raw >> 3)

	switch hdr.kind {
	case blockReserved:
		return nil, 0, wrapErr(ErrReservedBlockType, "block type field is 3")
	case blockRLE:
		if size > maxBlockSize || size > windowSize {
			return nil, 0, wrapErr(ErrCorruptedBlockHeader, "RLE decompressed size %d exceeds block/window limit", size)
		}
	default:
		limit := windowSize
		if maxBlockSize < limit {
			limit = maxBlockSize
		}
		if size > limit {
			return nil, 0, wrapErr(ErrCorruptedBlockHeader, "block size %d exceeds limit %d", size, limit)
		}
	}
	hdr.blockSize = size
	return hdr, 3, nil
}
