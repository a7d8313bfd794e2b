package zstd

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Hasher accumulates a running checksum over the decoder's output bytes.
// *xxhash.Digest satisfies this directly, the same way
// internal/fileid uses it in the teacher repo: as a plain io.Writer with
// a Sum64 method, no adapter needed.
type Hasher interface {
	io.Writer
	Sum64() uint64
}

// NewHasher returns the default checksum implementation: an XXH64 digest
// seeded at 0, matching the frame checksum's declared algorithm.
func NewHasher() Hasher {
	return xxhash.New()
}
