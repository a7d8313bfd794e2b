package dicttable

import (
	"encoding/binary"
	"testing"
)

func TestParseRawContentFallback(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	tbl, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tbl.RawContent {
		t.Fatalf("expected RawContent dictionary")
	}
	if string(tbl.Content) != string(raw) {
		t.Fatalf("content = %v, want %v", tbl.Content, raw)
	}
	if tbl.OffsetHistory != [3]uint32{1, 4, 8} {
		t.Fatalf("offset history = %v, want default [1 4 8]", tbl.OffsetHistory)
	}
}

func TestParseTruncatedMagicOnly(t *testing.T) {
	raw := append([]byte{}, Magic[:]...)
	if _, err := Parse(raw); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

// bitPacker assembles a byte slice from fields pushed LSB-first, matching
// bitreader.Forward's read order, mirroring the fse package's test helper.
type bitPacker struct {
	bitLen int
	bytes  []byte
}

func (p *bitPacker) push(v uint64, n int) {
	for i := 0; i < n; i++ {
		if p.bitLen/8 >= len(p.bytes) {
			p.bytes = append(p.bytes, 0)
		}
		bit := byte((v >> uint(i)) & 1)
		p.bytes[p.bitLen/8] |= bit << uint(p.bitLen%8)
		p.bitLen++
	}
}

// fseBlob packs a minimal two-symbol FSE table description (accuracyLog
// 5, counts [20, 12]): the same bit pattern the fse package's own
// ReadNCount round-trip test uses.
func fseBlob() []byte {
	p := &bitPacker{}
	p.push(0, 4)
	p.push(21, 5)
	p.push(7, 3)
	p.push(1, 1)
	return p.bytes
}

func TestParseMagicPrefixedDictionary(t *testing.T) {
	var raw []byte
	raw = append(raw, Magic[:]...)

	id := make([]byte, 4)
	binary.LittleEndian.PutUint32(id, 0xCAFEBABE)
	raw = append(raw, id...)

	// Direct-weight Huffman table: 2 explicit weights, 1 and 0.
	raw = append(raw, 0x81, 0x10)

	raw = append(raw, fseBlob()...) // offsets
	raw = append(raw, fseBlob()...) // match lengths
	raw = append(raw, fseBlob()...) // literal lengths

	offsets := make([]byte, 12)
	binary.LittleEndian.PutUint32(offsets[0:4], 11)
	binary.LittleEndian.PutUint32(offsets[4:8], 22)
	binary.LittleEndian.PutUint32(offsets[8:12], 33)
	raw = append(raw, offsets...)

	raw = append(raw, []byte("dictionary content")...)

	tbl, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.RawContent {
		t.Fatalf("expected a magic-prefixed dictionary, got RawContent")
	}
	if tbl.ID != 0xCAFEBABE {
		t.Fatalf("ID = %x, want CAFEBABE", tbl.ID)
	}
	if tbl.OffsetHistory != [3]uint32{11, 22, 33} {
		t.Fatalf("offset history = %v", tbl.OffsetHistory)
	}
	if string(tbl.Content) != "dictionary content" {
		t.Fatalf("content = %q", tbl.Content)
	}
	if tbl.Huffman == nil || tbl.Offsets == nil || tbl.MatchLengths == nil || tbl.LiteralLengths == nil {
		t.Fatalf("expected all four entropy tables to be populated")
	}
}
