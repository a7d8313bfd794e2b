package zstd

import (
	"testing"

	"github.com/mpx42/zstd/internal/fse"
)

func TestParseSequencesHeaderZero(t *testing.T) {
	numSeq, _, _, _, n, err := parseSequencesHeader([]byte{0x00, 0xFF})
	if err != nil {
		t.Fatalf("parseSequencesHeader: %v", err)
	}
	if numSeq != 0 || n != 1 {
		t.Fatalf("numSeq=%d n=%d, want 0,1", numSeq, n)
	}
}

func TestParseSequencesHeaderDirect(t *testing.T) {
	// b0=10 (< 128) -> numSeq=10 directly, then modes byte.
	modes := byte(0)<<6 | byte(1)<<4 | byte(2)<<2
	numSeq, ll, of, ml, n, err := parseSequencesHeader([]byte{10, modes})
	if err != nil {
		t.Fatalf("parseSequencesHeader: %v", err)
	}
	if numSeq != 10 || n != 2 {
		t.Fatalf("numSeq=%d n=%d, want 10,2", numSeq, n)
	}
	if ll != modePredefined || of != modeRLE || ml != modeFSECompressed {
		t.Fatalf("modes = %v %v %v", ll, of, ml)
	}
}

func TestParseSequencesHeaderTwoByte(t *testing.T) {
	// b0=128+1=129, b1=0x10 -> numSeq = (129-128)<<8 + 0x10 = 256+16 = 272
	data := []byte{129, 0x10, 0x00}
	numSeq, _, _, _, n, err := parseSequencesHeader(data)
	if err != nil {
		t.Fatalf("parseSequencesHeader: %v", err)
	}
	if numSeq != 272 || n != 3 {
		t.Fatalf("numSeq=%d n=%d, want 272,3", numSeq, n)
	}
}

func TestParseSequencesHeaderThreeByte(t *testing.T) {
	// b0=255, b1=0x01, b2=0x00 -> numSeq = 1 + 0 + 0x7F00 = 32513
	data := []byte{255, 0x01, 0x00, 0x00}
	numSeq, _, _, _, n, err := parseSequencesHeader(data)
	if err != nil {
		t.Fatalf("parseSequencesHeader: %v", err)
	}
	if numSeq != 0x7F01 || n != 4 {
		t.Fatalf("numSeq=%d n=%d, want %d,4", numSeq, n, 0x7F01)
	}
}

func TestBuildSeqTablePredefined(t *testing.T) {
	var scratch *fse.Table
	valid := false
	tbl, n, err := buildSeqTable(modePredefined, nil, 9, 35, fse.PredefinedLL, &scratch, &valid)
	if err != nil {
		t.Fatalf("buildSeqTable: %v", err)
	}
	if n != 0 || tbl == nil || !valid || scratch != tbl {
		t.Fatalf("unexpected result: n=%d tbl=%v valid=%v", n, tbl, valid)
	}
}

func TestBuildSeqTableRLEConsumesSymbolByte(t *testing.T) {
	var scratch *fse.Table
	valid := false
	tbl, n, err := buildSeqTable(modeRLE, []byte{0x2A, 0xFF}, 9, 35, fse.PredefinedLL, &scratch, &valid)
	if err != nil {
		t.Fatalf("buildSeqTable: %v", err)
	}
	if n != 1 || !valid {
		t.Fatalf("n=%d valid=%v", n, valid)
	}
	if tbl.Symbol(0) != 0x2A {
		t.Fatalf("RLE symbol = %#x, want 0x2A", tbl.Symbol(0))
	}
}

func TestBuildSeqTableRepeatRequiresPriorTable(t *testing.T) {
	var scratch *fse.Table
	valid := false
	_, _, err := buildSeqTable(modeRepeat, nil, 9, 35, fse.PredefinedLL, &scratch, &valid)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrFSEProbsInvalid {
		t.Fatalf("expected ErrFSEProbsInvalid, got %v", err)
	}
}

func TestBuildSeqTableRepeatReusesScratch(t *testing.T) {
	built, err := fse.PredefinedML()
	if err != nil {
		t.Fatalf("PredefinedML: %v", err)
	}
	scratch, valid := built, true
	tbl, n, err := buildSeqTable(modeRepeat, nil, 9, 52, fse.PredefinedML, &scratch, &valid)
	if err != nil {
		t.Fatalf("buildSeqTable: %v", err)
	}
	if n != 0 || tbl != built {
		t.Fatalf("expected the scratch table back unchanged")
	}
}

func TestResolveOffsetExplicitCodePushesHistory(t *testing.T) {
	d := New()
	d.Reset()
	d.offsetHistory = [3]uint32{1, 4, 8}
	offset, err := d.resolveOffset(5, 3, 1) // of_code=5 -> (1<<5)+3 = 35
	if err != nil {
		t.Fatalf("resolveOffset: %v", err)
	}
	if offset != 35 {
		t.Fatalf("offset = %d, want 35", offset)
	}
	if d.offsetHistory != [3]uint32{35, 1, 4} {
		t.Fatalf("history = %v", d.offsetHistory)
	}
}

func TestResolveOffsetCode0ZeroLiteralLengthUsesO2(t *testing.T) {
	d := New()
	d.Reset()
	d.offsetHistory = [3]uint32{1, 4, 8}
	offset, err := d.resolveOffset(0, 0, 0)
	if err != nil {
		t.Fatalf("resolveOffset: %v", err)
	}
	if offset != 4 {
		t.Fatalf("offset = %d, want o2=4", offset)
	}
	if d.offsetHistory != [3]uint32{4, 1, 8} {
		t.Fatalf("history = %v", d.offsetHistory)
	}
}

func TestResolveOffsetCode0NonzeroLiteralLengthUsesO1(t *testing.T) {
	d := New()
	d.Reset()
	d.offsetHistory = [3]uint32{1, 4, 8}
	offset, err := d.resolveOffset(0, 0, 3)
	if err != nil {
		t.Fatalf("resolveOffset: %v", err)
	}
	if offset != 1 {
		t.Fatalf("offset = %d, want o1=1", offset)
	}
	if d.offsetHistory != [3]uint32{1, 4, 8} {
		t.Fatalf("history should be unchanged, got %v", d.offsetHistory)
	}
}

func TestResolveOffsetCode3ZeroLiteralLengthRequiresO1GreaterThanOne(t *testing.T) {
	d := New()
	d.Reset()
	d.offsetHistory = [3]uint32{1, 4, 8}
	_, err := d.resolveOffset(3, 0, 0)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrFSEProbsInvalid {
		t.Fatalf("expected an error for o1<=1, got %v", err)
	}
}

func TestResolveOffsetCode3ZeroLiteralLengthUsesO1MinusOne(t *testing.T) {
	d := New()
	d.Reset()
	d.offsetHistory = [3]uint32{5, 4, 8}
	offset, err := d.resolveOffset(3, 0, 0)
	if err != nil {
		t.Fatalf("resolveOffset: %v", err)
	}
	if offset != 4 {
		t.Fatalf("offset = %d, want o1-1=4", offset)
	}
	if d.offsetHistory != [3]uint32{4, 5, 4} {
		t.Fatalf("history = %v", d.offsetHistory)
	}
}
