package fse

import (
	"testing"

	"github.com/mpx42/zstd/internal/bitreader"
)

func TestBuildRejectsBadSum(t *testing.T) {
	// accuracyLog 2 => tableSize 4, but counts only sum to 3.
	_, err := Build([]int16{1, 1, 1}, 2)
	if err != ErrProbabilitiesInvalid {
		t.Fatalf("got %v, want ErrProbabilitiesInvalid", err)
	}
}

func TestBuildRejectsBadAccuracyLog(t *testing.T) {
	if _, err := Build([]int16{1}, 0); err != ErrInvalidAccuracyLog {
		t.Fatalf("got %v, want ErrInvalidAccuracyLog", err)
	}
	if _, err := Build([]int16{1}, MaxAccuracyLog+1); err != ErrInvalidAccuracyLog {
		t.Fatalf("got %v, want ErrInvalidAccuracyLog", err)
	}
}

func TestBuildFlatTwoSymbol(t *testing.T) {
	// accuracyLog 1 => tableSize 2, one state per symbol: a fully flat
	// table in which both symbols must be reachable from some state.
	tbl, err := Build([]int16{1, 1}, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seen := map[byte]bool{}
	for state := uint32(0); state < 2; state++ {
		seen[tbl.Symbol(state)] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected both symbols reachable, got %v", seen)
	}
}

func TestBuildRLE(t *testing.T) {
	tbl := BuildRLE(7)
	if tbl.Symbol(0) != 7 {
		t.Fatalf("RLE symbol = %d, want 7", tbl.Symbol(0))
	}
	state, err := tbl.Update(0, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if state != 0 {
		t.Fatalf("RLE state should stay 0, got %d", state)
	}
}

func TestPredefinedTablesBuild(t *testing.T) {
	if _, err := PredefinedLL(); err != nil {
		t.Fatalf("PredefinedLL: %v", err)
	}
	if _, err := PredefinedML(); err != nil {
		t.Fatalf("PredefinedML: %v", err)
	}
	if _, err := PredefinedOF(); err != nil {
		t.Fatalf("PredefinedOF: %v", err)
	}
}

// packBits assembles a byte slice from fields pushed LSB-first in the same
// bit order bitreader.Forward.GetBits consumes them, so a test can describe
// a bitstream as a sequence of (value, width) fields instead of raw bytes.
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

func TestReadNCountRoundTrip(t *testing.T) {
	// accuracyLog=5 (rawLog field 0) => tableSize=32, two symbols with
	// counts 20 and 12 (sum 32), maxSymbol=1. Symbol 0 takes the
	// adaptive field's low branch; symbol 1 takes the high branch,
	// exercising both paths of the width-shrinking trick.
	p := &bitPacker{}
	p.push(0, 4)  // rawLog => accuracyLog 5
	p.push(21, 5) // symbol 0: low branch, value=count+1=21 => count=20
	p.push(7, 3)  // symbol 1: high branch low bits
	p.push(1, 1)  // symbol 1: high branch extra bit

	br := bitreader.NewForward(p.bytes)
	counts, accuracyLog, err := ReadNCount(br, 1)
	if err != nil {
		t.Fatalf("ReadNCount: %v", err)
	}
	if accuracyLog != 5 {
		t.Fatalf("accuracyLog = %d, want 5", accuracyLog)
	}
	if len(counts) != 2 || counts[0] != 20 || counts[1] != 12 {
		t.Fatalf("counts = %v, want [20 12]", counts)
	}
	if _, err := Build(counts, accuracyLog); err != nil {
		t.Fatalf("Build from parsed counts: %v", err)
	}
}
