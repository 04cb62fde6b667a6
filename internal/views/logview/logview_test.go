package logview

import (
	"strings"
	"testing"
)

func TestHexDumpSingleRow(t *testing.T) {
	rows := HexDump([]byte("OK\r\n"))
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !strings.Contains(rows[0], "4F 4B 0D 0A") {
		t.Errorf("hex bytes missing: %q", rows[0])
	}
	if !strings.Contains(rows[0], "|OK..|") {
		t.Errorf("ascii gutter wrong: %q", rows[0])
	}
	if !strings.HasPrefix(rows[0], "0000") {
		t.Errorf("offset missing: %q", rows[0])
	}
}

func TestHexDumpWrapsAtSixteenBytes(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte('a' + i)
	}
	rows := HexDump(data)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !strings.HasPrefix(rows[1], "0010") {
		t.Errorf("second row offset = %q, want 0010 prefix", rows[1])
	}
	if !strings.Contains(rows[1], "|qrst|") {
		t.Errorf("second row ascii = %q", rows[1])
	}
}

func TestHexDumpEmpty(t *testing.T) {
	if rows := HexDump(nil); rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestHexDumpRowsAlign(t *testing.T) {
	full := HexDump(make([]byte, 16))[0]
	partial := HexDump(make([]byte, 3))[0]

	// Hex columns are padded so the ascii gutter starts at the same column.
	if strings.Index(full, "|") != strings.Index(partial, "|") {
		t.Errorf("gutter misaligned:\n%q\n%q", full, partial)
	}
}
