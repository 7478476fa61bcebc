package format_test

import (
	"bytes"
	"testing"

	"github.com/freemorger/voxvm/format"
)

func TestWriteReadRoundTrip(t *testing.T) {
	hdr := format.Header{
		EntryPoint: 0x100,
		DataBase:   0x200,
		CodeSize:   0x200,
		DataSize:   0x50,
		FuncTable: []format.FuncEntry{
			{Index: 1, Address: 0x120},
			{Index: 0, Address: 0x100},
		},
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, hdr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, tableEnd, err := format.Read(buf.Bytes(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != format.CurrentVersion {
		t.Errorf("got version %d, want %d", got.Version, format.CurrentVersion)
	}
	if got.EntryPoint != hdr.EntryPoint || got.DataBase != hdr.DataBase {
		t.Errorf("entry/data_base mismatch: %+v", got)
	}
	if len(got.FuncTable) != 2 || got.FuncTable[0].Index != 0 || got.FuncTable[1].Index != 1 {
		t.Errorf("expected function table sorted by index, got %+v", got.FuncTable)
	}
	if tableEnd != format.HeaderSize+2*format.FuncTableEntrySize {
		t.Errorf("unexpected table end offset %d", tableEnd)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	data := make([]byte, format.HeaderSize)
	copy(data, []byte("NOPE"))
	if _, _, err := format.Read(data, 0); err != format.ErrBadMagic {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestReadRejectsTruncated(t *testing.T) {
	if _, _, err := format.Read([]byte{1, 2, 3}, 0); err != format.ErrTruncated {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestReadRejectsBelowMinimumVersion(t *testing.T) {
	var buf bytes.Buffer
	_ = format.Write(&buf, format.Header{})
	_, _, err := format.Read(buf.Bytes(), format.CurrentVersion+1)
	var verErr *format.ErrUnsupportedVersion
	if !errorsAs(err, &verErr) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func errorsAs(err error, target **format.ErrUnsupportedVersion) bool {
	ve, ok := err.(*format.ErrUnsupportedVersion)
	if !ok {
		return false
	}
	*target = ve
	return true
}
