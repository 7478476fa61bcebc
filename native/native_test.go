package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

func newTestVM() *vm.VM {
	return vm.New(make([]byte, 1), 0, nil, 4096, 1000)
}

func TestPrintUintWritesDecimal(t *testing.T) {
	v := newTestVM()
	v.Registers[1] = register.FromUint(42)
	v.Registers[2] = register.FromUint(1)
	if err := Print(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRandFloatInUnitRange(t *testing.T) {
	v := newTestVM()
	if err := RandFloat(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := v.Registers[0].Float()
	if f < 0 || f >= 1 {
		t.Errorf("expected [0,1), got %v", f)
	}
}

func TestRandIntWithinRange(t *testing.T) {
	v := newTestVM()
	v.Registers[1] = register.FromInt(5)
	v.Registers[2] = register.FromInt(10)
	if err := RandInt(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := v.Registers[0].Int()
	if n < 5 || n >= 10 {
		t.Errorf("expected [5,10), got %d", n)
	}
}

func TestFileOpenWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	fc := NewFileController(root)
	v := newTestVM()

	name := "hello.txt"
	nameBytes := asciiUTF16BE(name)
	ptr, err := v.Heap.Alloc(uint64(len(nameBytes)))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Heap.Write(ptr, nameBytes); err != nil {
		t.Fatal(err)
	}

	v.Registers[1] = register.FromUint(ptr)
	v.Registers[2] = register.FromUint(uint64(len(nameBytes)))
	v.Registers[3] = register.FromUint(uint64(modeReadWrite))
	if err := FileOpen(fc)(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handle := v.Registers[0].Uint()

	payload := []byte("data")
	payloadPtr, err := v.Heap.Alloc(uint64(len(payload)))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Heap.Write(payloadPtr, payload); err != nil {
		t.Fatal(err)
	}
	v.Registers[1] = register.FromUint(handle)
	v.Registers[2] = register.FromUint(payloadPtr)
	v.Registers[3] = register.FromUint(uint64(len(payload)))
	if err := FileWrite(fc)(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		t.Fatalf("unexpected error reading file: %v", err)
	}
	if string(raw) != "data" {
		t.Errorf("expected 'data', got %q", raw)
	}
}

func TestFileControllerRejectsPathEscape(t *testing.T) {
	fc := NewFileController(t.TempDir())
	if _, err := fc.ValidatePath("../outside.txt"); err == nil {
		t.Fatalf("expected path escape to be rejected")
	}
}

func asciiUTF16BE(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for _, r := range s {
		out = append(out, 0, byte(r))
	}
	return out
}
