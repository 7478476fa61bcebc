package isa_test

import (
	"testing"

	"github.com/freemorger/voxvm/isa"
)

func TestLookupKnownOpcode(t *testing.T) {
	info, ok := isa.Lookup(byte(isa.OpUadd))
	if !ok {
		t.Fatalf("expected uadd to be known")
	}
	if info.Mnemonic != "uadd" || info.Size != 4 {
		t.Errorf("got mnemonic=%s size=%d", info.Mnemonic, info.Size)
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	if _, ok := isa.Lookup(0x03); ok {
		t.Errorf("expected 0x03 to be unknown")
	}
}

func TestLookupMnemonicRoundTrip(t *testing.T) {
	info, ok := isa.LookupMnemonic("fcmp_eps")
	if !ok {
		t.Fatalf("expected fcmp_eps to be known")
	}
	if info.Opcode != isa.OpFcmpEps {
		t.Errorf("got opcode 0x%02x", byte(info.Opcode))
	}
}

func TestFamilyRangesCoverExpectedWidth(t *testing.T) {
	cases := []struct {
		lo, hi byte
		want   int
	}{
		{0x11, 0x18, 8},  // uint arithmetic family
		{0x21, 0x2c, 12}, // int arithmetic family
		{0x31, 0x3d, 13}, // float arithmetic family
		{0x41, 0x45, 5},  // conditional jumps
		{0x61, 0x66, 6},  // bitwise/logical family
	}
	for _, c := range cases {
		n := 0
		for op := int(c.lo); op <= int(c.hi); op++ {
			if _, ok := isa.Lookup(byte(op)); ok {
				n++
			}
		}
		if n != c.want {
			t.Errorf("range 0x%02x-0x%02x: got %d known opcodes, want %d", c.lo, c.hi, n, c.want)
		}
	}
}

func TestHaltIsSingleByte(t *testing.T) {
	info, ok := isa.Lookup(byte(isa.OpHalt))
	if !ok || info.Size != 1 {
		t.Errorf("expected halt to be a 1-byte instruction, got %+v", info)
	}
}
