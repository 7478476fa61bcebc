// Package native implements VoxVM's built-in native-call surface: the
// runtime-provided handlers for printing, stdin, randomness, time,
// sleeping, subprocesses, sandboxed file I/O and TCP networking, plus
// loading TOML descriptors for externally configured native libraries.
package native

import "github.com/freemorger/voxvm/register"

// Value mirrors the {typeind, data} pair the original VM passes across
// the native-call boundary, so a handler can inspect an argument's tag
// without reaching into vm.VM's register file directly.
type Value struct {
	TypeInd uint32
	Data    uint64
}

// FromRegister converts a VM register into the native-call argument
// shape, carrying the tag forward as the value's typeind.
func FromRegister(r register.Register) Value {
	return Value{TypeInd: uint32(r.Tag), Data: r.Bits}
}

// ToRegister reconstructs a register from a native-call return value and
// its declared tag.
func (v Value) ToRegister(tag register.Tag) register.Register {
	return register.FromU64Bits(v.Data, tag)
}
