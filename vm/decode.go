package vm

// Operand readers fetch an instruction's fixed-size fields relative to the
// current IP (offset 0 is the opcode byte itself, so operands start at
// offset 1). These never fail in a well-formed image. A field that runs
// past the end of memory reads as zero and is not reported: Step's bounds
// check covers only the opcode byte.

func (v *VM) regAt(offset uint64) byte {
	b, _ := v.Mem.ReadByte(v.IP + offset)
	return b
}

func (v *VM) u16At(offset uint64) uint16 {
	b, _ := v.Mem.ReadU16(v.IP + offset)
	return b
}

func (v *VM) u64At(offset uint64) uint64 {
	b, _ := v.Mem.ReadU64(v.IP + offset)
	return b
}

func (v *VM) i64At(offset uint64) int64 {
	return int64(v.u64At(offset))
}

func (v *VM) advance(n uint64) {
	v.IP += n
}
