package vm

import "github.com/freemorger/voxvm/register"

// Data-segment record type codes, per the record layout's low nibble.
const (
	DSTypeUint      byte = 0x1
	DSTypeInt       byte = 0x2
	DSTypeFloat     byte = 0x3
	DSTypeStr       byte = 0x4
	DSTypeReserved  byte = 0x5 // opaque per the design notes' open question
	DSTypeUintArray byte = 0x6
	DSTypeIntArray  byte = 0x7
	DSTypeFloatArray byte = 0x8

	dsConstBit byte = 0x10
)

// recordHeaderSize is 1 type-and-flags byte + 8 length bytes.
const recordHeaderSize = 9

// recordStart returns the absolute address of a record's type-and-flags
// byte for a data-segment-relative address.
func (v *VM) recordStart(reladdr uint64) uint64 {
	return v.Mem.DataBase + reladdr
}

// dsTypeAndFlags reads a record's header byte.
func (v *VM) dsTypeAndFlags(reladdr uint64) (byte, bool) {
	return v.Mem.ReadByte(v.recordStart(reladdr))
}

func scalarType(t byte) (byte, bool) {
	switch t {
	case DSTypeUint, DSTypeInt, DSTypeFloat:
		return t, true
	case DSTypeUintArray:
		return DSTypeUint, true
	case DSTypeIntArray:
		return DSTypeInt, true
	case DSTypeFloatArray:
		return DSTypeFloat, true
	default:
		return 0, false
	}
}

func tagForScalarType(t byte) register.Tag {
	switch t {
	case DSTypeUint:
		return register.TagUint
	case DSTypeInt:
		return register.TagInt
	case DSTypeFloat:
		return register.TagFloat
	default:
		return 0
	}
}

// dsEffectiveAddr computes data_base + reladdr + offset + 9, the effective
// byte address of a scalar read/write within a record's payload.
func (v *VM) dsEffectiveAddr(reladdr, offset uint64) uint64 {
	return v.Mem.DataBase + reladdr + offset + recordHeaderSize
}

// dsReadTyped performs a dsload: reads the 8-byte value at the effective
// address and tags it per the record's (possibly array-element) type.
func (v *VM) dsReadTyped(reladdr, offset uint64) (register.Register, error) {
	header, ok := v.dsTypeAndFlags(reladdr)
	if !ok {
		v.Exceptions.Raise(ExcHeapSegmFault)
		return register.Register{}, nil
	}
	typ, ok := scalarType(header & 0x0f)
	if !ok {
		v.Exceptions.Raise(ExcInvalidDataType)
		return register.Register{}, nil
	}
	bits, ok := v.Mem.ReadU64(v.dsEffectiveAddr(reladdr, offset))
	if !ok {
		v.Exceptions.Raise(ExcHeapSegmFault)
		return register.Register{}, nil
	}
	return register.FromU64Bits(bits, tagForScalarType(typ)), nil
}

// ErrConstWrite is fatal: storing to a record whose const bit is set
// terminates the VM, per the end-to-end "const write rejected" scenario.
type ErrConstWrite struct {
	Reladdr uint64
}

func (e *ErrConstWrite) Error() string {
	return "write to const data-segment record"
}

// dsWriteTyped performs a dssave: validates the const bit, then writes the
// register's bit pattern at the effective address.
func (v *VM) dsWriteTyped(reladdr, offset uint64, val register.Register) error {
	header, ok := v.dsTypeAndFlags(reladdr)
	if !ok {
		v.Exceptions.Raise(ExcHeapSegmFault)
		return nil
	}
	if header&dsConstBit != 0 {
		return &ErrConstWrite{Reladdr: reladdr}
	}
	if !v.Mem.WriteU64(v.dsEffectiveAddr(reladdr, offset), val.AsU64Bitwise()) {
		v.Exceptions.Raise(ExcHeapSegmFault)
	}
	return nil
}

// dsLoadEffective computes and records a ds_addr pointer: the effective
// byte address for (reladdr, offset), remembered against its record start
// so a later dsderef/dsrderef can recover the record's type.
func (v *VM) dsLoadEffective(reladdr, offset uint64) register.Register {
	eff := v.dsEffectiveAddr(reladdr, offset)
	v.dsRecordOf[eff] = v.recordStart(reladdr)
	return register.FromDSAddr(eff)
}

// dsDerefTyped reads through a previously-computed ds_addr plus an
// additional byte offset, using the cached record-start mapping to locate
// the type byte.
func (v *VM) dsDerefTyped(heldAddr, extraOffset uint64) (register.Register, error) {
	recStart, ok := v.dsRecordOf[heldAddr]
	if !ok {
		v.Exceptions.Raise(ExcInvalidDataType)
		return register.Register{}, nil
	}
	header, ok := v.Mem.ReadByte(recStart)
	if !ok {
		v.Exceptions.Raise(ExcHeapSegmFault)
		return register.Register{}, nil
	}
	typ, ok := scalarType(header & 0x0f)
	if !ok {
		v.Exceptions.Raise(ExcInvalidDataType)
		return register.Register{}, nil
	}
	bits, ok := v.Mem.ReadU64(heldAddr + extraOffset)
	if !ok {
		v.Exceptions.Raise(ExcHeapSegmFault)
		return register.Register{}, nil
	}
	return register.FromU64Bits(bits, tagForScalarType(typ)), nil
}
