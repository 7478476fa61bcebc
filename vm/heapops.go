package vm

import (
	"github.com/freemorger/voxvm/register"
)

// alloc reserves reg_dst ← ptr for a GC-tracked size-byte block.
func alloc() func(*VM) error {
	return func(v *VM) error {
		dst := v.regAt(1)
		size := v.u64At(2)
		ptr, err := v.Heap.Alloc(size)
		if err != nil {
			v.Exceptions.Raise(ExcHeapAllocationFault)
			v.advance(10)
			return nil
		}
		v.GC.Pin(ptr)
		v.Registers[dst] = register.FromAddress(ptr)
		v.advance(10)
		return nil
	}
}

// allocr is alloc with a register-provided size.
func allocr() func(*VM) error {
	return func(v *VM) error {
		dst, sizeReg := v.regAt(1), v.regAt(2)
		size := v.Registers[sizeReg].Uint()
		ptr, err := v.Heap.Alloc(size)
		if err != nil {
			v.Exceptions.Raise(ExcHeapAllocationFault)
			v.advance(3)
			return nil
		}
		v.GC.Pin(ptr)
		v.Registers[dst] = register.FromAddress(ptr)
		v.advance(3)
		return nil
	}
}

// allocrNogc is allocr without pinning a GC object: the allocation is
// never collected and must be freed manually.
func allocrNogc() func(*VM) error {
	return func(v *VM) error {
		dst, sizeReg := v.regAt(1), v.regAt(2)
		size := v.Registers[sizeReg].Uint()
		ptr, err := v.Heap.Alloc(size)
		if err != nil {
			v.Exceptions.Raise(ExcHeapAllocationFault)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = register.FromAddress(ptr)
		v.advance(3)
		return nil
	}
}

// free explicitly releases the block named by reg.
func free() func(*VM) error {
	return func(v *VM) error {
		r := v.regAt(1)
		ptr := v.Registers[r].Uint()
		if err := v.Heap.Free(ptr); err != nil {
			v.Exceptions.Raise(ExcHeapFreeFault)
		}
		v.advance(2)
		return nil
	}
}

// store writes the full 8-byte value of reg_val to the heap address held
// by reg_addr, recording a saved_refs edge when reg_val is address-tagged.
func store() func(*VM) error {
	return func(v *VM) error {
		addrReg, valReg := v.regAt(1), v.regAt(2)
		addr := v.Registers[addrReg].Uint()
		val := v.Registers[valReg]

		var buf [8]byte
		putU64(buf[:], val.Bits)
		if err := v.Heap.Write(addr, buf[:]); err != nil {
			v.Exceptions.Raise(ExcHeapWriteFault)
			v.advance(3)
			return nil
		}
		if val.Tag == register.TagAddress {
			v.Heap.RecordRef(addr, val.Uint())
		}
		v.advance(3)
		return nil
	}
}

// load performs a typed heap read: reg_type names the tag to apply to the
// 8 bytes read from the address in reg_src, written to reg_dst.
func load() func(*VM) error {
	return func(v *VM) error {
		typeReg, dst, src := v.regAt(1), v.regAt(2), v.regAt(3)
		rawType := uint32(v.Registers[typeReg].Uint())
		tag, ok := register.TagFromU32(rawType)
		if !ok {
			v.Exceptions.Raise(ExcInvalidDataType)
			v.advance(4)
			return nil
		}
		addr := v.Registers[src].Uint()
		data, err := v.Heap.Read(addr, 8)
		if err != nil {
			v.Exceptions.Raise(ExcHeapReadFault)
			v.advance(4)
			return nil
		}
		v.Registers[dst] = register.FromU64Bits(getU64(data), tag)
		v.advance(4)
		return nil
	}
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> uint(56-8*i))
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
