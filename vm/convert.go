package vm

import "github.com/freemorger/voxvm/register"

// convertOp builds a dst,src numeric conversion handler requiring srcTag
// on the source register and producing dstTag on the destination.
func convertOp(srcTag, dstTag register.Tag, convert func(r register.Register) register.Register) func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		reg := v.Registers[src]
		if reg.Tag != srcTag {
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = convert(reg)
		v.advance(3)
		return nil
	}
}

func utoiConvert(r register.Register) register.Register {
	return register.FromInt(int64(r.Uint()))
}

func itouConvert(r register.Register) register.Register {
	return register.FromUint(uint64(r.Int()))
}

func utofConvert(r register.Register) register.Register {
	return register.FromFloat(float64(r.Uint()))
}

func itofConvert(r register.Register) register.Register {
	return register.FromFloat(float64(r.Int()))
}

func ftouConvert(r register.Register) register.Register {
	return register.FromUint(r.AsU64())
}

func ftoiConvert(r register.Register) register.Register {
	return register.FromInt(int64(r.Float()))
}

// retag builds a dst,src handler that reinterprets the bit pattern under a
// new tag without touching the value (pointer<->uint retagging).
func retag(srcTag, dstTag register.Tag) func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		reg := v.Registers[src]
		if reg.Tag != srcTag {
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = register.FromU64Bits(reg.Bits, dstTag)
		v.advance(3)
		return nil
	}
}
