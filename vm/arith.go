package vm

import "github.com/freemorger/voxvm/register"

// translateRegErr maps a register-package operator error to the matching
// program-level exception. A false second result means the error was not
// recognized and should be treated as fatal by the caller.
func (v *VM) translateRegErr(err error) (ExceptionKind, bool) {
	switch err {
	case register.ErrZeroDivision:
		return ExcZeroDivision, true
	case register.ErrNegativeSqrt:
		return ExcNegativeSqrt, true
	case register.ErrTagMismatch, register.ErrIncorrectRegType:
		return ExcIncorrectRegType, true
	default:
		return 0, false
	}
}

type binRegOp func(a, b register.Register) (register.Register, error)
type unaryRegOp func(a register.Register) (register.Register, error)
type cmpRegOp func(a, b register.Register) (int, error)

// binArith builds a handler for a dst,a,b triple-register instruction:
// reg_dst ← op(reg_a, reg_b), flags updated from the result, IP advanced by
// size. A recoverable register error is enqueued as an exception and
// execution continues past the instruction; anything else is fatal.
func binArith(size uint64, op binRegOp) func(*VM) error {
	return func(v *VM) error {
		dst, a, b := v.regAt(1), v.regAt(2), v.regAt(3)
		result, err := op(v.Registers[a], v.Registers[b])
		if err != nil {
			kind, known := v.translateRegErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(size)
			return nil
		}
		v.Registers[dst] = result
		v.Flags.setZN(isZero(result), signBit(result))
		v.advance(size)
		return nil
	}
}

// unaryArith builds a handler for a dst,src pair: reg_dst ← op(reg_src).
func unaryArith(size uint64, op unaryRegOp) func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		result, err := op(v.Registers[src])
		if err != nil {
			kind, known := v.translateRegErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(size)
			return nil
		}
		v.Registers[dst] = result
		v.Flags.setZN(isZero(result), signBit(result))
		v.advance(size)
		return nil
	}
}

// cmpArith builds a handler for a two-register comparison that only sets
// flags (ucmp/icmp/fcmp/fcmp_eps).
func cmpArith(size uint64, op cmpRegOp) func(*VM) error {
	return func(v *VM) error {
		a, b := v.regAt(1), v.regAt(2)
		result, err := op(v.Registers[a], v.Registers[b])
		if err != nil {
			kind, known := v.translateRegErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(size)
			return nil
		}
		v.Flags.setZN(result == 0, result < 0)
		v.advance(size)
		return nil
	}
}

// incDec builds a handler for a single in-place register step (uinc, udec,
// iinc, idec, finc, fdec): reg ← reg + delta.
func incDec(size uint64, delta int64) func(*VM) error {
	return func(v *VM) error {
		r := v.regAt(1)
		reg := v.Registers[r]
		var step register.Register
		switch reg.Tag {
		case register.TagUint:
			step = register.FromUint(uint64(delta))
		case register.TagInt:
			step = register.FromInt(delta)
		case register.TagFloat:
			step = register.FromFloat(float64(delta))
		default:
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(size)
			return nil
		}
		result, err := register.Add(reg, step)
		if err != nil {
			kind, known := v.translateRegErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(size)
			return nil
		}
		overflowed := delta > 0 && result.AsU64() < reg.AsU64()
		v.Flags.OF = overflowed
		v.Registers[r] = result
		v.Flags.setZN(isZero(result), signBit(result))
		v.advance(size)
		return nil
	}
}

func isZero(r register.Register) bool {
	if r.Tag == register.TagFloat {
		return r.Float() == 0
	}
	return r.Bits == 0
}

func signBit(r register.Register) bool {
	switch r.Tag {
	case register.TagInt:
		return r.Int() < 0
	case register.TagFloat:
		return r.Float() < 0
	default:
		return false
	}
}
