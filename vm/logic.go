package vm

import "github.com/freemorger/voxvm/register"

// movr copies both value and tag from src to dst, no flags touched.
func movr() func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		v.Registers[dst] = v.Registers[src]
		v.advance(3)
		return nil
	}
}

type bitwiseBin func(a, b register.Register) (register.Register, error)

// bitwiseOp builds an in-place dst,src handler: reg_dst ← op(reg_dst,
// reg_src), ZF updated, matching the teacher's encoding of or/and/xor as
// two-operand accumulate-in-place instructions.
func bitwiseOp(op bitwiseBin) func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		result, err := op(v.Registers[dst], v.Registers[src])
		if err != nil {
			kind, known := vmTranslateBitwiseErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = result
		v.Flags.ZF = result.AsU64() == 0
		v.advance(3)
		return nil
	}
}

func vmTranslateBitwiseErr(err error) (ExceptionKind, bool) {
	switch err {
	case register.ErrTagMismatch, register.ErrIncorrectRegType:
		return ExcIncorrectRegType, true
	default:
		return 0, false
	}
}

// not builds the bitwise-complement unary handler.
func not() func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		result, err := register.Not(v.Registers[src])
		if err != nil {
			kind, known := vmTranslateBitwiseErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = result
		v.Flags.ZF = result.AsU64() == 0
		v.advance(3)
		return nil
	}
}

// lnot builds the logical-not unary handler.
func lnot() func(*VM) error {
	return func(v *VM) error {
		dst, src := v.regAt(1), v.regAt(2)
		result, err := register.LNot(v.Registers[src])
		if err != nil {
			kind, known := vmTranslateBitwiseErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(3)
			return nil
		}
		v.Registers[dst] = result
		v.Flags.ZF = result.AsU64() == 0
		v.advance(3)
		return nil
	}
}

// test sets ZF from reg_a AND reg_b without storing the result, the
// classic non-destructive bitwise probe.
func test() func(*VM) error {
	return func(v *VM) error {
		a, b := v.regAt(1), v.regAt(2)
		result, err := register.And(v.Registers[a], v.Registers[b])
		if err != nil {
			kind, known := vmTranslateBitwiseErr(err)
			if !known {
				return err
			}
			v.Exceptions.Raise(kind)
			v.advance(3)
			return nil
		}
		v.Flags.ZF = result.AsU64() == 0
		v.advance(3)
		return nil
	}
}
