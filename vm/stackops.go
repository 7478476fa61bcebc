package vm

import "errors"

// ErrStackUnderflow is fatal: pop/popall on an empty operand stack.
var ErrStackUnderflow = errors.New("vm: operand stack underflow")

func push() func(*VM) error {
	return func(v *VM) error {
		r := v.regAt(1)
		reg := v.Registers[r]
		v.Stack.Push(reg.Bits, reg.Tag)
		v.advance(2)
		return nil
	}
}

func pop() func(*VM) error {
	return func(v *VM) error {
		r := v.regAt(1)
		frame, ok := v.Stack.Pop()
		if !ok {
			return ErrStackUnderflow
		}
		v.Registers[r].Bits = frame.Value
		v.Registers[r].Tag = frame.Tag
		v.advance(2)
		return nil
	}
}

func pushall() func(*VM) error {
	return func(v *VM) error {
		for i := 0; i < len(v.Registers); i++ {
			v.Stack.Push(v.Registers[i].Bits, v.Registers[i].Tag)
		}
		v.advance(1)
		return nil
	}
}

func popall() func(*VM) error {
	return func(v *VM) error {
		for i := len(v.Registers) - 1; i >= 0; i-- {
			frame, ok := v.Stack.Pop()
			if !ok {
				return ErrStackUnderflow
			}
			v.Registers[i].Bits = frame.Value
			v.Registers[i].Tag = frame.Tag
		}
		v.advance(1)
		return nil
	}
}

// gsf reads an existing stack frame by register-provided index into
// reg_dst. An out-of-range index leaves reg_dst unchanged, per spec.
func gsf() func(*VM) error {
	return func(v *VM) error {
		dst, idxReg := v.regAt(1), v.regAt(2)
		idx := v.Registers[idxReg].Uint()
		if frame, ok := v.Stack.Get(idx); ok {
			v.Registers[dst].Bits = frame.Value
			v.Registers[dst].Tag = frame.Tag
		}
		v.advance(3)
		return nil
	}
}

// usf writes an existing stack frame at a register-provided index from
// reg_src. An out-of-range index is a non-fatal no-op, per spec.
func usf() func(*VM) error {
	return func(v *VM) error {
		idxReg, src := v.regAt(1), v.regAt(2)
		idx := v.Registers[idxReg].Uint()
		reg := v.Registers[src]
		v.Stack.Update(idx, reg.Bits, reg.Tag)
		v.advance(3)
		return nil
	}
}
