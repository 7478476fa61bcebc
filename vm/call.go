package vm

import "github.com/freemorger/voxvm/register"

// call pushes the return address (IP + 9, the byte immediately after this
// instruction) and jumps to function_table[IND].
func call() func(*VM) error {
	return func(v *VM) error {
		idx := v.u64At(1)
		if idx >= uint64(len(v.FuncTable)) {
			return errUnknownFunction(idx)
		}
		returnAddr := v.IP + 9
		if err := v.Calls.Push(returnAddr); err != nil {
			return err
		}
		v.IP = v.FuncTable[idx]
		return nil
	}
}

// ret pops the call stack and jumps to the popped return address.
func ret() func(*VM) error {
	return func(v *VM) error {
		addr, err := v.Calls.Pop()
		if err != nil {
			return err
		}
		v.IP = addr
		return nil
	}
}

// fnstind loads a function index as a uint into reg_dst, the only way to
// obtain a first-class function value.
func fnstind() func(*VM) error {
	return func(v *VM) error {
		dst := v.regAt(1)
		idx := v.u64At(2)
		v.Registers[dst] = register.FromUint(idx)
		v.advance(10)
		return nil
	}
}

// callr performs an indirect call through a register holding a function
// index, with the same effect on IP and the call stack as call IND.
func callr() func(*VM) error {
	return func(v *VM) error {
		r := v.regAt(1)
		reg := v.Registers[r]
		if reg.Tag != register.TagUint {
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(2)
			return nil
		}
		idx := reg.Uint()
		if idx >= uint64(len(v.FuncTable)) {
			return errUnknownFunction(idx)
		}
		returnAddr := v.IP + 2
		if err := v.Calls.Push(returnAddr); err != nil {
			return err
		}
		v.IP = v.FuncTable[idx]
		return nil
	}
}

type unknownFunctionError struct {
	idx uint64
}

func (e *unknownFunctionError) Error() string {
	return "vm: call to unknown function index"
}

func errUnknownFunction(idx uint64) error {
	return &unknownFunctionError{idx: idx}
}
