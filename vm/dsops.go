package vm

import "github.com/freemorger/voxvm/register"

// dsload reads a typed value from the data segment at a literal
// (reladdr, offset) pair into reg_dst.
func dsload() func(*VM) error {
	return func(v *VM) error {
		dst := v.regAt(1)
		reladdr := v.u64At(2)
		off := v.u64At(10)
		result, err := v.dsReadTyped(reladdr, off)
		if err != nil {
			return err
		}
		v.Registers[dst] = result
		v.advance(18)
		return nil
	}
}

// dsrload is dsload with the offset supplied by a register instead of an
// immediate.
func dsrload() func(*VM) error {
	return func(v *VM) error {
		dst, offReg := v.regAt(1), v.regAt(2)
		reladdr := v.u64At(3)
		off := v.Registers[offReg].Uint()
		result, err := v.dsReadTyped(reladdr, off)
		if err != nil {
			return err
		}
		v.Registers[dst] = result
		v.advance(11)
		return nil
	}
}

// dssave writes reg's value into the data segment at a literal
// (reladdr, offset) pair, fatally rejecting a const-flagged record.
func dssave() func(*VM) error {
	return func(v *VM) error {
		src := v.regAt(1)
		reladdr := v.u64At(2)
		off := v.u64At(10)
		if err := v.dsWriteTyped(reladdr, off, v.Registers[src]); err != nil {
			return err
		}
		v.advance(18)
		return nil
	}
}

// dsrsave is dssave with the offset supplied by a register.
func dsrsave() func(*VM) error {
	return func(v *VM) error {
		src, offReg := v.regAt(1), v.regAt(2)
		reladdr := v.u64At(3)
		off := v.Registers[offReg].Uint()
		if err := v.dsWriteTyped(reladdr, off, v.Registers[src]); err != nil {
			return err
		}
		v.advance(11)
		return nil
	}
}

// dslea loads the effective ds_addr for a literal (reladdr, offset) pair
// into reg_dst, the only way to obtain a reusable data-segment pointer.
func dslea() func(*VM) error {
	return func(v *VM) error {
		dst := v.regAt(1)
		reladdr := v.u64At(2)
		off := v.u64At(10)
		v.Registers[dst] = v.dsLoadEffective(reladdr, off)
		v.advance(18)
		return nil
	}
}

// dsrlea is dslea with the offset supplied by a register.
func dsrlea() func(*VM) error {
	return func(v *VM) error {
		dst, offReg := v.regAt(1), v.regAt(2)
		reladdr := v.u64At(3)
		off := v.Registers[offReg].Uint()
		v.Registers[dst] = v.dsLoadEffective(reladdr, off)
		v.advance(11)
		return nil
	}
}

// dsderef fetches a typed value through a ds_addr already held in
// reg_src, plus a literal extra offset, into reg_dst.
func dsderef() func(*VM) error {
	return func(v *VM) error {
		src, dst := v.regAt(1), v.regAt(2)
		off := v.u64At(3)
		if v.Registers[src].Tag != register.TagDSAddr {
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(11)
			return nil
		}
		result, err := v.dsDerefTyped(v.Registers[src].Uint(), off)
		if err != nil {
			return err
		}
		v.Registers[dst] = result
		v.advance(11)
		return nil
	}
}

// dsrderef is dsderef with the extra offset supplied by a register.
func dsrderef() func(*VM) error {
	return func(v *VM) error {
		src, dst, offReg := v.regAt(1), v.regAt(2), v.regAt(3)
		if v.Registers[src].Tag != register.TagDSAddr {
			v.Exceptions.Raise(ExcIncorrectRegType)
			v.advance(4)
			return nil
		}
		off := v.Registers[offReg].Uint()
		result, err := v.dsDerefTyped(v.Registers[src].Uint(), off)
		if err != nil {
			return err
		}
		v.Registers[dst] = result
		v.advance(4)
		return nil
	}
}
