package vm

import (
	"math"

	"github.com/freemorger/voxvm/isa"
	"github.com/freemorger/voxvm/register"
)

// dispatchTable is the 256-entry opcode dispatch table: a constant array
// of function pointers indexed by opcode, per the design notes. Unassigned
// entries are nil, meaning "unknown opcode" (a fatal error in Step).
var dispatchTable [256]func(*VM) error

func halt() func(*VM) error {
	return func(v *VM) error {
		v.State = StateHalted
		return nil
	}
}

func nop() func(*VM) error {
	return func(v *VM) error {
		v.advance(1)
		return nil
	}
}

func load64(size uint64, build func(bits uint64) register.Register, bitsAt func(v *VM) uint64) func(*VM) error {
	return func(v *VM) error {
		dst := v.regAt(1)
		v.Registers[dst] = build(bitsAt(v))
		v.advance(size)
		return nil
	}
}

func fcmpEps(a, b register.Register) (int, error) {
	return register.CmpEps(a, b, 1e-10)
}

func init() {
	set := func(op isa.Opcode, h func(*VM) error) {
		dispatchTable[byte(op)] = h
	}

	set(isa.OpHalt, halt())
	set(isa.OpNop, nop())
	set(isa.OpNcall, ncall())

	set(isa.OpUload, load64(10,
		func(bits uint64) register.Register { return register.FromUint(bits) },
		func(v *VM) uint64 { return v.u64At(2) }))
	set(isa.OpUadd, binArith(4, register.Add))
	set(isa.OpUmul, binArith(4, register.Mul))
	set(isa.OpUsub, binArith(4, register.Sub))
	set(isa.OpUdiv, binArith(4, register.Div))
	set(isa.OpUrem, binArith(4, register.Rem))
	set(isa.OpUcmp, cmpArith(3, register.Cmp))
	set(isa.OpUsqrt, unaryArith(3, register.Sqrt))
	set(isa.OpUpow, binArith(4, register.Pow))
	set(isa.OpUinc, incDec(2, 1))
	set(isa.OpUdec, incDec(2, -1))

	set(isa.OpIload, load64(10,
		func(bits uint64) register.Register { return register.FromInt(int64(bits)) },
		func(v *VM) uint64 { return uint64(v.i64At(2)) }))
	set(isa.OpIadd, binArith(4, register.Add))
	set(isa.OpImul, binArith(4, register.Mul))
	set(isa.OpIsub, binArith(4, register.Sub))
	set(isa.OpIdiv, binArith(4, register.Div))
	set(isa.OpIrem, binArith(4, register.Rem))
	set(isa.OpIcmp, cmpArith(3, register.Cmp))
	set(isa.OpIsqrt, unaryArith(3, register.Sqrt))
	set(isa.OpIpow, binArith(4, register.Pow))
	set(isa.OpIinc, incDec(2, 1))
	set(isa.OpIdec, incDec(2, -1))
	set(isa.OpIneg, unaryArith(3, register.Neg))
	set(isa.OpIabs, unaryArith(3, register.Abs))

	set(isa.OpFload, load64(10,
		func(bits uint64) register.Register { return register.FromFloat(math.Float64frombits(bits)) },
		func(v *VM) uint64 { return v.u64At(2) }))
	set(isa.OpFadd, binArith(4, register.Add))
	set(isa.OpFmul, binArith(4, register.Mul))
	set(isa.OpFsub, binArith(4, register.Sub))
	set(isa.OpFdiv, binArith(4, register.Div))
	set(isa.OpFrem, binArith(4, register.Rem))
	set(isa.OpFcmp, cmpArith(3, register.Cmp))
	set(isa.OpFsqrt, unaryArith(3, register.Sqrt))
	set(isa.OpFpow, binArith(4, register.Pow))
	set(isa.OpFinc, incDec(2, 1))
	set(isa.OpFdec, incDec(2, -1))
	set(isa.OpFneg, unaryArith(3, register.Neg))
	set(isa.OpFabs, unaryArith(3, register.Abs))
	set(isa.OpFcmpEps, cmpArith(3, fcmpEps))

	set(isa.OpJmp, jmp())
	set(isa.OpJz, condJump(func(f Flags) bool { return f.ZF }))
	set(isa.OpJl, condJump(func(f Flags) bool { return f.NF }))
	set(isa.OpJg, condJump(func(f Flags) bool { return !f.ZF && !f.NF }))
	set(isa.OpJge, condJump(func(f Flags) bool { return !f.NF }))
	set(isa.OpJle, condJump(func(f Flags) bool { return f.NF || f.ZF }))
	set(isa.OpJexc, jexc())

	set(isa.OpUtoi, convertOp(register.TagUint, register.TagInt, utoiConvert))
	set(isa.OpItou, convertOp(register.TagInt, register.TagUint, itouConvert))
	set(isa.OpUtof, convertOp(register.TagUint, register.TagFloat, utofConvert))
	set(isa.OpItof, convertOp(register.TagInt, register.TagFloat, itofConvert))
	set(isa.OpFtou, convertOp(register.TagFloat, register.TagUint, ftouConvert))
	set(isa.OpFtoi, convertOp(register.TagFloat, register.TagInt, ftoiConvert))
	set(isa.OpPtou, retag(register.TagAddress, register.TagUint))
	set(isa.OpUtop, retag(register.TagUint, register.TagAddress))

	set(isa.OpMovr, movr())
	set(isa.OpOr, bitwiseOp(register.Or))
	set(isa.OpAnd, bitwiseOp(register.And))
	set(isa.OpNot, not())
	set(isa.OpXor, bitwiseOp(register.Xor))
	set(isa.OpTest, test())
	set(isa.OpLnot, lnot())

	set(isa.OpDsload, dsload())
	set(isa.OpDsrload, dsrload())
	set(isa.OpDssave, dssave())
	set(isa.OpDsrsave, dsrsave())
	set(isa.OpDslea, dslea())
	set(isa.OpDsderef, dsderef())
	set(isa.OpDsrlea, dsrlea())
	set(isa.OpDsrderef, dsrderef())

	set(isa.OpPush, push())
	set(isa.OpPop, pop())
	set(isa.OpPushall, pushall())
	set(isa.OpPopall, popall())
	set(isa.OpGsf, gsf())
	set(isa.OpUsf, usf())

	set(isa.OpCall, call())
	set(isa.OpRet, ret())
	set(isa.OpFnstind, fnstind())
	set(isa.OpCallr, callr())

	set(isa.OpAlloc, alloc())
	set(isa.OpFree, free())
	set(isa.OpStore, store())
	set(isa.OpAllocr, allocr())
	set(isa.OpLoad, load())
	set(isa.OpAllocrNogc, allocrNogc())
}
