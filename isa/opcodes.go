// Package isa holds the opcode byte assignment and per-instruction encoding
// metadata shared between the interpreter (package vm) and the two-pass
// assembler (packages parser/assembler). Keeping this table in one place
// means the encoder and the dispatcher can never disagree about an
// instruction's size or operand shape.
package isa

// Opcode identifies a single VoxVM instruction. The numeric values are the
// wire encoding, not an arbitrary enumeration: they match the byte ranges
// named by the instruction table.
type Opcode byte

const (
	OpHalt Opcode = 0xFF
	OpNcall Opcode = 0x01
	OpNop   Opcode = 0x02

	OpUload Opcode = 0x10
	OpUadd  Opcode = 0x11
	OpUmul  Opcode = 0x12
	OpUsub  Opcode = 0x13
	OpUdiv  Opcode = 0x14
	OpUrem  Opcode = 0x15
	OpUcmp  Opcode = 0x16
	OpUsqrt Opcode = 0x17
	OpUpow  Opcode = 0x18
	OpUinc  Opcode = 0x19
	OpUdec  Opcode = 0x1a

	OpIload Opcode = 0x20
	OpIadd  Opcode = 0x21
	OpImul  Opcode = 0x22
	OpIsub  Opcode = 0x23
	OpIdiv  Opcode = 0x24
	OpIrem  Opcode = 0x25
	OpIcmp  Opcode = 0x26
	OpIsqrt Opcode = 0x27
	OpIpow  Opcode = 0x28
	OpIinc  Opcode = 0x29
	OpIdec  Opcode = 0x2a
	OpIneg  Opcode = 0x2b
	OpIabs  Opcode = 0x2c

	OpFload   Opcode = 0x30
	OpFadd    Opcode = 0x31
	OpFmul    Opcode = 0x32
	OpFsub    Opcode = 0x33
	OpFdiv    Opcode = 0x34
	OpFrem    Opcode = 0x35
	OpFcmp    Opcode = 0x36
	OpFsqrt   Opcode = 0x37
	OpFpow    Opcode = 0x38
	OpFinc    Opcode = 0x39
	OpFdec    Opcode = 0x3a
	OpFneg    Opcode = 0x3b
	OpFabs    Opcode = 0x3c
	OpFcmpEps Opcode = 0x3d

	OpJmp  Opcode = 0x40
	OpJz   Opcode = 0x41
	OpJl   Opcode = 0x42
	OpJg   Opcode = 0x43
	OpJge  Opcode = 0x44
	OpJle  Opcode = 0x45
	OpJexc Opcode = 0x46

	OpUtoi Opcode = 0x50
	OpItou Opcode = 0x51
	OpUtof Opcode = 0x52
	OpItof Opcode = 0x53
	OpFtou Opcode = 0x54
	OpFtoi Opcode = 0x55
	OpPtou Opcode = 0x56
	OpUtop Opcode = 0x57

	OpMovr Opcode = 0x60
	OpOr   Opcode = 0x61
	OpAnd  Opcode = 0x62
	OpNot  Opcode = 0x63
	OpXor  Opcode = 0x64
	OpTest Opcode = 0x65
	OpLnot Opcode = 0x66

	OpDsload   Opcode = 0x70
	OpDsrload  Opcode = 0x71
	OpDssave   Opcode = 0x72
	OpDsrsave  Opcode = 0x73
	OpDslea    Opcode = 0x74
	OpDsderef  Opcode = 0x75
	OpDsrlea   Opcode = 0x76
	OpDsrderef Opcode = 0x77

	OpPush    Opcode = 0x80
	OpPop     Opcode = 0x81
	OpPushall Opcode = 0x82
	OpPopall  Opcode = 0x83
	OpGsf     Opcode = 0x84
	OpUsf     Opcode = 0x85

	OpCall    Opcode = 0x90
	OpRet     Opcode = 0x91
	OpFnstind Opcode = 0x92
	OpCallr   Opcode = 0x93

	OpAlloc      Opcode = 0xA0
	OpFree       Opcode = 0xA1
	OpStore      Opcode = 0xA2
	OpAllocr     Opcode = 0xA3
	OpLoad       Opcode = 0xA4
	OpAllocrNogc Opcode = 0xA5
)

// OperandKind names the shape of one operand field in an encoded
// instruction, used by the assembler to know how to parse a token and by
// disassembly tooling to know how to print one.
type OperandKind byte

const (
	OperandReg      OperandKind = iota // 1 byte, register index 0-31
	OperandU16                         // 2 bytes big-endian, native call code
	OperandU64                         // 8 bytes big-endian, unsigned immediate
	OperandI64                         // 8 bytes big-endian, signed immediate
	OperandF64                         // 8 bytes big-endian, IEEE-754 bits
	OperandAddr                        // 8 bytes big-endian, absolute code address (label)
	OperandFuncIdx                     // 8 bytes big-endian, function table index
	OperandExcCode                     // 8 bytes big-endian, exception code
)

// Info describes one instruction: its mnemonic for the assembler, its total
// encoded size in bytes (opcode byte included), and the operand kinds that
// follow the opcode byte in order.
type Info struct {
	Opcode   Opcode
	Mnemonic string
	Size     int
	Operands []OperandKind
}

var table = []Info{
	{OpHalt, "halt", 1, nil},
	{OpNcall, "ncall", 4, []OperandKind{OperandU16, OperandReg}},
	{OpNop, "nop", 1, nil},

	{OpUload, "uload", 10, []OperandKind{OperandReg, OperandU64}},
	{OpUadd, "uadd", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUmul, "umul", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUsub, "usub", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUdiv, "udiv", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUrem, "urem", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUcmp, "ucmp", 3, []OperandKind{OperandReg, OperandReg}},
	{OpUsqrt, "usqrt", 3, []OperandKind{OperandReg, OperandReg}},
	{OpUpow, "upow", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpUinc, "uinc", 2, []OperandKind{OperandReg}},
	{OpUdec, "udec", 2, []OperandKind{OperandReg}},

	{OpIload, "iload", 10, []OperandKind{OperandReg, OperandI64}},
	{OpIadd, "iadd", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpImul, "imul", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpIsub, "isub", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpIdiv, "idiv", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpIrem, "irem", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpIcmp, "icmp", 3, []OperandKind{OperandReg, OperandReg}},
	{OpIsqrt, "isqrt", 3, []OperandKind{OperandReg, OperandReg}},
	{OpIpow, "ipow", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpIinc, "iinc", 2, []OperandKind{OperandReg}},
	{OpIdec, "idec", 2, []OperandKind{OperandReg}},
	{OpIneg, "ineg", 3, []OperandKind{OperandReg, OperandReg}},
	{OpIabs, "iabs", 3, []OperandKind{OperandReg, OperandReg}},

	{OpFload, "fload", 10, []OperandKind{OperandReg, OperandF64}},
	{OpFadd, "fadd", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFmul, "fmul", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFsub, "fsub", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFdiv, "fdiv", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFrem, "frem", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFcmp, "fcmp", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFsqrt, "fsqrt", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFpow, "fpow", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpFinc, "finc", 2, []OperandKind{OperandReg}},
	{OpFdec, "fdec", 2, []OperandKind{OperandReg}},
	{OpFneg, "fneg", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFabs, "fabs", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFcmpEps, "fcmp_eps", 3, []OperandKind{OperandReg, OperandReg}},

	{OpJmp, "jmp", 9, []OperandKind{OperandAddr}},
	{OpJz, "jz", 9, []OperandKind{OperandAddr}},
	{OpJl, "jl", 9, []OperandKind{OperandAddr}},
	{OpJg, "jg", 9, []OperandKind{OperandAddr}},
	{OpJge, "jge", 9, []OperandKind{OperandAddr}},
	{OpJle, "jle", 9, []OperandKind{OperandAddr}},
	{OpJexc, "jexc", 17, []OperandKind{OperandExcCode, OperandAddr}},

	{OpUtoi, "utoi", 3, []OperandKind{OperandReg, OperandReg}},
	{OpItou, "itou", 3, []OperandKind{OperandReg, OperandReg}},
	{OpUtof, "utof", 3, []OperandKind{OperandReg, OperandReg}},
	{OpItof, "itof", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFtou, "ftou", 3, []OperandKind{OperandReg, OperandReg}},
	{OpFtoi, "ftoi", 3, []OperandKind{OperandReg, OperandReg}},
	{OpPtou, "ptou", 3, []OperandKind{OperandReg, OperandReg}},
	{OpUtop, "utop", 3, []OperandKind{OperandReg, OperandReg}},

	{OpMovr, "movr", 3, []OperandKind{OperandReg, OperandReg}},
	{OpOr, "or", 3, []OperandKind{OperandReg, OperandReg}},
	{OpAnd, "and", 3, []OperandKind{OperandReg, OperandReg}},
	{OpNot, "not", 3, []OperandKind{OperandReg, OperandReg}},
	{OpXor, "xor", 3, []OperandKind{OperandReg, OperandReg}},
	{OpTest, "test", 3, []OperandKind{OperandReg, OperandReg}},
	{OpLnot, "lnot", 3, []OperandKind{OperandReg, OperandReg}},

	{OpDsload, "dsload", 18, []OperandKind{OperandReg, OperandU64, OperandU64}},
	{OpDsrload, "dsrload", 11, []OperandKind{OperandReg, OperandReg, OperandU64}},
	{OpDssave, "dssave", 18, []OperandKind{OperandReg, OperandU64, OperandU64}},
	{OpDsrsave, "dsrsave", 11, []OperandKind{OperandReg, OperandReg, OperandU64}},
	{OpDslea, "dslea", 18, []OperandKind{OperandReg, OperandU64, OperandU64}},
	{OpDsderef, "dsderef", 11, []OperandKind{OperandReg, OperandReg, OperandU64}},
	{OpDsrlea, "dsrlea", 11, []OperandKind{OperandReg, OperandReg, OperandU64}},
	{OpDsrderef, "dsrderef", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},

	{OpPush, "push", 2, []OperandKind{OperandReg}},
	{OpPop, "pop", 2, []OperandKind{OperandReg}},
	{OpPushall, "pushall", 1, nil},
	{OpPopall, "popall", 1, nil},
	{OpGsf, "gsf", 3, []OperandKind{OperandReg, OperandReg}},
	{OpUsf, "usf", 3, []OperandKind{OperandReg, OperandReg}},

	{OpCall, "call", 9, []OperandKind{OperandFuncIdx}},
	{OpRet, "ret", 1, nil},
	{OpFnstind, "fnstind", 10, []OperandKind{OperandReg, OperandFuncIdx}},
	{OpCallr, "callr", 2, []OperandKind{OperandReg}},

	{OpAlloc, "alloc", 10, []OperandKind{OperandReg, OperandU64}},
	{OpFree, "free", 2, []OperandKind{OperandReg}},
	{OpStore, "store", 3, []OperandKind{OperandReg, OperandReg}},
	{OpAllocr, "allocr", 3, []OperandKind{OperandReg, OperandReg}},
	{OpLoad, "load", 4, []OperandKind{OperandReg, OperandReg, OperandReg}},
	{OpAllocrNogc, "allocr_nogc", 3, []OperandKind{OperandReg, OperandReg}},
}

var byOpcode [256]*Info
var byMnemonic map[string]*Info

func init() {
	byMnemonic = make(map[string]*Info, len(table))
	for i := range table {
		info := &table[i]
		byOpcode[info.Opcode] = info
		byMnemonic[info.Mnemonic] = info
	}
}

// Lookup returns the instruction metadata for a decoded opcode byte, or
// false if the byte names no instruction (an unknown-opcode fatal error at
// the VM level).
func Lookup(op byte) (*Info, bool) {
	info := byOpcode[op]
	return info, info != nil
}

// LookupMnemonic returns the instruction metadata for an assembler
// mnemonic, or false if it is not a known instruction name.
func LookupMnemonic(mnemonic string) (*Info, bool) {
	info, ok := byMnemonic[mnemonic]
	return info, ok
}
