// Package assembler implements pass 2 of the VoxVM assembler: it takes the
// Program a parser.Parse produced and emits bytes, resolving every @name
// operand against the symbol tables pass 1 built.
package assembler

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/freemorger/voxvm/format"
	"github.com/freemorger/voxvm/isa"
	"github.com/freemorger/voxvm/parser"
	"github.com/freemorger/voxvm/vm"
)

// exceptionTable maps the bare exception names jexc's first operand
// references to their wire codes, grounded on vm.ExceptionKind's own
// constants so the two can never drift apart.
var exceptionTable = map[string]uint64{
	"ZeroDivision":        uint64(vm.ExcZeroDivision),
	"HeapAllocationFault": uint64(vm.ExcHeapAllocationFault),
	"HeapFreeFault":       uint64(vm.ExcHeapFreeFault),
	"HeapWriteFault":      uint64(vm.ExcHeapWriteFault),
	"HeapReadFault":       uint64(vm.ExcHeapReadFault),
	"NegativeSqrt":        uint64(vm.ExcNegativeSqrt),
	"InvalidDataType":     uint64(vm.ExcInvalidDataType),
	"NativeFault":         uint64(vm.ExcNativeFault),
	"IncorrectRegType":    uint64(vm.ExcIncorrectRegType),
	"HeapSegmFault":       uint64(vm.ExcHeapSegmFault),
	"MainSegmFault":       uint64(vm.ExcMainSegmFault),
}

// Result is the byte-level output of pass 2, ready for format.Write or a
// raw dump depending on the requested output kind.
type Result struct {
	Code      []byte
	Data      []byte
	FuncTable []format.FuncEntry
}

// Assemble runs pass 2 over prog, encoding every instruction and data
// declaration. It assumes prog came back from parser.Parse with no errors.
func Assemble(prog *parser.Program) (*Result, error) {
	code := make([]byte, prog.CodeSize)
	for _, instr := range prog.Instructions {
		if err := encodeInstruction(prog, code, instr); err != nil {
			return nil, err
		}
	}

	data := make([]byte, prog.DataSize)
	for _, decl := range prog.Data {
		if err := encodeDataDecl(data, decl); err != nil {
			return nil, err
		}
	}

	funcTable := make([]format.FuncEntry, 0, prog.FuncIndices.Len())
	for name, idx := range prog.FuncIndices.All() {
		addr, ok := prog.Labels.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("internal error: function %q has no address", name)
		}
		funcTable = append(funcTable, format.FuncEntry{Index: idx, Address: addr})
	}

	return &Result{Code: code, Data: data, FuncTable: funcTable}, nil
}

func encodeInstruction(prog *parser.Program, code []byte, instr parser.Instruction) error {
	info, ok := isa.LookupMnemonic(instr.Mnemonic)
	if !ok {
		return fmt.Errorf("%s: unknown opcode %q", instr.Pos, instr.Mnemonic)
	}
	if len(instr.Operands) != len(info.Operands) {
		return fmt.Errorf("%s: %s expects %d operands, got %d", instr.Pos, instr.Mnemonic, len(info.Operands), len(instr.Operands))
	}

	off := int(instr.Address)
	code[off] = byte(info.Opcode)
	cursor := off + 1

	for i, kind := range info.Operands {
		tok := instr.Operands[i]
		n, err := encodeOperand(prog, kind, tok)
		if err != nil {
			return fmt.Errorf("%s: %s operand %d: %w", instr.Pos, instr.Mnemonic, i, err)
		}
		cursor += writeOperand(code[cursor:], kind, n)
	}
	return nil
}

// encodeOperand resolves one operand token to its 64-bit wire value
// (registers and the u16 native-call code are returned widened; the
// caller truncates via writeOperand's width table).
func encodeOperand(prog *parser.Program, kind isa.OperandKind, tok string) (uint64, error) {
	if name, isRef := parser.IsSymbolRef(tok); isRef {
		switch kind {
		case isa.OperandAddr:
			v, ok := prog.Labels.Lookup(name)
			if !ok {
				return 0, fmt.Errorf("unresolved label %q", name)
			}
			return v, nil
		case isa.OperandFuncIdx:
			v, ok := prog.FuncIndices.Lookup(name)
			if !ok {
				return 0, fmt.Errorf("unresolved function %q", name)
			}
			return v, nil
		case isa.OperandExcCode:
			v, ok := exceptionTable[name]
			if !ok {
				return 0, fmt.Errorf("unknown exception %q", name)
			}
			return v, nil
		case isa.OperandU64:
			v, ok := prog.DataSyms.Lookup(name)
			if !ok {
				return 0, fmt.Errorf("unresolved data symbol %q", name)
			}
			return v, nil
		default:
			return 0, fmt.Errorf("symbol reference not valid for this operand")
		}
	}

	switch kind {
	case isa.OperandReg:
		r, ok := parser.IsRegisterToken(tok)
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", tok)
		}
		return uint64(r), nil
	case isa.OperandU16, isa.OperandU64:
		return parser.ParseUintLiteral(tok)
	case isa.OperandI64:
		v, err := parser.ParseIntLiteral(tok)
		return uint64(v), err
	case isa.OperandF64:
		if !parser.IsFloatLiteral(tok) {
			return 0, fmt.Errorf("expected float literal (missing '.'), got %q", tok)
		}
		f, err := parser.ParseFloatLiteral(tok)
		return math.Float64bits(f), err
	case isa.OperandAddr, isa.OperandFuncIdx, isa.OperandExcCode:
		return parser.ParseUintLiteral(tok)
	}
	return 0, fmt.Errorf("unhandled operand kind")
}

// writeOperand writes n into dst in the wire width for kind, returning the
// number of bytes consumed.
func writeOperand(dst []byte, kind isa.OperandKind, n uint64) int {
	switch kind {
	case isa.OperandReg:
		dst[0] = byte(n)
		return 1
	case isa.OperandU16:
		binary.BigEndian.PutUint16(dst, uint16(n))
		return 2
	default:
		binary.BigEndian.PutUint64(dst, n)
		return 8
	}
}
