// Package parser implements pass 1 of the VoxVM assembler: it walks
// assembly source line by line, tracks the current section, assigns
// addresses to labels, functions and data-segment records, and collects
// every error it finds rather than stopping at the first one. Pass 2
// (encoding) lives in package assembler and consumes the Program this
// package produces.
package parser

import (
	"strings"

	"github.com/freemorger/voxvm/isa"
)

// Section names the region of the image a line contributes to.
type Section int

const (
	SectionText Section = iota
	SectionData
)

// Instruction is one pass-1-recognized instruction line: its mnemonic,
// raw operand tokens (resolved against symbol tables in pass 2), and the
// absolute code address pass 1 assigned it.
type Instruction struct {
	Pos      Position
	Mnemonic string
	Operands []string
	Address  uint64
}

// DataKind names the shape of a data-segment declaration's payload.
type DataKind int

const (
	DataScalar DataKind = iota
	DataArray
	DataString
	DataZeros
)

// DataType names the scalar element type of a data-segment record.
type DataType int

const (
	DataUint DataType = iota
	DataInt
	DataFloat
)

// DataDecl is one pass-1-recognized data-segment declaration.
type DataDecl struct {
	Pos     Position
	Name    string
	Const   bool
	Kind    DataKind
	Type    DataType
	Values  []string // raw literal tokens, for DataScalar/DataArray
	Text    string   // raw string content, for DataString
	Count   uint64   // number of zero elements, for DataZeros
	RelAddr uint64   // data-segment-relative address of the type-and-flags byte
}

// PayloadSize returns the byte length of this record's payload (the
// length field pass 2 will write), not counting the 1+8 header.
func (d DataDecl) PayloadSize() uint64 {
	switch d.Kind {
	case DataScalar:
		return 8
	case DataString:
		return uint64(2 * len(d.Text))
	case DataArray:
		return 8 * uint64(len(d.Values))
	case DataZeros:
		return 8 * d.Count
	}
	return 0
}

// RecordSize returns the full on-disk size of this record (1 type byte +
// 8 length bytes + payload).
func (d DataDecl) RecordSize() uint64 {
	return 1 + 8 + d.PayloadSize()
}

// Program is the result of pass 1: every instruction and data declaration
// with its assigned address, plus the symbol tables pass 2 resolves
// `@name` operands against.
type Program struct {
	Instructions []Instruction
	Data         []DataDecl
	Labels       *SymbolTable // label/func name -> absolute code address
	FuncIndices  *SymbolTable // func name -> sequential function-table index
	DataSyms     *SymbolTable // data declaration name -> data-relative address
	EntryPoint   uint64
	HasEntry     bool
	CodeSize     uint64
	DataSize     uint64
}

// Parse runs pass 1 over assembly source, returning a Program plus any
// errors collected while walking it. Parse does not stop at the first
// error: it keeps walking so a single run can report every problem.
func Parse(filename, src string) (*Program, *ErrorList) {
	p := &Program{
		Labels:      NewSymbolTable(),
		FuncIndices: NewSymbolTable(),
		DataSyms:    NewSymbolTable(),
	}
	errs := &ErrorList{}

	section := SectionText
	var curAddr uint64
	var dataAddr uint64
	var nextFuncIdx uint64

	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		pos := Position{Filename: filename, Line: i + 1}
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		switch {
		case line == "text":
			section = SectionText
			continue
		case line == "data":
			section = SectionData
			continue
		case line == ".start":
			p.EntryPoint = curAddr
			p.HasEntry = true
			continue
		}

		fields := tokenizeLine(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "label":
			if len(fields) != 2 {
				errs.AddError(NewErrorWithContext(pos, ErrorSyntax, "label requires exactly one name", line))
				continue
			}
			if err := p.Labels.Define(fields[1], curAddr, pos); err != nil {
				errs.AddError(NewErrorWithContext(pos, ErrorDuplicateSymbol, err.Error(), line))
			}
			continue
		case "func":
			if len(fields) != 2 {
				errs.AddError(NewErrorWithContext(pos, ErrorSyntax, "func requires exactly one name", line))
				continue
			}
			if err := p.Labels.Define(fields[1], curAddr, pos); err != nil {
				errs.AddError(NewErrorWithContext(pos, ErrorDuplicateSymbol, err.Error(), line))
				continue
			}
			if err := p.FuncIndices.Define(fields[1], nextFuncIdx, pos); err != nil {
				errs.AddError(NewErrorWithContext(pos, ErrorDuplicateSymbol, err.Error(), line))
			}
			nextFuncIdx++
			continue
		}

		if section == SectionData {
			decl, err := parseDataDecl(pos, fields)
			if err != nil {
				errs.AddError(err)
				continue
			}
			decl.RelAddr = dataAddr
			if err := p.DataSyms.Define(decl.Name, dataAddr, pos); err != nil {
				errs.AddError(NewErrorWithContext(pos, ErrorDuplicateSymbol, err.Error(), line))
				continue
			}
			dataAddr += decl.RecordSize()
			p.Data = append(p.Data, decl)
			continue
		}

		info, ok := isa.LookupMnemonic(fields[0])
		if !ok {
			errs.AddError(NewErrorWithContext(pos, ErrorUnknownOpcode, "unknown opcode \""+fields[0]+"\"", line))
			continue
		}
		instr := Instruction{
			Pos:      pos,
			Mnemonic: fields[0],
			Operands: fields[1:],
			Address:  curAddr,
		}
		p.Instructions = append(p.Instructions, instr)
		curAddr += uint64(info.Size)
	}

	p.CodeSize = curAddr
	p.DataSize = dataAddr
	return p, errs
}

// parseDataDecl parses one `data` section line: `NAME [const] TYPE VALUE...`
// for scalars/arrays, `NAME [const] str "text"` for strings, or
// `NAME [const] !zeros=N` for a bulk zero-filled record.
func parseDataDecl(pos Position, fields []string) (DataDecl, *Error) {
	if len(fields) < 2 {
		return DataDecl{}, NewError(pos, ErrorSyntax, "malformed data declaration")
	}
	name := fields[0]
	rest := fields[1:]
	isConst := false
	if rest[0] == "const" {
		isConst = true
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return DataDecl{}, NewError(pos, ErrorSyntax, "data declaration missing type")
	}

	if strings.HasPrefix(rest[0], "!zeros=") {
		countTok := strings.TrimPrefix(rest[0], "!zeros=")
		n, err := parseUintLiteral(countTok)
		if err != nil {
			return DataDecl{}, NewError(pos, ErrorMalformedNumber, "malformed zeros count \""+countTok+"\"")
		}
		return DataDecl{Pos: pos, Name: name, Const: isConst, Kind: DataZeros, Count: n}, nil
	}

	typeTok := rest[0]
	values := rest[1:]

	if typeTok == "str" {
		if len(values) != 1 {
			return DataDecl{}, NewError(pos, ErrorSyntax, "str declaration requires exactly one string literal")
		}
		if !strings.HasPrefix(values[0], "\"") || !strings.HasSuffix(values[0], "\"") {
			return DataDecl{}, NewError(pos, ErrorUnterminatedString, "unterminated string literal")
		}
		return DataDecl{Pos: pos, Name: name, Const: isConst, Kind: DataString, Text: unquote(values[0])}, nil
	}

	dt, ok := dataTypeFromToken(strings.TrimPrefix(typeTok, "array_"))
	if !ok {
		return DataDecl{}, NewError(pos, ErrorUnknownDataType, "unknown data type \""+typeTok+"\"")
	}

	kind := DataScalar
	if strings.HasPrefix(typeTok, "array_") {
		kind = DataArray
		if len(values) == 0 {
			return DataDecl{}, NewError(pos, ErrorSyntax, "array declaration requires at least one value")
		}
	} else {
		if len(values) != 1 {
			return DataDecl{}, NewError(pos, ErrorSyntax, "scalar declaration requires exactly one value")
		}
	}
	for _, v := range values {
		if err := validateLiteral(dt, v); err != nil {
			return DataDecl{}, NewError(pos, ErrorMalformedNumber, "malformed literal \""+v+"\": "+err.Error())
		}
	}
	return DataDecl{Pos: pos, Name: name, Const: isConst, Kind: kind, Type: dt, Values: values}, nil
}

func dataTypeFromToken(tok string) (DataType, bool) {
	switch tok {
	case "uint":
		return DataUint, true
	case "int":
		return DataInt, true
	case "float":
		return DataFloat, true
	}
	return 0, false
}

func validateLiteral(dt DataType, tok string) error {
	switch dt {
	case DataUint:
		_, err := parseUintLiteral(tok)
		return err
	case DataInt:
		_, err := parseIntLiteral(tok)
		return err
	case DataFloat:
		_, err := parseFloatLiteral(tok)
		return err
	}
	return nil
}
