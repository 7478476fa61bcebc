package assembler

import (
	"encoding/binary"
	"math"

	"github.com/freemorger/voxvm/parser"
	"github.com/freemorger/voxvm/vm"
)

// dsConstBit mirrors vm's unexported const-record flag bit; it is part of
// the on-disk record format, not an implementation detail of package vm,
// so the assembler is entitled to its own copy of the literal.
const dsConstBit byte = 0x10

func scalarTypeByte(t parser.DataType) byte {
	switch t {
	case parser.DataUint:
		return vm.DSTypeUint
	case parser.DataInt:
		return vm.DSTypeInt
	case parser.DataFloat:
		return vm.DSTypeFloat
	}
	return 0
}

func arrayTypeByte(t parser.DataType) byte {
	switch t {
	case parser.DataUint:
		return vm.DSTypeUintArray
	case parser.DataInt:
		return vm.DSTypeIntArray
	case parser.DataFloat:
		return vm.DSTypeFloatArray
	}
	return 0
}

// encodeDataDecl writes one data-segment record (type-and-flags byte, an
// 8-byte length, then payload) at decl.RelAddr within data.
func encodeDataDecl(data []byte, decl parser.DataDecl) error {
	off := int(decl.RelAddr)
	var typeByte byte
	switch decl.Kind {
	case parser.DataScalar:
		typeByte = scalarTypeByte(decl.Type)
	case parser.DataArray:
		typeByte = arrayTypeByte(decl.Type)
	case parser.DataString:
		typeByte = vm.DSTypeStr
	case parser.DataZeros:
		typeByte = vm.DSTypeUintArray
	}
	if decl.Const {
		typeByte |= dsConstBit
	}
	data[off] = typeByte
	binary.BigEndian.PutUint64(data[off+1:off+9], decl.PayloadSize())

	payload := data[off+9 : off+9+int(decl.PayloadSize())]
	switch decl.Kind {
	case parser.DataScalar:
		return writeScalarValue(payload, decl.Type, decl.Values[0])
	case parser.DataArray:
		for i, v := range decl.Values {
			if err := writeScalarValue(payload[i*8:i*8+8], decl.Type, v); err != nil {
				return err
			}
		}
		return nil
	case parser.DataString:
		for i, r := range []rune(decl.Text) {
			binary.BigEndian.PutUint16(payload[i*2:i*2+2], uint16(r))
		}
		return nil
	case parser.DataZeros:
		// payload is already zero-valued from make([]byte, ...).
		return nil
	}
	return nil
}

func writeScalarValue(dst []byte, t parser.DataType, tok string) error {
	switch t {
	case parser.DataUint:
		v, err := parser.ParseUintLiteral(tok)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint64(dst, v)
	case parser.DataInt:
		v, err := parser.ParseIntLiteral(tok)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint64(dst, uint64(v))
	case parser.DataFloat:
		v, err := parser.ParseFloatLiteral(tok)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint64(dst, math.Float64bits(v))
	}
	return nil
}
