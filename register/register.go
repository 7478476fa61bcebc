// Package register implements VoxVM's tagged 64-bit register/value model.
//
// A Register is a 64-bit cell carrying one of six tags. Arithmetic,
// bitwise and comparison operators are defined only on matching tag
// pairs; the tag values themselves are fixed to match the wire encoding
// used by the `load` instruction's reg_type operand (spec.md 4.9) and by
// native call values (see native.Value), not a convenient 0..5 sequence.
package register

import (
	"fmt"
	"math"
)

// Tag identifies the runtime type carried by a Register cell.
type Tag uint8

const (
	TagUint    Tag = 1 // unsigned 64-bit integer
	TagInt     Tag = 2 // signed 64-bit integer, two's complement
	TagFloat   Tag = 3 // IEEE-754 binary64, stored by bit pattern
	TagStrAddr Tag = 4 // absolute data-segment address of a UTF-16BE string
	TagAddress Tag = 8 // absolute heap address, GC-tracked
	TagDSAddr  Tag = 9 // absolute data-segment address, not GC-tracked
)

func (t Tag) String() string {
	switch t {
	case TagUint:
		return "uint"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagStrAddr:
		return "StrAddr"
	case TagAddress:
		return "address"
	case TagDSAddr:
		return "ds_addr"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// TagFromU32 maps the numeric reg_type operand of the `load` instruction
// (spec.md 4.9: 1=uint, 2=int, 3=float, 4=StrAddr, 8=address, 9=ds_addr) to
// a Tag, reporting ok=false for any other value.
func TagFromU32(v uint32) (Tag, bool) {
	switch v {
	case uint32(TagUint), uint32(TagInt), uint32(TagFloat), uint32(TagStrAddr), uint32(TagAddress), uint32(TagDSAddr):
		return Tag(v), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether the tag supports arithmetic.
func (t Tag) IsNumeric() bool {
	return t == TagUint || t == TagInt || t == TagFloat
}

// IsPointer reports whether the tag denotes an address into the data
// segment or heap rather than a numeric value.
func (t Tag) IsPointer() bool {
	return t == TagStrAddr || t == TagAddress || t == TagDSAddr
}

// Register is a tagged 64-bit cell.
type Register struct {
	Bits uint64
	Tag  Tag
}

// FromUint builds a uint-tagged register.
func FromUint(v uint64) Register { return Register{Bits: v, Tag: TagUint} }

// FromInt builds an int-tagged register.
func FromInt(v int64) Register { return Register{Bits: uint64(v), Tag: TagInt} }

// FromFloat builds a float-tagged register, storing v by its IEEE bit pattern.
func FromFloat(v float64) Register { return Register{Bits: math.Float64bits(v), Tag: TagFloat} }

// FromStrAddr builds a StrAddr-tagged register.
func FromStrAddr(v uint64) Register { return Register{Bits: v, Tag: TagStrAddr} }

// FromAddress builds an address-tagged register (GC-tracked heap pointer).
func FromAddress(v uint64) Register { return Register{Bits: v, Tag: TagAddress} }

// FromDSAddr builds a ds_addr-tagged register (untracked data-segment pointer).
func FromDSAddr(v uint64) Register { return Register{Bits: v, Tag: TagDSAddr} }

// FromU64Bits reconstructs a register from a raw 64-bit value and a tag,
// used when popping the operand stack (spec.md 4.3).
func FromU64Bits(v uint64, tag Tag) Register { return Register{Bits: v, Tag: tag} }

// Uint returns the register's bits reinterpreted as an unsigned integer.
func (r Register) Uint() uint64 { return r.Bits }

// Int returns the register's bits reinterpreted as a signed integer.
func (r Register) Int() int64 { return int64(r.Bits) }

// Float returns the register's bits reinterpreted as an IEEE-754 float.
func (r Register) Float() float64 { return math.Float64frombits(r.Bits) }

// AsU64 returns the numeric cast to u64 (spec.md 4.3): for float registers
// this truncates towards zero, for uint/int/pointer tags it is the raw
// bit pattern (two's complement for negative ints is preserved as-is,
// matching the source VM's as_u64 semantics).
func (r Register) AsU64() uint64 {
	if r.Tag == TagFloat {
		f := r.Float()
		if f < 0 {
			return uint64(int64(f))
		}
		return uint64(f)
	}
	return r.Bits
}

// AsU64Bitwise returns the underlying bit pattern regardless of tag.
func (r Register) AsU64Bitwise() uint64 { return r.Bits }

var (
	// ErrTagMismatch is returned when an operator is applied to registers
	// with incompatible tags.
	ErrTagMismatch = fmt.Errorf("incompatible register tags")
	// ErrZeroDivision mirrors the ZeroDivision exception kind.
	ErrZeroDivision = fmt.Errorf("division by zero")
	// ErrNegativeSqrt mirrors the NegativeSqrt exception kind.
	ErrNegativeSqrt = fmt.Errorf("square root of a negative number")
	// ErrIncorrectRegType is returned when an operator's tag is not
	// supported at all (e.g. bitwise Not on a float register).
	ErrIncorrectRegType = fmt.Errorf("operator not defined for this register tag")
)

func requireSameTag(a, b Register) error {
	if a.Tag != b.Tag {
		return ErrTagMismatch
	}
	return nil
}

// Add computes a+b. Requires matching tags.
func Add(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		return FromUint(a.Uint() + b.Uint()), nil
	case TagInt:
		return FromInt(a.Int() + b.Int()), nil
	case TagFloat:
		return FromFloat(a.Float() + b.Float()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Sub computes a-b. Requires matching tags.
func Sub(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		return FromUint(a.Uint() - b.Uint()), nil
	case TagInt:
		return FromInt(a.Int() - b.Int()), nil
	case TagFloat:
		return FromFloat(a.Float() - b.Float()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Mul computes a*b. Requires matching tags.
func Mul(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		return FromUint(a.Uint() * b.Uint()), nil
	case TagInt:
		return FromInt(a.Int() * b.Int()), nil
	case TagFloat:
		return FromFloat(a.Float() * b.Float()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Div computes a/b. Requires matching tags; division by zero on uint/int
// returns ErrZeroDivision. Float division by zero follows IEEE-754 (+/-Inf
// or NaN) and is not an error.
func Div(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		if b.Uint() == 0 {
			return Register{}, ErrZeroDivision
		}
		return FromUint(a.Uint() / b.Uint()), nil
	case TagInt:
		if b.Int() == 0 {
			return Register{}, ErrZeroDivision
		}
		return FromInt(a.Int() / b.Int()), nil
	case TagFloat:
		return FromFloat(a.Float() / b.Float()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Rem computes a%b. Same zero-division semantics as Div.
func Rem(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		if b.Uint() == 0 {
			return Register{}, ErrZeroDivision
		}
		return FromUint(a.Uint() % b.Uint()), nil
	case TagInt:
		if b.Int() == 0 {
			return Register{}, ErrZeroDivision
		}
		return FromInt(a.Int() % b.Int()), nil
	case TagFloat:
		return FromFloat(math.Mod(a.Float(), b.Float())), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Cmp compares a and b, returning -1, 0 or 1. Requires matching tags.
func Cmp(a, b Register) (int, error) {
	if err := requireSameTag(a, b); err != nil {
		return 0, err
	}
	switch a.Tag {
	case TagUint:
		return cmpUint(a.Uint(), b.Uint()), nil
	case TagInt:
		return cmpInt(a.Int(), b.Int()), nil
	case TagFloat:
		return cmpFloat(a.Float(), b.Float()), nil
	default:
		return 0, ErrIncorrectRegType
	}
}

// CmpEps compares two float registers within an epsilon, per spec.md 4.9's
// fcmp_eps (|a-b| < eps). Returns 0 (equal) if within eps, else -1/1.
func CmpEps(a, b Register, eps float64) (int, error) {
	if a.Tag != TagFloat || b.Tag != TagFloat {
		return 0, ErrIncorrectRegType
	}
	diff := a.Float() - b.Float()
	if diff < 0 {
		diff = -diff
	}
	if diff < eps {
		return 0, nil
	}
	return cmpFloat(a.Float(), b.Float()), nil
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sqrt computes the square root. Negative operands (int/float) raise
// ErrNegativeSqrt. uint never raises since it is non-negative by construction.
func Sqrt(a Register) (Register, error) {
	switch a.Tag {
	case TagUint:
		return FromUint(uint64(math.Sqrt(float64(a.Uint())))), nil
	case TagInt:
		if a.Int() < 0 {
			return Register{}, ErrNegativeSqrt
		}
		return FromInt(int64(math.Sqrt(float64(a.Int())))), nil
	case TagFloat:
		if a.Float() < 0 {
			return Register{}, ErrNegativeSqrt
		}
		return FromFloat(math.Sqrt(a.Float())), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Pow computes a**b. Requires matching tags.
func Pow(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	switch a.Tag {
	case TagUint:
		return FromUint(uint64(math.Pow(float64(a.Uint()), float64(b.Uint())))), nil
	case TagInt:
		return FromInt(int64(math.Pow(float64(a.Int()), float64(b.Int())))), nil
	case TagFloat:
		return FromFloat(math.Pow(a.Float(), b.Float())), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Neg negates a register. Defined on all numeric tags (spec.md 4.3); uint
// negation wraps modulo 2^64, matching two's complement semantics.
func Neg(a Register) (Register, error) {
	switch a.Tag {
	case TagUint:
		return FromUint(-a.Uint()), nil
	case TagInt:
		return FromInt(-a.Int()), nil
	case TagFloat:
		return FromFloat(-a.Float()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Abs returns the absolute value. Defined on int and float; uint is
// already non-negative and returned unchanged.
func Abs(a Register) (Register, error) {
	switch a.Tag {
	case TagUint:
		return a, nil
	case TagInt:
		v := a.Int()
		if v < 0 {
			v = -v
		}
		return FromInt(v), nil
	case TagFloat:
		return FromFloat(math.Abs(a.Float())), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// Not computes the bitwise complement. Excludes float (spec.md 4.3).
func Not(a Register) (Register, error) {
	switch a.Tag {
	case TagUint:
		return FromUint(^a.Uint()), nil
	case TagInt:
		return FromInt(^a.Int()), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

// LNot computes the logical complement: 0 maps to 1, anything else to 0.
// Defined on uint and int; the result keeps the source tag.
func LNot(a Register) (Register, error) {
	switch a.Tag {
	case TagUint:
		if a.Uint() == 0 {
			return FromUint(1), nil
		}
		return FromUint(0), nil
	case TagInt:
		if a.Int() == 0 {
			return FromInt(1), nil
		}
		return FromInt(0), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}

func requireBitwiseTag(t Tag) error {
	if t == TagUint || t == TagInt {
		return nil
	}
	return ErrIncorrectRegType
}

// And computes the bitwise AND of a and b. Excludes float.
func And(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	if err := requireBitwiseTag(a.Tag); err != nil {
		return Register{}, err
	}
	return FromU64Bits(a.Bits&b.Bits, a.Tag), nil
}

// Or computes the bitwise OR of a and b. Excludes float.
func Or(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	if err := requireBitwiseTag(a.Tag); err != nil {
		return Register{}, err
	}
	return FromU64Bits(a.Bits|b.Bits, a.Tag), nil
}

// Xor computes the bitwise XOR of a and b. Excludes float.
func Xor(a, b Register) (Register, error) {
	if err := requireSameTag(a, b); err != nil {
		return Register{}, err
	}
	if err := requireBitwiseTag(a.Tag); err != nil {
		return Register{}, err
	}
	return FromU64Bits(a.Bits^b.Bits, a.Tag), nil
}

// Shl shifts a left by the amount held in shiftAmount, which must be
// uint-tagged (spec.md 4.3); a may be any integer-like tag.
func Shl(a, shiftAmount Register) (Register, error) {
	if shiftAmount.Tag != TagUint {
		return Register{}, ErrIncorrectRegType
	}
	if err := requireBitwiseTag(a.Tag); err != nil {
		return Register{}, err
	}
	return FromU64Bits(a.Bits<<(shiftAmount.Uint()&63), a.Tag), nil
}

// Shr shifts a right by the amount held in shiftAmount, which must be
// uint-tagged. Signed registers shift arithmetically, unsigned logically.
func Shr(a, shiftAmount Register) (Register, error) {
	if shiftAmount.Tag != TagUint {
		return Register{}, ErrIncorrectRegType
	}
	n := shiftAmount.Uint() & 63
	switch a.Tag {
	case TagUint:
		return FromUint(a.Uint() >> n), nil
	case TagInt:
		return FromInt(a.Int() >> n), nil
	default:
		return Register{}, ErrIncorrectRegType
	}
}
