package register_test

import (
	"testing"

	"github.com/freemorger/voxvm/register"
)

func TestAddMatchingTags(t *testing.T) {
	a := register.FromUint(2)
	b := register.FromUint(3)
	got, err := register.Add(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Uint() != 5 || got.Tag != register.TagUint {
		t.Errorf("expected 5/uint, got %d/%s", got.Uint(), got.Tag)
	}
}

func TestAddMismatchedTags(t *testing.T) {
	a := register.FromUint(2)
	b := register.FromInt(3)
	if _, err := register.Add(a, b); err != register.ErrTagMismatch {
		t.Errorf("expected ErrTagMismatch, got %v", err)
	}
}

func TestDivZeroInt(t *testing.T) {
	a := register.FromInt(10)
	b := register.FromInt(0)
	if _, err := register.Div(a, b); err != register.ErrZeroDivision {
		t.Errorf("expected ErrZeroDivision, got %v", err)
	}
}

func TestSqrtNegative(t *testing.T) {
	a := register.FromFloat(-4)
	if _, err := register.Sqrt(a); err != register.ErrNegativeSqrt {
		t.Errorf("expected ErrNegativeSqrt, got %v", err)
	}
}

func TestNotExcludesFloat(t *testing.T) {
	a := register.FromFloat(1.5)
	if _, err := register.Not(a); err != register.ErrIncorrectRegType {
		t.Errorf("expected ErrIncorrectRegType, got %v", err)
	}
}

func TestFromU64BitsRoundTrip(t *testing.T) {
	r := register.FromInt(-1)
	back := register.FromU64Bits(r.AsU64Bitwise(), r.Tag)
	if back.Int() != -1 {
		t.Errorf("expected -1, got %d", back.Int())
	}
}

func TestShlRequiresUintShiftAmount(t *testing.T) {
	a := register.FromUint(1)
	bad := register.FromInt(2)
	if _, err := register.Shl(a, bad); err != register.ErrIncorrectRegType {
		t.Errorf("expected ErrIncorrectRegType, got %v", err)
	}
	good := register.FromUint(2)
	got, err := register.Shl(a, good)
	if err != nil || got.Uint() != 4 {
		t.Errorf("expected 4, got %d (err=%v)", got.Uint(), err)
	}
}

func TestCmpEpsWithinTolerance(t *testing.T) {
	a := register.FromFloat(1.0)
	b := register.FromFloat(1.0 + 1e-12)
	cmp, err := register.CmpEps(a, b, 1e-10)
	if err != nil || cmp != 0 {
		t.Errorf("expected equal within epsilon, got cmp=%d err=%v", cmp, err)
	}
}

func TestTagFromU32(t *testing.T) {
	tag, ok := register.TagFromU32(8)
	if !ok || tag != register.TagAddress {
		t.Errorf("expected TagAddress, got %v ok=%v", tag, ok)
	}
	if _, ok := register.TagFromU32(99); ok {
		t.Errorf("expected ok=false for unknown tag code")
	}
}
