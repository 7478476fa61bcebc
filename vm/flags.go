package vm

// Flags holds the four one-byte condition flags. Comparisons and
// arithmetic set ZF/NF; OF is set on increment wrap; CF is reserved (no
// instruction in this set produces a carry-out, per the open question in
// the design notes this implementation resolves by leaving it always
// clear).
type Flags struct {
	OF bool
	ZF bool
	NF bool
	CF bool
}

func (f *Flags) setZN(zero, negative bool) {
	f.ZF = zero
	f.NF = negative
}
