package parser

import "testing"

func TestParseAssignsLabelAddress(t *testing.T) {
	src := `
text
.start
uload r1, 5
label loop
uadd r2, r1, r1
jmp @loop
halt
`
	prog, errs := Parse("t.vas", src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	addr, ok := prog.Labels.Lookup("loop")
	if !ok {
		t.Fatalf("expected label loop to be defined")
	}
	if addr != 10 { // uload is 10 bytes
		t.Errorf("expected loop at address 10, got %d", addr)
	}
	if !prog.HasEntry || prog.EntryPoint != 0 {
		t.Errorf("expected entry point 0, got %d (has=%v)", prog.EntryPoint, prog.HasEntry)
	}
}

func TestParseAssignsSequentialFuncIndices(t *testing.T) {
	src := `
text
func first
halt
func second
halt
`
	prog, errs := Parse("t.vas", src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	firstIdx, _ := prog.FuncIndices.Lookup("first")
	secondIdx, _ := prog.FuncIndices.Lookup("second")
	if firstIdx != 0 || secondIdx != 1 {
		t.Errorf("expected indices 0,1 got %d,%d", firstIdx, secondIdx)
	}
	firstAddr, _ := prog.Labels.Lookup("first")
	secondAddr, _ := prog.Labels.Lookup("second")
	if firstAddr != 0 || secondAddr != 1 {
		t.Errorf("expected addresses 0,1 got %d,%d", firstAddr, secondAddr)
	}
}

func TestParseUnknownOpcodeIsCollectedNotFatal(t *testing.T) {
	src := `
text
bogus r1, r2
halt
`
	_, errs := Parse("t.vas", src)
	if !errs.HasErrors() {
		t.Fatalf("expected an error for unknown opcode")
	}
	if errs.Errors[0].Kind != ErrorUnknownOpcode {
		t.Errorf("expected ErrorUnknownOpcode, got %v", errs.Errors[0].Kind)
	}
}

func TestParseDataSectionScalarAndArray(t *testing.T) {
	src := `
data
counter uint 0
ratios const array_float 1.5, 2.5, 3.5
text
halt
`
	prog, errs := Parse("t.vas", src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Data) != 2 {
		t.Fatalf("expected 2 data declarations, got %d", len(prog.Data))
	}
	counter := prog.Data[0]
	if counter.Name != "counter" || counter.Kind != DataScalar || counter.RecordSize() != 17 {
		t.Errorf("unexpected counter decl: %+v (size %d)", counter, counter.RecordSize())
	}
	ratios := prog.Data[1]
	if !ratios.Const || ratios.Kind != DataArray || len(ratios.Values) != 3 {
		t.Errorf("unexpected ratios decl: %+v", ratios)
	}
	if ratios.RecordSize() != 1+8+8*3 {
		t.Errorf("expected array record size %d, got %d", 1+8+24, ratios.RecordSize())
	}
	addr, ok := prog.DataSyms.Lookup("ratios")
	if !ok || addr != counter.RecordSize() {
		t.Errorf("expected ratios at %d, got %d (ok=%v)", counter.RecordSize(), addr, ok)
	}
}

func TestParseZerosBulkDeclaration(t *testing.T) {
	src := `
data
buf !zeros=4
text
halt
`
	prog, errs := Parse("t.vas", src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	d := prog.Data[0]
	if d.Kind != DataZeros || d.Count != 4 || d.PayloadSize() != 32 {
		t.Errorf("unexpected zeros decl: %+v", d)
	}
}

func TestParseDuplicateLabelIsCollectedAsError(t *testing.T) {
	src := `
text
label dup
halt
label dup
halt
`
	_, errs := Parse("t.vas", src)
	if !errs.HasErrors() {
		t.Fatalf("expected duplicate-symbol error")
	}
}
