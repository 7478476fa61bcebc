// Package loader ties parser, assembler, format and vm together: it is
// the part of the system main.go calls into for each of the CLI's three
// entry paths (assemble, run raw, run image). Assembling always goes on to
// run something: the assembled program itself, or the --vvr/--vve file
// when one is given; there is no assemble-only path.
package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/freemorger/voxvm/assembler"
	"github.com/freemorger/voxvm/format"
	"github.com/freemorger/voxvm/parser"
	"github.com/freemorger/voxvm/vm"
)

// Sizes bundles the three --init-* memory parameters.
type Sizes struct {
	RAM       uint64
	StackSize uint64
	HeapSize  uint64
}

// MinImageVersion is the lowest .vve version this loader accepts, per the
// CLI surface's "requires version >= 3" note.
const MinImageVersion = 3

// AssembleFile runs both assembler passes over the source at path,
// returning pass 1's program (for the entry point) and pass 2's bytes.
func AssembleFile(path string) (*parser.Program, *assembler.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	prog, errs := parser.Parse(path, string(src))
	if errs.HasErrors() {
		return nil, nil, fmt.Errorf("loader: assembling %s:\n%s", path, errs.Error())
	}
	result, err := assembler.Assemble(prog)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: encoding %s: %w", path, err)
	}
	return prog, result, nil
}

// DefaultAssemblerOutput derives the assembler's output path from a
// source path ending in ".vvs", per the CLI's "input with extension .vvs
// -> .vve" default.
func DefaultAssemblerOutput(srcPath string) string {
	if strings.HasSuffix(srcPath, ".vvs") {
		return strings.TrimSuffix(srcPath, ".vvs") + ".vve"
	}
	return srcPath + ".vve"
}

// LoadRaw builds a VM over a headerless raw bytecode file: the whole file
// is code, and sizes.RAM (if larger than the file) supplies a zero-filled
// data segment beyond it.
func LoadRaw(path string, sizes Sizes, maxRecursion int) (*vm.VM, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	dataSize := uint64(0)
	if sizes.RAM > uint64(len(code)) {
		dataSize = sizes.RAM - uint64(len(code))
	}
	v := vm.New(code, dataSize, nil, sizes.HeapSize, maxRecursion)
	v.Stack.Reserve(int(sizes.StackSize))
	return v, nil
}

// LoadImage builds a VM from a ".vve" image file, rejecting anything
// below MinImageVersion.
func LoadImage(path string, sizes Sizes, maxRecursion int) (*vm.VM, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	hdr, codeOffset, err := format.Read(raw, MinImageVersion)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}

	imageEnd := codeOffset + int(hdr.CodeSize) + int(hdr.DataSize)
	if len(raw) < imageEnd {
		return nil, fmt.Errorf("loader: %s: %w", path, format.ErrTruncated)
	}
	body := raw[codeOffset:imageEnd]
	code := body[:hdr.CodeSize]
	data := body[hdr.CodeSize:]

	funcTable := buildFuncTable(hdr.FuncTable)

	v := vm.New(code, hdr.DataSize, funcTable, sizes.HeapSize, maxRecursion)
	v.Mem.WriteBytes(v.Mem.DataBase, data)
	v.Stack.Reserve(int(sizes.StackSize))
	v.SetEntryPoint(hdr.EntryPoint)
	return v, nil
}

func buildFuncTable(entries []format.FuncEntry) []uint64 {
	funcTable := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if int(e.Index) >= len(funcTable) {
			grown := make([]uint64, e.Index+1)
			copy(grown, funcTable)
			funcTable = grown
		}
		funcTable[e.Index] = e.Address
	}
	return funcTable
}

// LoadAssembled builds a VM directly from an in-memory assembler Result,
// for the implicit assemble-then-run path when --vve/--vvr weren't given
// but --vas was.
func LoadAssembled(prog *parser.Program, result *assembler.Result, sizes Sizes, maxRecursion int) *vm.VM {
	funcTable := buildFuncTable(result.FuncTable)
	v := vm.New(result.Code, uint64(len(result.Data)), funcTable, sizes.HeapSize, maxRecursion)
	v.Mem.WriteBytes(v.Mem.DataBase, result.Data)
	v.Stack.Reserve(int(sizes.StackSize))
	v.SetEntryPoint(prog.EntryPoint)
	return v
}
