package assembler

import (
	"os"
	"strings"

	"github.com/freemorger/voxvm/format"
	"github.com/freemorger/voxvm/parser"
)

// WriteOutput selects the output shape by filename extension: a ".vve"
// target gets a format.Header followed by the code+data image; anything
// else gets the raw code bytes only, for debugging against a bare
// interpreter invocation.
func WriteOutput(path string, prog *parser.Program, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".vve") {
		_, err := f.Write(result.Code)
		return err
	}

	hdr := format.Header{
		EntryPoint: prog.EntryPoint,
		DataBase:   prog.CodeSize,
		CodeSize:   prog.CodeSize,
		DataSize:   prog.DataSize,
		FuncTable:  result.FuncTable,
	}
	if err := format.Write(f, hdr); err != nil {
		return err
	}
	if _, err := f.Write(result.Code); err != nil {
		return err
	}
	_, err = f.Write(result.Data)
	return err
}
