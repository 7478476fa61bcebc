package native

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

// Built-in file native call codes.
const (
	CodeFileOpen    uint16 = 0x10
	CodeFileClose   uint16 = 0x11
	CodeFileWrite   uint16 = 0x12
	CodeFileRead    uint16 = 0x13
	CodeFileDelete  uint16 = 0x14
	CodeFileSeekGet uint16 = 0x15
	CodeFileSeekSet uint16 = 0x16
)

// fileMode mirrors the original FileModes enum, selected by the mode_idx
// uint operand native calls pass.
type fileMode int

const (
	modeWrite fileMode = iota + 1
	modeRead
	modeAppend
	modeReadWrite
	modeReadAppend
)

func openFlags(m fileMode) (int, bool) {
	switch m {
	case modeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, true
	case modeRead:
		return os.O_RDONLY, true
	case modeAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, true
	case modeReadWrite:
		return os.O_RDWR | os.O_CREATE, true
	case modeReadAppend:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, true
	}
	return 0, false
}

// FileController is the VM's sandboxed file table: every native file call
// indexes into opened files by a uint handle returned from open, mirroring
// the original's FileController/opened_files vector.
type FileController struct {
	mu    sync.Mutex
	root  string
	files []*os.File
}

// NewFileController builds a controller rooted at root; root must be set
// for any file native call to succeed, matching the teacher's
// "filesystem root must always be configured" sandboxing rule.
func NewFileController(root string) *FileController {
	return &FileController{root: root}
}

// ValidatePath resolves path beneath the controller's root, rejecting
// empty paths, ".." components, and symlink escapes, following
// lookbusy1344-arm_emulator's vm.ValidatePath.
func (fc *FileController) ValidatePath(path string) (string, error) {
	if fc.root == "" {
		return "", fmt.Errorf("native: filesystem root not configured")
	}
	if path == "" {
		return "", fmt.Errorf("native: empty file path")
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("native: path contains '..' component")
	}
	path = strings.TrimPrefix(path, "/")

	fullPath := filepath.Clean(filepath.Join(fc.root, path))
	canonicalRoot, err := filepath.EvalSymlinks(fc.root)
	if err != nil {
		return "", fmt.Errorf("native: resolving filesystem root: %w", err)
	}
	canonicalRoot = filepath.Clean(canonicalRoot)

	resolved := fullPath
	if r, err := filepath.EvalSymlinks(fullPath); err == nil {
		resolved = r
	}
	rel, err := filepath.Rel(canonicalRoot, filepath.Clean(resolved))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("native: path %q escapes filesystem root %q", path, fc.root)
	}
	return fullPath, nil
}

func (fc *FileController) open(path string, mode fileMode) (uint64, error) {
	flags, ok := openFlags(mode)
	if !ok {
		return 0, fmt.Errorf("native: unknown file mode %d", mode)
	}
	full, err := fc.ValidatePath(path)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(full, flags, 0o644)
	if err != nil {
		return 0, err
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.files = append(fc.files, f)
	return uint64(len(fc.files) - 1), nil
}

func (fc *FileController) get(idx uint64) (*os.File, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if idx >= uint64(len(fc.files)) || fc.files[idx] == nil {
		return nil, false
	}
	return fc.files[idx], true
}

// FileOpen reads a heap-resident UTF-16BE filename (r1 ptr, r2 count) and
// a mode code (r3), returning the file handle in r0.
func FileOpen(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		ptr := v.Registers[1].Uint()
		count := v.Registers[2].Uint()
		mode := fileMode(v.Registers[3].Uint())

		raw, err := v.Heap.Read(ptr, count)
		if err != nil {
			v.Exceptions.Raise(vm.ExcHeapReadFault)
			return nil
		}
		name, ok := utf16BEToString(raw)
		if !ok {
			v.Exceptions.Raise(vm.ExcHeapSegmFault)
			return nil
		}
		idx, err := fc.open(name, mode)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(idx)
		return nil
	}
}

// FileClose closes the handle in r1.
func FileClose(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		idx := v.Registers[1].Uint()
		f, ok := fc.get(idx)
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		fc.mu.Lock()
		fc.files[idx] = nil
		fc.mu.Unlock()
		return f.Close()
	}
}

// FileWrite writes r3 heap bytes starting at r2 into the file handle r1.
func FileWrite(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		idx := v.Registers[1].Uint()
		ptr := v.Registers[2].Uint()
		count := v.Registers[3].Uint()

		f, ok := fc.get(idx)
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		data, err := v.Heap.Read(ptr, count)
		if err != nil {
			v.Exceptions.Raise(vm.ExcHeapReadFault)
			return nil
		}
		n, err := f.Write(data)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(n))
		return nil
	}
}

// FileRead reads up to r3 bytes from the file handle r1 into the heap at r2.
func FileRead(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		idx := v.Registers[1].Uint()
		ptr := v.Registers[2].Uint()
		count := v.Registers[3].Uint()

		f, ok := fc.get(idx)
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		buf := make([]byte, count)
		n, err := f.Read(buf)
		if err != nil && err != io.EOF {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		if err := v.Heap.Write(ptr, buf[:n]); err != nil {
			v.Exceptions.Raise(vm.ExcHeapWriteFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(n))
		return nil
	}
}

// FileDelete removes a heap-resident filename (r1 ptr, r2 count).
func FileDelete(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		ptr := v.Registers[1].Uint()
		count := v.Registers[2].Uint()
		raw, err := v.Heap.Read(ptr, count)
		if err != nil {
			v.Exceptions.Raise(vm.ExcHeapReadFault)
			return nil
		}
		name, ok := utf16BEToString(raw)
		if !ok {
			v.Exceptions.Raise(vm.ExcHeapSegmFault)
			return nil
		}
		full, err := fc.ValidatePath(name)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		if err := os.Remove(full); err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
		}
		return nil
	}
}

// FileSeekGet returns the file handle r1's current offset in r0.
func FileSeekGet(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		f, ok := fc.get(v.Registers[1].Uint())
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(pos))
		return nil
	}
}

// FileSeekSet sets the file handle r1's offset to r2.
func FileSeekSet(fc *FileController) vm.NativeFunc {
	return func(v *vm.VM) error {
		f, ok := fc.get(v.Registers[1].Uint())
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		if _, err := f.Seek(int64(v.Registers[2].Uint()), io.SeekStart); err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
		}
		return nil
	}
}
