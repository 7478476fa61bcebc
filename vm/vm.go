// Package vm implements the VoxVM bytecode interpreter: the tagged
// register file, condition flags, contiguous code+data memory, operand and
// call stacks, the heap/GC pairing, the exception queue, and the 256-entry
// opcode dispatch table that drives all of it.
package vm

import (
	"fmt"

	"github.com/freemorger/voxvm/heap"
	"github.com/freemorger/voxvm/register"
)

// State is the run state of a VM instance, mirrored after the teacher's
// own execution-state/last-error split: fatal conditions set State and
// LastError and stop Run from looping further.
type State int

const (
	StateReady State = iota
	StateRunning
	StateHalted
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// NativeFunc is a native call handler. It receives the VM so it can read
// argument registers r1..rN and write the return value to r0. Concrete
// built-ins live in package native, registered into a VM's table at
// startup; this package never imports native, avoiding an import cycle.
type NativeFunc func(v *VM) error

// DefaultGCInterval is how many executed instructions elapse between
// automatic mark-sweep cycles, per the design notes' "every 250
// instructions (tunable)".
const DefaultGCInterval = 250

// VM owns all interpreter state exclusively: registers, flags, memory,
// stacks, heap, GC, native table, and exception queue, per the design
// notes' single-owner-value guidance.
type VM struct {
	Registers [32]register.Register
	Flags     Flags
	IP        uint64

	Mem   *Memory
	Stack OperandStack
	Calls *CallStack

	Heap *heap.Heap
	GC   *heap.GC

	Exceptions ExceptionQueue

	// FuncTable maps a function index to the absolute code address of
	// its first instruction.
	FuncTable []uint64

	Natives map[uint16]NativeFunc

	// MainRefs is the VM's own pinned root set (e.g. for foreign values
	// held outside any register), unioned into GC roots every cycle.
	MainRefs map[uint64]struct{}

	// dsRecordOf maps a ds_addr effective byte address (as produced by
	// dslea/dsrlea) back to the start of the data-segment record it
	// belongs to, so a later dsderef/dsrderef can recover the record's
	// type byte without re-deriving the original reladdr/offset split.
	dsRecordOf map[uint64]uint64

	GCInterval uint64
	instrCount uint64

	State    State
	LastErr  error

	// MaxRecursion is the call-depth ceiling New built CallStack with.
	MaxRecursion int
}

// New builds a VM over code followed by a zero-filled data segment of
// dataSize bytes, with the given function table and heap capacity.
func New(code []byte, dataSize uint64, funcTable []uint64, heapSize uint64, maxRecursion int) *VM {
	v := &VM{
		Mem:          NewMemory(code, dataSize),
		Calls:        NewCallStack(maxRecursion),
		Heap:         heap.New(heapSize),
		GC:           heap.NewGC(),
		FuncTable:    funcTable,
		Natives:      make(map[uint16]NativeFunc),
		MainRefs:     make(map[uint64]struct{}),
		dsRecordOf:   make(map[uint64]uint64),
		GCInterval:   DefaultGCInterval,
		State:        StateReady,
		MaxRecursion: maxRecursion,
	}
	return v
}

// RegisterNative installs fn as the handler for native call code.
func (v *VM) RegisterNative(code uint16, fn NativeFunc) {
	v.Natives[code] = fn
}

// SetEntryPoint positions IP at the image's declared entry point.
func (v *VM) SetEntryPoint(addr uint64) {
	v.IP = addr
}

// Step executes exactly one instruction: fetch the opcode byte, dispatch,
// and let the handler advance IP. Program-level faults are enqueued by
// handlers and do not stop the loop; only the errors returned here are
// fatal.
func (v *VM) Step() error {
	opByte, ok := v.Mem.ReadByte(v.IP)
	if !ok {
		v.fail(fmt.Errorf("instruction pointer 0x%x past memory end", v.IP))
		return v.LastErr
	}

	handler := dispatchTable[opByte]
	if handler == nil {
		v.fail(fmt.Errorf("unknown opcode 0x%02x at IP=0x%x", opByte, v.IP))
		return v.LastErr
	}

	if err := handler(v); err != nil {
		v.fail(fmt.Errorf("runtime error at IP=0x%x: %w", v.IP, err))
		return v.LastErr
	}

	v.instrCount++
	if v.instrCount%v.GCInterval == 0 {
		v.collectGarbage()
	}

	return nil
}

func (v *VM) fail(err error) {
	v.State = StateFatal
	v.LastErr = err
}

// Run steps the VM to completion: until halt sets StateHalted or a fatal
// error sets StateFatal.
func (v *VM) Run() error {
	v.State = StateRunning
	for v.State == StateRunning {
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// collectGarbage gathers roots from registers and stack frames tagged
// address, unions in MainRefs, and runs one mark-sweep cycle against the
// heap's recorded pointer edges.
func (v *VM) collectGarbage() {
	roots := make(map[uint64]struct{})
	for _, r := range v.Registers {
		if r.Tag == register.TagAddress {
			roots[r.Uint()] = struct{}{}
		}
	}
	for _, f := range v.Stack.Frames() {
		if f.Tag == register.TagAddress {
			roots[f.Value] = struct{}{}
		}
	}
	for p := range v.MainRefs {
		roots[p] = struct{}{}
	}

	v.GC.Mark(roots, v.Heap.SavedRefs)
	for _, ptr := range v.GC.Sweep() {
		_ = v.Heap.Free(ptr)
	}
}

// CollectGarbage runs a collection cycle immediately, independent of the
// automatic instruction-count cadence.
func (v *VM) CollectGarbage() {
	v.collectGarbage()
}

// DumpState renders a short diagnostic summary, in the spirit of the
// teacher's own DumpState, for fatal-error reporting on stderr.
func (v *VM) DumpState() string {
	return fmt.Sprintf("state=%s ip=0x%x calldepth=%d stackdepth=%d error=%v",
		v.State, v.IP, v.Calls.Len(), v.Stack.Len(), v.LastErr)
}

// LastError returns the fatal error that stopped the VM, if any.
func (v *VM) LastError() error {
	return v.LastErr
}
