package vm

// ExceptionKind is a program-level fault. The first six values are the
// bytecode-level exception codes; the rest are raised by runtime checks.
// jexc accepts any of these codes, and the assembler's exceptionTable
// resolves the name of every kind below to its code.
type ExceptionKind uint64

const (
	ExcZeroDivision        ExceptionKind = 0x1
	ExcHeapAllocationFault ExceptionKind = 0x2
	ExcHeapFreeFault       ExceptionKind = 0x3
	ExcHeapWriteFault      ExceptionKind = 0x4
	ExcHeapReadFault       ExceptionKind = 0x5
	ExcNegativeSqrt        ExceptionKind = 0x6

	ExcInvalidDataType  ExceptionKind = 0x7
	ExcNativeFault      ExceptionKind = 0x8
	ExcIncorrectRegType ExceptionKind = 0x9
	ExcHeapSegmFault    ExceptionKind = 0xa
	ExcMainSegmFault    ExceptionKind = 0xb
)

func (k ExceptionKind) String() string {
	switch k {
	case ExcZeroDivision:
		return "ZeroDivision"
	case ExcHeapAllocationFault:
		return "HeapAllocationFault"
	case ExcHeapFreeFault:
		return "HeapFreeFault"
	case ExcHeapWriteFault:
		return "HeapWriteFault"
	case ExcHeapReadFault:
		return "HeapReadFault"
	case ExcNegativeSqrt:
		return "NegativeSqrt"
	case ExcInvalidDataType:
		return "InvalidDataType"
	case ExcNativeFault:
		return "NativeFault"
	case ExcIncorrectRegType:
		return "IncorrectRegType"
	case ExcHeapSegmFault:
		return "HeapSegmFault"
	case ExcMainSegmFault:
		return "MainSegmFault"
	default:
		return "UnknownException"
	}
}

// ExceptionQueue is an append-on-fault queue of active exceptions. jexc is
// the only instruction that drains it, and only removes the one entry it
// matched.
type ExceptionQueue struct {
	active []ExceptionKind
}

// Raise enqueues kind without unwinding; the faulting instruction's handler
// is responsible for still advancing IP afterward.
func (q *ExceptionQueue) Raise(kind ExceptionKind) {
	q.active = append(q.active, kind)
}

// TryConsume removes and reports the first queued exception matching code,
// if any is present.
func (q *ExceptionQueue) TryConsume(code ExceptionKind) bool {
	for i, k := range q.active {
		if k == code {
			q.active = append(q.active[:i], q.active[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns a snapshot of the queue, for tests and coredumps.
func (q *ExceptionQueue) Pending() []ExceptionKind {
	out := make([]ExceptionKind, len(q.active))
	copy(out, q.active)
	return out
}
