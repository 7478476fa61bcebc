package vm

// ncall invokes the native handler registered for code, with arguments and
// return value passed through registers per the handler's own convention
// (r1..rN inputs, r0 output). A code with no registered handler raises
// NativeFault rather than failing fatally, so unmapped dynamic-library
// calls are recoverable from assembly.
func ncall() func(*VM) error {
	return func(v *VM) error {
		code := v.u16At(1)
		handler, ok := v.Natives[code]
		if !ok {
			v.Exceptions.Raise(ExcNativeFault)
			v.advance(4)
			return nil
		}
		if err := handler(v); err != nil {
			v.Exceptions.Raise(ExcNativeFault)
		}
		v.advance(4)
		return nil
	}
}
