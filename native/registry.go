package native

import "github.com/freemorger/voxvm/vm"

// RegisterBuiltins installs every runtime-provided native handler into v,
// sandboxing file operations beneath fsRoot. Dynamically configured
// library descriptors (LoadLibraryConfigs) are a separate, later step:
// their ncall codes are reserved by convention for codes outside the
// built-in ranges here.
func RegisterBuiltins(v *vm.VM, fsRoot string) {
	v.RegisterNative(CodePrint, Print)
	v.RegisterNative(CodeReadLine, ReadLine)
	v.RegisterNative(CodeRandFloat, RandFloat)
	v.RegisterNative(CodeRandInt, RandInt)
	v.RegisterNative(CodeUnixTime, UnixTime)
	v.RegisterNative(CodeSleepMs, SleepMs)
	v.RegisterNative(CodeSubprocess, Subprocess)

	fc := NewFileController(fsRoot)
	v.RegisterNative(CodeFileOpen, FileOpen(fc))
	v.RegisterNative(CodeFileClose, FileClose(fc))
	v.RegisterNative(CodeFileWrite, FileWrite(fc))
	v.RegisterNative(CodeFileRead, FileRead(fc))
	v.RegisterNative(CodeFileDelete, FileDelete(fc))
	v.RegisterNative(CodeFileSeekGet, FileSeekGet(fc))
	v.RegisterNative(CodeFileSeekSet, FileSeekSet(fc))

	nc := NewNetController()
	v.RegisterNative(CodeNetBind, NetBind(nc))
	v.RegisterNative(CodeNetClose, NetClose(nc))
	v.RegisterNative(CodeNetAccept, NetAccept(nc))
	v.RegisterNative(CodeNetWrite, NetWrite(nc))
	v.RegisterNative(CodeNetRead, NetRead(nc))
	v.RegisterNative(CodeNetGetAddr, NetGetAddr(nc))
}
