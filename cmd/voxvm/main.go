// Command voxvm assembles and/or runs VoxVM programs: a single binary
// covering the assembler (--vas), the raw-bytecode interpreter (--vvr),
// and the image interpreter (--vve), plus the implicit assemble-then-run
// path when only --vas is given.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freemorger/voxvm/assembler"
	"github.com/freemorger/voxvm/loader"
	"github.com/freemorger/voxvm/native"
	"github.com/freemorger/voxvm/vm"
)

func main() {
	var (
		vasPath        string
		vasOut         string
		vvrPath        string
		vvePath        string
		initRAM        string
		initStackSize  string
		initHeapSize   string
		maxRecursion   int
		nativeConfigs  string
		coredumpOnExit bool
		fsRoot         string
	)

	rootCmd := &cobra.Command{
		Use:   "voxvm",
		Short: "VoxVM assembler and bytecode interpreter",
		RunE: func(cmd *cobra.Command, args []string) error {
			ram, err := parseSize(initRAM)
			if err != nil {
				return fmt.Errorf("--init-ram: %w", err)
			}
			stackSize, err := parseSize(initStackSize)
			if err != nil {
				return fmt.Errorf("--init-stack-size: %w", err)
			}
			heapSize, err := parseSize(initHeapSize)
			if err != nil {
				return fmt.Errorf("--init-heap-size: %w", err)
			}
			sizes := loader.Sizes{RAM: ram, StackSize: stackSize, HeapSize: heapSize}

			if nativeConfigs != "" {
				configs, err := native.LoadLibraryConfigs(nativeConfigs)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "voxvm: loaded %d native library descriptor(s) from %s\n", len(configs), nativeConfigs)
			}

			if vasPath != "" {
				prog, result, err := loader.AssembleFile(vasPath)
				if err != nil {
					return err
				}
				out := vasOut
				if out == "" {
					out = loader.DefaultAssemblerOutput(vasPath)
				}
				if err := assembler.WriteOutput(out, prog, result); err != nil {
					return fmt.Errorf("voxvm: writing %s: %w", out, err)
				}
				fmt.Fprintf(os.Stderr, "voxvm: assembled %s -> %s\n", vasPath, out)

				if vvrPath == "" && vvePath == "" {
					v := loader.LoadAssembled(prog, result, sizes, maxRecursion)
					return runVM(v, fsRoot, coredumpOnExit)
				}
			}

			if vvrPath != "" {
				v, err := loader.LoadRaw(vvrPath, sizes, maxRecursion)
				if err != nil {
					return err
				}
				return runVM(v, fsRoot, coredumpOnExit)
			}

			if vvePath != "" {
				v, err := loader.LoadImage(vvePath, sizes, maxRecursion)
				if err != nil {
					return err
				}
				return runVM(v, fsRoot, coredumpOnExit)
			}

			return cmd.Help()
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&vasPath, "vas", "", "Assemble this source file")
	flags.StringVar(&vasOut, "vas-out", "", "Assembler output path (default derived from --vas)")
	flags.StringVar(&vvrPath, "vvr", "", "Run a headerless raw bytecode file")
	flags.StringVar(&vvePath, "vve", "", "Run a .vve image file")
	flags.StringVar(&initRAM, "init-ram", "1MB", "Total address space size (data segment sizing for --vvr)")
	flags.StringVar(&initStackSize, "init-stack-size", "64KB", "Operand stack reservation")
	flags.StringVar(&initHeapSize, "init-heap-size", "1MB", "Heap capacity")
	flags.IntVar(&maxRecursion, "max-recursion", 1000, "Maximum call-stack depth")
	flags.StringVar(&nativeConfigs, "native-configs", "", "Directory of *.toml native library descriptors to load")
	flags.BoolVar(&coredumpOnExit, "coredump_exit", false, "Write voxvm.dump (memory + heap) when the VM exits")
	flags.StringVar(&fsRoot, "fsroot", "", "Restrict native file operations to this directory (default: current directory)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "voxvm: %v\n", err)
		os.Exit(1)
	}
}

func runVM(v *vm.VM, fsRoot string, coredumpOnExit bool) error {
	if fsRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			fsRoot = wd
		}
	}
	native.RegisterBuiltins(v, fsRoot)

	runErr := v.Run()

	if coredumpOnExit {
		if err := writeCoredump(v); err != nil {
			fmt.Fprintf(os.Stderr, "voxvm: writing coredump: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "\nRuntime error at IP=0x%08X: %v\n", v.IP, runErr)
		fmt.Fprintf(os.Stderr, "%s\n", v.DumpState())
		os.Exit(1)
	}
	return nil
}

func writeCoredump(v *vm.VM) error {
	f, err := os.Create("voxvm.dump")
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(v.Mem.Bytes()); err != nil {
		return err
	}
	_, err = f.Write(v.Heap.Bytes())
	return err
}
