// Command runtime loads and executes a single compiled module, the same
// job the teacher's examples/01_basic_usage demonstrates for the event
// loop in isolation: construct the runtime, load one entry point, drive it
// to completion, and surface the exit code spec.md §7 expects.
package main

import (
	"fmt"
	"os"

	tsruntime "github.com/joeycumines/go-tsruntime"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: runtime <module-name-or-package-path>")
		return 2
	}
	name := args[0]

	logger := tsruntime.NewStumpyLogger(os.Stderr, tsruntime.LevelInfo)
	rt, err := tsruntime.NewRuntime(tsruntime.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime: failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Close()

	mod, err := loadModule(rt, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime: failed to load %q: %v\n", name, err)
		return 1
	}
	defer mod.Close()

	if err := rt.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime: %v\n", err)
		return 1
	}
	return 0
}

// loadModule resolves name either as a built-in module name or, if it
// names an existing file, as a binary package per spec.md §6. Binary
// package decoding is AOT-compiler-defined and out of this module's scope
// (see loader.go's LoadPackage doc comment), so the decode callback here
// only validates the envelope and reports why it cannot proceed further.
func loadModule(rt *tsruntime.Runtime, name string) (*tsruntime.Module, error) {
	if data, err := os.ReadFile(name); err == nil {
		return rt.Loader.LoadPackage(data, func([]byte) (*tsruntime.Module, error) {
			return nil, fmt.Errorf("runtime: binary package body decoding requires an AOT-compiler-supplied decoder, none is linked into this build")
		})
	}
	return rt.LoadBuiltin(name)
}
