package tsruntime

import (
	"encoding/binary"
	"fmt"
)

// packageMagic is the 4-byte magic every binary package file must begin
// with, per spec.md §6.
const packageMagic = "MVTP"

// ModuleInitFunc is the compiled entry point a [Loader] resolves a module
// name to: given a heap and collector, it constructs and returns the
// module's [Module] container.
type ModuleInitFunc func(h *Heap, coll *Collector) (*Module, error)

// Loader resolves a module name to a constructed [Module] through a
// built-in registry and a dynamic-library stub ([Loader.Load]). Binary
// packages are read separately by [Loader.LoadPackage]; Load does not try
// them.
type Loader struct {
	builtins map[string]ModuleInitFunc
}

// NewLoader constructs an empty loader.
func NewLoader() *Loader {
	return &Loader{builtins: make(map[string]ModuleInitFunc)}
}

// RegisterBuiltin registers a compiled-in module under name, the
// id-keyed-map pattern the teacher's promise registry uses for its weak
// pointer table, repurposed here to index module constructors by name
// instead of promises by numeric id.
func (l *Loader) RegisterBuiltin(name string, init ModuleInitFunc) {
	l.builtins[name] = init
}

// Load resolves name via the built-in registry first, then the dynamic
// stub, wrapping any failure in a [*LoaderError]. It does not look for a
// binary package; a name that neither strategy resolves fails with
// [ErrUnknownModule].
func (l *Loader) Load(h *Heap, coll *Collector, name string) (*Module, error) {
	if init, ok := l.builtins[name]; ok {
		mod, err := init(h, coll)
		if err != nil {
			return nil, &LoaderError{Name: name, Cause: err}
		}
		return mod, nil
	}

	if mod, err := l.loadDynamic(h, coll, name); err == nil {
		return mod, nil
	} else if err != ErrDynamicLoadUnsupported {
		return nil, &LoaderError{Name: name, Cause: err}
	}

	return nil, &LoaderError{Name: name, Cause: ErrUnknownModule}
}

// loadDynamic documents the `_<name>_module` dynamic-symbol contract but
// always returns [ErrDynamicLoadUnsupported]: plugin.Open is Linux/macOS
// only and unavailable to cgo-free cross-platform builds, so this path is
// named, typed, and tested for its error contract rather than implemented
// — out of scope per spec.md §1.
func (l *Loader) loadDynamic(_ *Heap, _ *Collector, name string) (*Module, error) {
	_ = fmt.Sprintf("_%s_module", name) // documents the expected symbol name
	return nil, ErrDynamicLoadUnsupported
}

// LoadPackage validates a binary package's MVTP magic and 32-bit size
// header, then hands the remaining bytes to decode for the
// offset-to-pointer remapping pass spec.md §6 describes. decode is
// supplied by the embedder (or a test) since the actual object-layout
// encoding is AOT-compiler-defined and out of this module's scope.
func (l *Loader) LoadPackage(data []byte, decode func(body []byte) (*Module, error)) (*Module, error) {
	if len(data) < 8 || string(data[:4]) != packageMagic {
		return nil, &LoaderError{Cause: ErrBadPackageMagic}
	}
	size := binary.LittleEndian.Uint32(data[4:8])
	if int(size) > len(data)-8 {
		return nil, &LoaderError{Cause: ErrBadPackageMagic}
	}
	body := data[8 : 8+size]
	mod, err := decode(body)
	if err != nil {
		return nil, &LoaderError{Cause: err}
	}
	return mod, nil
}
