package tsruntime

// Closure is a heap-allocated function value: a native Go function plus a
// fixed-layout capture area declared at compile time (spec.md's "declared
// captured-byte layouts"), so a closure is just another object the
// collector can trace through like any other.
type Closure struct {
	Fn       func(captures []any, args []any) (any, error)
	Captures []any
}

// NewClosure allocates a closure object capturing the given values.
func NewClosure(h *Heap, fn func(captures []any, args []any) (any, error), captures []any) (*Object, error) {
	obj, err := h.Alloc(closurePayloadSize(len(captures)), closureVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1
	capCopy := make([]any, len(captures))
	copy(capCopy, captures)
	obj.fields = []any{Closure{Fn: fn, Captures: capCopy}}
	return obj, nil
}

// Invoke calls the closure with args.
func Invoke(obj *Object, args []any) (any, error) {
	if obj == nil || obj.Vtable != closureVtable {
		return nil, &DispatchError{Op: "invoke", Cause: ErrNilObject}
	}
	c := obj.fields[0].(Closure)
	return c.Fn(c.Captures, args)
}

func closurePayloadSize(numCaptures int) int {
	return 16 + numCaptures*8
}

var closureVtable = &Vtable{
	Name:        "Closure",
	PayloadSize: 16,
	GCVisit: func(obj *Object, visit func(*Object)) {
		c := obj.fields[0].(Closure)
		for _, cap := range c.Captures {
			if o, ok := cap.(*Object); ok {
				visit(o)
			}
		}
	},
}
