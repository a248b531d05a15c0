package tsruntime

// PrimitiveKind tags the underlying native type boxed by a [Primitive].
type PrimitiveKind int

const (
	PrimitiveNumber PrimitiveKind = iota
	PrimitiveBoolean
	PrimitiveBigInt
)

// Primitive is a heap-boxed wrapper around a native value, used wherever
// compiled code needs a primitive to participate in the object graph (e.g.
// stored in a field typed as `any`, or captured by a closure) rather than
// passed by raw Go value. Boxing is the uniform object model's answer to
// spec.md's requirement that fields, captures, and union payloads can hold
// either an object pointer or a primitive indistinguishably.
type Primitive struct {
	Kind    PrimitiveKind
	Number  float64
	Boolean bool
	BigInt  int64
}

// BoxNumber allocates a boxed float64 on h.
func BoxNumber(h *Heap, v float64) (*Object, error) {
	obj, err := h.Alloc(int(primitiveVtable.PayloadSize), primitiveVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1
	obj.fields = []any{Primitive{Kind: PrimitiveNumber, Number: v}}
	return obj, nil
}

// BoxBoolean allocates a boxed bool on h.
func BoxBoolean(h *Heap, v bool) (*Object, error) {
	obj, err := h.Alloc(int(primitiveVtable.PayloadSize), primitiveVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1
	obj.fields = []any{Primitive{Kind: PrimitiveBoolean, Boolean: v}}
	return obj, nil
}

// BoxBigInt allocates a boxed 64-bit integer on h.
func BoxBigInt(h *Heap, v int64) (*Object, error) {
	obj, err := h.Alloc(int(primitiveVtable.PayloadSize), primitiveVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1
	obj.fields = []any{Primitive{Kind: PrimitiveBigInt, BigInt: v}}
	return obj, nil
}

// Unbox extracts the boxed [Primitive] from obj, failing with a
// DispatchError if obj is not a primitive box.
func Unbox(obj *Object) (Primitive, error) {
	if obj == nil || obj.Vtable != primitiveVtable {
		return Primitive{}, &DispatchError{Op: "unbox", Cause: ErrNilObject}
	}
	return obj.fields[0].(Primitive), nil
}

// primitiveVtable is the single shared vtable for all boxed primitives; it
// has no methods or interfaces of its own since primitives dispatch on
// Kind rather than virtual calls.
var primitiveVtable = &Vtable{
	Name:        "Primitive",
	PayloadSize: 32,
}
