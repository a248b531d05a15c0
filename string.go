package tsruntime

// String is the runtime's string representation: either a const string
// (backed by a Go string literal embedded in a [Module]'s constant pool,
// never copied) or an owned string (heap-allocated, built at runtime by
// concatenation or coercion). utf16Len/utf16Cached hold the UTF-16
// code-unit length spec.md allows for but never exercises (OQ5): computed
// lazily by [UTF16Len] on first call and not used by any other operation.
type String struct {
	Const bool
	Value string

	utf16Len    int
	utf16Cached bool
}

// NewConstString wraps a compile-time string literal without copying or
// heap-allocating its backing bytes beyond the [Object] header.
func NewConstString(h *Heap, s string) (*Object, error) {
	return newStringObject(h, s, true)
}

// NewOwnedString allocates a new, runtime-constructed string.
func NewOwnedString(h *Heap, s string) (*Object, error) {
	return newStringObject(h, s, false)
}

func newStringObject(h *Heap, s string, isConst bool) (*Object, error) {
	obj, err := h.Alloc(len(s)+16, stringVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1
	obj.fields = []any{String{Const: isConst, Value: s}}
	return obj, nil
}

// StringValue extracts the Go string from a string object.
func StringValue(obj *Object) (string, error) {
	if obj == nil || obj.Vtable != stringVtable {
		return "", &DispatchError{Op: "string-value", Cause: ErrNilObject}
	}
	return obj.fields[0].(String).Value, nil
}

// Concat builds a new owned string by concatenating a and b.
func Concat(h *Heap, a, b *Object) (*Object, error) {
	av, err := StringValue(a)
	if err != nil {
		return nil, err
	}
	bv, err := StringValue(b)
	if err != nil {
		return nil, err
	}
	return NewOwnedString(h, av+bv)
}

// UTF16Len returns the UTF-16 code-unit length of the string, computing and
// caching it on first use. Declared per OQ5 but not exercised by any
// operation spec.md requires; a future surrogate-pair-aware opcode would
// read this rather than Value directly.
func UTF16Len(obj *Object) (int, error) {
	if obj == nil || obj.Vtable != stringVtable {
		return 0, &DispatchError{Op: "utf16-len", Cause: ErrNilObject}
	}
	s := obj.fields[0].(String)
	if !s.utf16Cached {
		n := 0
		for _, r := range s.Value {
			if r > 0xFFFF {
				n += 2
			} else {
				n++
			}
		}
		s.utf16Len = n
		s.utf16Cached = true
		obj.fields[0] = s
	}
	return s.utf16Len, nil
}

var stringVtable = &Vtable{
	Name:        "String",
	PayloadSize: 16,
}
