package tsruntime

// Object is the uniform header every heap allocation begins with: a vtable
// pointer, a strong refcount, a mark bit for the collector's sweep phase,
// and a field area indexed by member slot number (one entry per vtable
// member). Interface dispatch cells (one per implemented interface) are
// carried in ifaces, mirroring spec.md's "fat-pointer cell" design rather than a
// single itable pointer, so a class can satisfy many interfaces without an
// indirect lookup per call.
type Object struct {
	Vtable *Vtable
	refs   int32
	marked bool

	fields []any
	ifaces []ifaceCell

	// cluster/slotIdx/freeNext/large are heap bookkeeping, set by Cluster
	// or LargeTable and never touched by compiled method bodies.
	cluster  *Cluster
	slotIdx  int
	freeNext int
	large    bool
	heap     *Heap
}

// ifaceCell is one fat-pointer entry: the interface it satisfies plus the
// method table slice (aliases into InterfaceMeta.Methods, never copied).
type ifaceCell struct {
	iface   *InterfaceMeta
	methods []Member
}

// NewInstance allocates a zero-valued instance of vt on h, with storage for
// len(vt.Members) field slots and one fat-pointer cell per interface vt (or
// an ancestor) implements.
func NewInstance(h *Heap, vt *Vtable) (*Object, error) {
	obj, err := h.Alloc(vt.PayloadSize, vt)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.fields = make([]any, len(vt.Members))
	obj.refs = 1

	var ifaces []InterfaceMeta
	for c := vt; c != nil; c = c.Super {
		ifaces = append(ifaces, c.Ifaces...)
	}
	obj.ifaces = make([]ifaceCell, len(ifaces))
	for i := range ifaces {
		obj.ifaces[i] = ifaceCell{iface: &ifaces[i], methods: ifaces[i].Methods}
	}
	return obj, nil
}

// AddRef increments the strong refcount (P2: refcounting is the fast path
// for acyclic reclamation; the collector handles cycles).
func (o *Object) AddRef() {
	if o == nil {
		return
	}
	o.refs++
}

// Release decrements the strong refcount, freeing the slot immediately
// when it reaches zero. Returns true if the object was freed.
func (o *Object) Release() bool {
	if o == nil {
		return false
	}
	o.refs--
	if o.refs > 0 {
		return false
	}
	o.destroy()
	return true
}

func (o *Object) destroy() {
	if o.heap != nil {
		o.heap.weakTable.invalidate(o)
	}
	if o.large {
		if o.heap != nil {
			o.heap.largeTable.remove(o)
		}
		return
	}
	if o.cluster != nil {
		o.cluster.free(o.slotIdx)
	}
}

// GetField reads field slot index, validating the member is a field via
// the vtable (spec.md P4: dispatch failures return DispatchError, not a
// panic).
func (o *Object) GetField(index int) (any, error) {
	if o == nil {
		return nil, &DispatchError{Op: "field-get", Cause: ErrNilObject}
	}
	if _, err := o.Vtable.Member(index, MemberField); err != nil {
		return nil, err
	}
	return o.fields[index], nil
}

// SetField writes field slot index.
func (o *Object) SetField(index int, val any) error {
	if o == nil {
		return &DispatchError{Op: "field-set", Cause: ErrNilObject}
	}
	if _, err := o.Vtable.Member(index, MemberField); err != nil {
		return err
	}
	o.fields[index] = val
	return nil
}

// CallMethod dispatches to the method at slot index through o's own
// vtable (virtual dispatch).
func (o *Object) CallMethod(index int, args []any) (any, error) {
	if o == nil {
		return nil, &DispatchError{Op: "call", Cause: ErrNilObject}
	}
	m, err := o.Vtable.Member(index, MemberMethod)
	if err != nil {
		return nil, err
	}
	return m.MethodFunc(o, args)
}

// CallSuper dispatches to the method at slot index through from's Super
// vtable, implementing `super.method()` calls (single inheritance only).
func (o *Object) CallSuper(from *Vtable, index int, args []any) (any, error) {
	if o == nil {
		return nil, &DispatchError{Op: "super-call", Cause: ErrNilObject}
	}
	if from.Super == nil {
		return nil, &DispatchError{Op: "super-call", Class: from.Name, Index: index, Cause: ErrMemberIndexOutOfRange}
	}
	m, err := from.Super.Member(index, MemberMethod)
	if err != nil {
		return nil, err
	}
	return m.MethodFunc(o, args)
}

// InterfaceCall dispatches a method through the fat-pointer cell for the
// named interface rather than through o's concrete vtable, implementing
// interface-typed call sites.
func (o *Object) InterfaceCall(ifaceName string, methodIdx int, args []any) (any, error) {
	if o == nil {
		return nil, &DispatchError{Op: "interface-call", Cause: ErrNilObject}
	}
	for _, cell := range o.ifaces {
		if cell.iface.Name == ifaceName {
			if methodIdx < 0 || methodIdx >= len(cell.methods) {
				return nil, &DispatchError{Op: "interface-call", Class: ifaceName, Index: methodIdx, Cause: ErrMemberIndexOutOfRange}
			}
			return cell.methods[methodIdx].MethodFunc(o, args)
		}
	}
	return nil, &DispatchError{Op: "interface-call", Class: o.Vtable.Name, Cause: ErrInterfaceNotImplemented}
}

// gcVisit delegates to the vtable's GCVisit hook, if any, letting the
// collector traverse o's outgoing references without reflection.
func (o *Object) gcVisit(visit func(*Object)) {
	if o.Vtable != nil && o.Vtable.GCVisit != nil {
		o.Vtable.GCVisit(o, visit)
	}
}
