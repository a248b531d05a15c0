package tsruntime

// Module is a single composite allocation acting as the GC root for one
// compilation unit: its imports, statics, function singletons, vtable
// environment, and interface metadata all hang off this one object so the
// collector can register/unregister a whole module with one Collector
// root add/remove, per spec.md §4.3.
type Module struct {
	Name    string
	Env     *VtableEnv
	Statics []*Object
	Imports map[string]*Module

	root *Object
	coll *Collector
}

// moduleVtable's GCVisit walks every static and imported module's root,
// implementing the "module container is a composite GC root" invariant.
var moduleVtable = &Vtable{
	Name:        "Module",
	PayloadSize: 0,
	GCVisit: func(obj *Object, visit func(*Object)) {
		m := obj.fields[0].(*Module)
		for _, s := range m.Statics {
			visit(s)
		}
		for _, imp := range m.Imports {
			if imp != nil {
				visit(imp.root)
			}
		}
	},
}

// NewModule allocates a module container on h and registers it as a
// permanent GC root with coll.
func NewModule(h *Heap, coll *Collector, name string) (*Module, error) {
	obj, err := h.Alloc(0, moduleVtable)
	if err != nil {
		return nil, err
	}
	obj.heap = h
	obj.refs = 1

	m := &Module{Name: name, Env: NewVtableEnv(), Imports: make(map[string]*Module), root: obj, coll: coll}
	obj.fields = []any{m}
	coll.AddRoot(obj)
	return m, nil
}

// Close unregisters the module's root, allowing the collector to reclaim
// everything it exclusively retained.
func (m *Module) Close() {
	if m.coll != nil {
		m.coll.RemoveRoot(m.root)
	}
}

// AddStatic appends a newly-constructed static/singleton to the module's
// retained set.
func (m *Module) AddStatic(obj *Object) {
	m.Statics = append(m.Statics, obj)
}

// Initialize runs fn under a fresh [LocalScope], matching spec.md's
// description of module initialization ("run under a fresh local scope as
// member 0"): fn is the compiled module-level initializer, responsible for
// constructing statics and populating Env.
func (m *Module) Initialize(h *Heap, fn func(scope *LocalScope, mod *Module) error) error {
	scope := h.PushScope()
	defer h.PopScope(scope)
	return fn(scope, m)
}
