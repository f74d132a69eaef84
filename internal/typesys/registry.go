package typesys

// Registry tracks the Union types declared by the program being lowered,
// in declaration order, and the RefCells created to let a declaration
// refer to itself before it is fully constructed (spec §4.3). It is the
// C1 "type registry" component: structural and nominal type identity,
// including cyclic union types via back-references.
type Registry struct {
	declared []*Union
	cells    map[string]*RefCell // name -> cell, for resolving "ref to declaration X" while X is still being built
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cells: make(map[string]*RefCell)}
}

// Declare appends a fully-formed Union to the declaration-order list. It
// takes no name: lookup by name goes through the RefCell from
// CellFor(name), which must already have been patched (via Patch) to
// point at this Union before Declare is called, so in-flight recursive
// references resolve correctly.
func (r *Registry) Declare(u *Union) {
	r.declared = append(r.declared, u)
}

// Declared returns the Union types in declaration order.
func (r *Registry) Declared() []*Union {
	return r.declared
}

// CellFor returns the RefCell standing in for the declaration named name,
// creating it on first use. Lowering calls this before a recursive
// declaration's body has been fully lowered, then later calls Patch once
// the Union is complete.
func (r *Registry) CellFor(name string) *RefCell {
	if c, ok := r.cells[name]; ok {
		return c
	}
	c := NewRefCell(name)
	r.cells[name] = c
	return c
}

// ByName returns the Union previously declared under name, or nil if name
// was never declared or has not been patched yet.
func (r *Registry) ByName(name string) *Union {
	c, ok := r.cells[name]
	if !ok {
		return nil
	}
	u, _ := c.Target.(*Union)
	return u
}
