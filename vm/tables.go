package vm

import "sort"

// VariableTable maps variable names to their current value. One table
// lives for one execution session.
type VariableTable struct {
	vars map[string]Value
}

// NewVariableTable creates an empty table.
func NewVariableTable() *VariableTable {
	return &VariableTable{vars: make(map[string]Value)}
}

// Get returns the value of name.
func (t *VariableTable) Get(name string) (Value, bool) {
	v, ok := t.vars[name]
	return v, ok
}

// Set stores v under name. The variable tag of v is dropped.
func (t *VariableTable) Set(name string, v Value) {
	t.vars[name] = v.Unref()
}

// Contains reports whether name has been assigned.
func (t *VariableTable) Contains(name string) bool {
	_, ok := t.vars[name]
	return ok
}

// Len returns the number of variables.
func (t *VariableTable) Len() int {
	return len(t.vars)
}

// Names returns the variable names in sorted order.
func (t *VariableTable) Names() []string {
	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declaration records a program name registered by a program statement.
type Declaration struct {
	Name  string
	Value Value // never dereferenced
	Line  int
}

// ProgramTable holds program declarations in registration order.
type ProgramTable struct {
	byName map[string]int
	decls  []Declaration
}

// NewProgramTable creates an empty table.
func NewProgramTable() *ProgramTable {
	return &ProgramTable{byName: make(map[string]int)}
}

// Put registers d, replacing an earlier declaration of the same name in
// place.
func (t *ProgramTable) Put(d Declaration) {
	if i, ok := t.byName[d.Name]; ok {
		t.decls[i] = d
		return
	}
	t.byName[d.Name] = len(t.decls)
	t.decls = append(t.decls, d)
}

// Get returns the declaration of name.
func (t *ProgramTable) Get(name string) (Declaration, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Declaration{}, false
	}
	return t.decls[i], true
}

// Declarations returns the declarations in registration order.
func (t *ProgramTable) Declarations() []Declaration {
	return append([]Declaration(nil), t.decls...)
}

// Len returns the number of declarations.
func (t *ProgramTable) Len() int {
	return len(t.decls)
}
