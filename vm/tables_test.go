package vm

import (
	"reflect"
	"testing"
)

func TestVariableTable(t *testing.T) {
	vars := NewVariableTable()
	if vars.Contains("a") {
		t.Error("empty table contains a")
	}

	vars.Set("b", NumberValue(2).WithRef("other"))
	vars.Set("a", StringValue("x"))

	v, ok := vars.Get("b")
	if !ok || !v.Equal(NumberValue(2)) {
		t.Errorf("Get(b) = %v, %v", v, ok)
	}
	if v.Ref() != "" {
		t.Errorf("stored value kept ref %q", v.Ref())
	}
	if vars.Len() != 2 {
		t.Errorf("Len = %d, want 2", vars.Len())
	}
	if got := vars.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names = %v", got)
	}
}

func TestProgramTableOrderAndReplace(t *testing.T) {
	programs := NewProgramTable()
	programs.Put(Declaration{Name: "first", Line: 1})
	programs.Put(Declaration{Name: "second", Line: 2})
	programs.Put(Declaration{Name: "first", Line: 9})

	decls := programs.Declarations()
	if len(decls) != 2 || programs.Len() != 2 {
		t.Fatalf("Declarations = %v", decls)
	}
	if decls[0].Name != "first" || decls[0].Line != 9 {
		t.Errorf("decls[0] = %+v, want first replaced in place", decls[0])
	}
	if decls[1].Name != "second" {
		t.Errorf("decls[1] = %+v", decls[1])
	}

	// Declarations returns a copy.
	decls[0].Name = "changed"
	if d, _ := programs.Get("first"); d.Name != "first" {
		t.Error("Declarations aliases the table")
	}
	if _, ok := programs.Get("missing"); ok {
		t.Error("Get(missing) succeeded")
	}
}
