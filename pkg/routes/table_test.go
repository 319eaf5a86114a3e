package routes

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTable_Lookup(t *testing.T) {
	table := New(map[Key]Plan{
		{"dock", "1"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e", "c", "d"}},
	})

	plan := table.Lookup("dock", "1")
	if !reflect.DeepEqual(plan.Center, []string{"b"}) {
		t.Errorf("Center: got %v, want [b]", plan.Center)
	}
	if !reflect.DeepEqual(plan.Right, []string{"e", "c", "d"}) {
		t.Errorf("Right: got %v, want [e c d]", plan.Right)
	}
}

func TestTable_LookupMissReturnsEmptyPlan(t *testing.T) {
	table := New(map[Key]Plan{})

	plan := table.Lookup("nowhere", "also-nowhere")
	if len(plan.Left) != 0 || len(plan.Center) != 0 || len(plan.Right) != 0 {
		t.Errorf("miss should yield the empty plan, got %+v", plan)
	}
}

func TestTable_NilTableLookup(t *testing.T) {
	var table *Table
	plan := table.Lookup("a", "b")
	if len(plan.Left) != 0 {
		t.Errorf("nil table should yield the empty plan, got %+v", plan)
	}
}

func TestPlan_Alternative(t *testing.T) {
	plan := Plan{
		Left:   []string{"a"},
		Center: []string{"b"},
		Right:  []string{"c", "d"},
	}

	if got := plan.Alternative(AltLeft); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("left: got %v", got)
	}
	if got := plan.Alternative(AltCenter); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("center: got %v", got)
	}
	if got := plan.Alternative(AltRight); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("right: got %v", got)
	}
	// Unknown alternative behaves like a table miss: direct move.
	if got := plan.Alternative("route_diagonal"); len(got) != 0 {
		t.Errorf("unknown alternative: got %v, want empty", got)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - from: dock
    to: "1"
    left: [a]
    center: [b]
    right: [e, c, d]
  - from: "1"
    to: "2"
    left: [d]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Len: got %d, want 2", table.Len())
	}

	plan := table.Lookup("dock", "1")
	if !reflect.DeepEqual(plan.Right, []string{"e", "c", "d"}) {
		t.Errorf("Right: got %v, want [e c d]", plan.Right)
	}

	plan = table.Lookup("1", "2")
	if !reflect.DeepEqual(plan.Left, []string{"d"}) {
		t.Errorf("Left: got %v, want [d]", plan.Left)
	}
	if len(plan.Center) != 0 {
		t.Errorf("Center: got %v, want empty", plan.Center)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuiltin(t *testing.T) {
	table := Builtin()
	if table.Len() == 0 {
		t.Fatal("builtin table is empty")
	}

	plan := table.Lookup("充電ドック", "1")
	if !reflect.DeepEqual(plan.Left, []string{"a"}) {
		t.Errorf("dock->1 left: got %v, want [a]", plan.Left)
	}
	if !reflect.DeepEqual(plan.Center, []string{"b"}) {
		t.Errorf("dock->1 center: got %v, want [b]", plan.Center)
	}
	if !reflect.DeepEqual(plan.Right, []string{"e", "c", "d"}) {
		t.Errorf("dock->1 right: got %v, want [e c d]", plan.Right)
	}

	// Pairs for hubs beyond the surveyed map fall back to direct moves.
	plan = table.Lookup("充電ドック", "9")
	if len(plan.Left) != 0 || len(plan.Center) != 0 || len(plan.Right) != 0 {
		t.Errorf("unsurveyed pair should be empty, got %+v", plan)
	}
}
