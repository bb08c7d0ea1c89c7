// pkg/guidance/catalog_test.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package guidance

import "testing"

func TestCatalogRoundTrip(t *testing.T) {
	c := NewMacroCatalog("v2", "round trip catalog")
	want := Macro{
		ID:      "P30_LOAD_PAD",
		Label:   "Load PAD for P30",
		Verb:    intp(16),
		Noun:    intp(36),
		Mode:    ModeEntry,
		Program: "P30",
		Registers: []RegisterDef{
			{ID: "R1", Label: "Time of ignition"},
		},
	}
	c.Load(map[string]Macro{want.ID: want})

	got, ok := c.Get("P30_LOAD_PAD")
	if !ok {
		t.Fatalf("expected macro to be found")
	}
	if got.Label != want.Label || *got.Verb != *want.Verb || *got.Noun != *want.Noun || got.Program != want.Program {
		t.Fatalf("round-tripped macro does not match: got %+v, want %+v", got, want)
	}
}

func TestCatalogLoadClearsPrevious(t *testing.T) {
	c := NewMacroCatalog("v1", "")
	c.Load(map[string]Macro{"A": {ID: "A"}})
	if c.Len() != 1 {
		t.Fatalf("expected 1 macro after first load")
	}

	c.Load(map[string]Macro{"B": {ID: "B"}})
	if _, ok := c.Get("A"); ok {
		t.Fatalf("expected macro A to be gone after reload")
	}
	if _, ok := c.Get("B"); !ok {
		t.Fatalf("expected macro B to be present")
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly 1 macro after reload, got %d", c.Len())
	}
}
