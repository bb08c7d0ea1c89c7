// pkg/guidance/catalog.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package guidance

import (
	"sync"

	"github.com/brunoga/deep"
)

// MacroCatalog is a version-stamped, described bundle mapping macro id
// to Macro. Replacing the catalog (Load) atomically clears the
// previous mapping.
type MacroCatalog struct {
	mu          sync.RWMutex
	Version     string
	Description string
	macros      map[string]Macro
}

// NewMacroCatalog returns an empty catalog with the given version tag
// and description.
func NewMacroCatalog(version, description string) *MacroCatalog {
	return &MacroCatalog{
		Version:     version,
		Description: description,
		macros:      make(map[string]Macro),
	}
}

// Load atomically replaces the catalog's macro set.
func (c *MacroCatalog) Load(macros map[string]Macro) {
	next := make(map[string]Macro, len(macros))
	for id, m := range macros {
		next[id] = m
	}

	c.mu.Lock()
	c.macros = next
	c.mu.Unlock()
}

// Get returns the macro for id, and whether it was found.
func (c *MacroCatalog) Get(id string) (Macro, bool) {
	if id == "" {
		return Macro{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.macros[id]
	return m, ok
}

// Macros returns a deep copy of the catalog's id->macro mapping, safe
// for the caller to retain or mutate.
func (c *MacroCatalog) Macros() map[string]Macro {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deep.MustCopy(c.macros)
}

// Len returns the number of macros currently loaded.
func (c *MacroCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.macros)
}
