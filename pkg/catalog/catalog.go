// pkg/catalog/catalog.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package catalog loads guidance macro catalogs authored as YAML
// files. It only builds guidance.MacroCatalog values; handing one to
// a Runtime is the caller's job, keeping file I/O out of pkg/guidance.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwiedeman/apollo64-sub003/pkg/guidance"
)

// fileRegisterDef mirrors guidance.RegisterDef for YAML unmarshaling.
type fileRegisterDef struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Units  string `yaml:"units"`
	Format string `yaml:"format"`
}

// fileMacro mirrors guidance.Macro for YAML unmarshaling.
type fileMacro struct {
	ID           string            `yaml:"id"`
	Label        string            `yaml:"label"`
	Description  string            `yaml:"description"`
	Verb         *int              `yaml:"verb"`
	Noun         *int              `yaml:"noun"`
	Mode         string            `yaml:"mode"`
	Program      string            `yaml:"program"`
	MajorMode    string            `yaml:"majorMode"`
	SubMode      string            `yaml:"subMode"`
	Registers    []fileRegisterDef `yaml:"registers"`
	Requirements []string          `yaml:"requirements"`
}

// file is the on-disk shape of a macro catalog YAML document.
type file struct {
	Version     string      `yaml:"version"`
	Description string      `yaml:"description"`
	Macros      []fileMacro `yaml:"macros"`
}

// LoadCatalogFile reads and parses a YAML macro catalog at path,
// returning a guidance.MacroCatalog ready to hand to
// Runtime.LoadCatalog.
func LoadCatalogFile(path string) (*guidance.MacroCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML macro catalog document.
func ParseCatalog(data []byte) (*guidance.MacroCatalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	macros := make(map[string]guidance.Macro, len(f.Macros))
	for _, fm := range f.Macros {
		if fm.ID == "" {
			return nil, fmt.Errorf("catalog: macro missing id")
		}
		regs := make([]guidance.RegisterDef, 0, len(fm.Registers))
		for _, fr := range fm.Registers {
			regs = append(regs, guidance.RegisterDef{
				ID:     fr.ID,
				Label:  fr.Label,
				Units:  fr.Units,
				Format: fr.Format,
			})
		}

		mode := guidance.Mode(fm.Mode)
		switch mode {
		case guidance.ModeEntry, guidance.ModeMonitor, guidance.ModeUtility:
		case "":
			mode = guidance.ModeUtility
		default:
			return nil, fmt.Errorf("catalog: macro %s: invalid mode %q", fm.ID, fm.Mode)
		}

		var requirements []any
		for _, r := range fm.Requirements {
			requirements = append(requirements, r)
		}

		macros[fm.ID] = guidance.Macro{
			ID:           fm.ID,
			Label:        fm.Label,
			Description:  fm.Description,
			Verb:         fm.Verb,
			Noun:         fm.Noun,
			Mode:         mode,
			Program:      fm.Program,
			MajorMode:    fm.MajorMode,
			SubMode:      fm.SubMode,
			Registers:    regs,
			Requirements: requirements,
		}
	}

	c := guidance.NewMacroCatalog(f.Version, f.Description)
	c.Load(macros)
	return c, nil
}
