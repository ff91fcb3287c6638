package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath is the module path of this library. Target trees whose
// go.mod neither declares nor requires it cannot contain guard usage,
// so the checker skips them wholesale.
const ModulePath = "github.com/kolkov/poisoning"

// FindGoMod locates the go.mod governing startDir by walking up the
// directory tree. Returns the empty string when no go.mod is found
// before the filesystem root.
func FindGoMod(startDir string) string {
	dir := startDir
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return modPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			break
		}
		dir = parent
	}
	return ""
}

// UsesPoisoning reports whether the module described by goModPath is,
// requires, or replaces this library.
//
// Replace directives are considered in both directions so that local
// development checkouts (replace github.com/kolkov/poisoning => ../poisoning)
// are still recognized.
func UsesPoisoning(goModPath string) (bool, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", goModPath, err)
	}

	mod, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", goModPath, err)
	}

	if mod.Module != nil && mod.Module.Mod.Path == ModulePath {
		// The library's own tree.
		return true, nil
	}
	for _, req := range mod.Require {
		if req.Mod.Path == ModulePath {
			return true, nil
		}
	}
	for _, rep := range mod.Replace {
		if rep.Old.Path == ModulePath || rep.New.Path == ModulePath {
			return true, nil
		}
	}
	return false, nil
}
