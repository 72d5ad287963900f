package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
)

// LoadFromDirectory loads every deal template from a directory tree.
// Expected structure:
//
//	baseDir/
//	  multifamily/
//	    value_add.hjson
//	  office/
//	    stabilized.hjson
//
// Hjson keeps the files hand-editable: comments, unquoted keys, optional
// commas, and trailing commas are all accepted.
func LoadFromDirectory(baseDir string) error {
	registry := Get()

	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		return fmt.Errorf("presets directory not found: %s", baseDir)
	}

	loaded := 0
	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".hjson" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var t DealTemplate
		if err := hjson.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		// Auto-generate ID from path if not specified
		if t.ID == "" {
			t.ID = generateIDFromPath(path, baseDir)
		}

		// Auto-detect category from folder name if not specified
		if t.Category == "" {
			t.Category = detectCategory(path, baseDir)
		}

		// A template that fails deal validation is a broken resource file;
		// surface it at load time, not at first use.
		if err := t.Input.Assumptions.Validate(); err != nil {
			return fmt.Errorf("template %s has invalid assumptions: %w", t.ID, err)
		}

		if err := registry.Register(&t); err != nil {
			return fmt.Errorf("failed to register %s: %w", t.ID, err)
		}
		loaded++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("[preset.Loader] Loaded %d templates from %s\n", loaded, baseDir)
	return nil
}

// generateIDFromPath creates a template ID from the file path
// e.g., "presets/multifamily/value_add.hjson" -> "multifamily.value_add"
func generateIDFromPath(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	relPath = strings.TrimSuffix(relPath, ".hjson")
	relPath = strings.ReplaceAll(relPath, string(filepath.Separator), ".")
	return relPath
}

// detectCategory extracts the category from the folder structure
func detectCategory(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}
