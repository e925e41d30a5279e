// Package utils holds small path helpers shared by the commands.
package utils

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/omnitype/omnitype/internal/config"
)

// FindPythonFiles walks root and returns every .py file, skipping
// __pycache__ and hidden directories. exclude filters additional basenames.
func FindPythonFiles(root string, exclude func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (name == "__pycache__" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if exclude != nil && exclude(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != config.PythonFileExt {
			return nil
		}
		if exclude != nil && exclude(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ModuleName converts a file path to a Python module name. Directories and
// paths without a stem yield "".
func ModuleName(path string) string {
	if path == "" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return ""
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return ""
	}
	return stem
}
