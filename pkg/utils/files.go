package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceExtensions lists the file extensions whose imports are sorted
var SourceExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// IsSourceFile checks if a file is a JavaScript or TypeScript source file
func IsSourceFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" || ext == filename {
		return false
	}
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsSkippedDir reports whether a directory is never descended into
func IsSkippedDir(name string) bool {
	return name == "node_modules" || name == "vendor" || strings.HasPrefix(name, ".")
}

// FindSourceFiles recursively finds all source files in a directory
func FindSourceFiles(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip dependency and hidden directories (but not the root directory)
		if info.IsDir() && path != root {
			if IsSkippedDir(filepath.Base(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() && IsSourceFile(filepath.Base(path)) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// IsDirectory checks if the given path is a directory
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
