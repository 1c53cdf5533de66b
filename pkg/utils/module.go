package utils

import (
	"os"
	"path/filepath"
)

// FindConfigFile looks for a file called name next to path and in its
// parent directories, returning the first match or "" when there is none
func FindConfigFile(path, name string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	dir := absPath
	if isDir, err := IsDirectory(absPath); err != nil || !isDir {
		dir = filepath.Dir(absPath)
	}

	iterations := 0
	maxIterations := 20 // Prevent infinite loop

	for iterations < maxIterations {
		iterations++

		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
