package engine

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// manifestExtensions are the recognised manifest suffixes (lower-case).
var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// IsManifestFile reports whether path has a YAML extension, ignoring case.
func IsManifestFile(path string) bool {
	return manifestExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover walks root recursively in lexical order and returns every
// manifest file. The subtree rooted at exclude is skipped, which keeps an
// output directory nested inside the source tree from being re-read.
// Unreadable entries are reported through onError and skipped.
func Discover(root, exclude string, onError func(path string, err error)) []string {
	excludeAbs := ""
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			excludeAbs = abs
		}
	}

	var files []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if onError != nil {
				onError(path, err)
			}

			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if excludeAbs != "" && path != root {
				if abs, absErr := filepath.Abs(path); absErr == nil && abs == excludeAbs {
					return filepath.SkipDir
				}
			}

			return nil
		}

		if IsManifestFile(path) {
			files = append(files, path)
		}

		return nil
	})

	return files
}
