package tools

import "path/filepath"

// sourceName normalizes a document path into the source key sections are
// stored under. Using the base name means reloading the same file from a
// different working directory still replaces its earlier sections.
func sourceName(path string) string {
	return filepath.Base(path)
}
