// Package importer turns authored files into draft topic trees and raw
// source text. It feeds the draft session; validation happens here, so the
// normalizer downstream never has to.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractText reads the textual content of a source file. Plain text and
// markdown are passed through as-is; anything else is rejected.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
