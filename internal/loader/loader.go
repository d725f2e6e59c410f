package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"researcher/internal/domain"
)

// Supported lists the file extensions Load understands.
var Supported = []string{".pdf", ".md", ".txt"}

// Load reads a single file, or every supported file directly inside a
// directory in name order. PDFs yield one document per page.
func Load(path string) ([]domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsSupported(path) {
			return nil, fmt.Errorf("unsupported file type %q (want one of %s)", filepath.Ext(path), strings.Join(Supported, ", "))
		}
		return loadFile(path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	var docs []domain.Document
	for _, name := range names {
		d, err := loadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, d...)
	}
	return docs, nil
}

// IsSupported reports whether the file extension of name can be loaded.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range Supported {
		if ext == s {
			return true
		}
	}
	return false
}

func loadFile(path string) ([]domain.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []domain.Document{{Source: path, Content: markdownToText(data)}}, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []domain.Document{{Source: path, Content: string(data)}}, nil
	}
}
