// Package taskscan extracts developer task annotations (TODO, FIXME and
// friends) from project source files. It is pure text scanning; nothing is
// executed or modified.
package taskscan

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Annotation is a single task marker found in a source file.
type Annotation struct {
	File    string
	Line    int
	Tag     string
	Message string
	Context string
}

// patterns matches the common comment styles: #, // and /* ... */.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#\s*(TODO|FIXME|NOTE|HACK|XXX):\s*(.+)$`),
	regexp.MustCompile(`(?i)//\s*(TODO|FIXME|NOTE|HACK|XXX):\s*(.+)$`),
	regexp.MustCompile(`(?i)/\*\s*(TODO|FIXME|NOTE|HACK|XXX):\s*(.+?)\s*\*/`),
}

// supportedExtensions limits scanning to source-like files.
var supportedExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".rs":   true,
	".js":   true,
	".ts":   true,
	".jsx":  true,
	".tsx":  true,
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// Scanner walks a project tree collecting annotations.
type Scanner struct {
	root string
}

// NewScanner creates a scanner rooted at the given directory.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Scan walks the tree and returns annotations in file walk order, line
// order within a file. Hidden directories, vendor and node_modules are
// skipped; unreadable files are ignored.
func (s *Scanner) Scan() ([]Annotation, error) {
	var annotations []Annotation

	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != s.root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !supportedExtensions[filepath.Ext(path)] {
			return nil
		}

		found, err := scanFile(path)
		if err != nil {
			return nil
		}
		annotations = append(annotations, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return annotations, nil
}

func scanFile(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var annotations []Annotation
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, p := range patterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			annotations = append(annotations, Annotation{
				File:    path,
				Line:    lineNo,
				Tag:     strings.ToUpper(m[1]),
				Message: strings.TrimSpace(m[2]),
				Context: strings.TrimSpace(line),
			})
			break
		}
	}

	return annotations, scanner.Err()
}

// CountByTag groups a scan result by tag type.
func CountByTag(annotations []Annotation) map[string]int {
	counts := make(map[string]int)
	for _, a := range annotations {
		counts[a.Tag]++
	}
	return counts
}
