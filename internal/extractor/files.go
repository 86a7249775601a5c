package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFiles expands each pattern as a glob and reads every .pdf match.
// A pattern with no glob matches is treated as a literal path. Non-PDF
// names are returned in skipped; the same path is read only once.
func ReadFiles(patterns ...string) (uploads []Upload, skipped []string, err error) {
	seen := make(map[string]struct{})
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			if !strings.HasSuffix(strings.ToLower(m), ".pdf") {
				skipped = append(skipped, m)
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", m, err)
			}
			uploads = append(uploads, Upload{Name: filepath.Base(m), Data: data})
		}
	}
	return uploads, skipped, nil
}
