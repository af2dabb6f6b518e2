package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp    = "-- +goose Up"
	annotationDown  = "-- +goose Down"
	annotationBegin = "-- +goose StatementBegin"
	annotationEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks migration filenames and goose annotations before
// anything touches a database.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateAnnotations(content); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

// validateAnnotations requires exactly one Up section followed by one Down
// section, with every StatementBegin closed inside its section.
func validateAnnotations(content []byte) error {
	var ups, downs int
	open := false
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case annotationUp:
			if open {
				return fmt.Errorf("%q inside an open statement block", annotationUp)
			}
			if downs > 0 {
				return fmt.Errorf("%q must come before %q", annotationUp, annotationDown)
			}
			ups++
		case annotationDown:
			if open {
				return fmt.Errorf("%q inside an open statement block", annotationDown)
			}
			downs++
		case annotationBegin:
			if open {
				return fmt.Errorf("nested %q", annotationBegin)
			}
			open = true
		case annotationEnd:
			if !open {
				return fmt.Errorf("%q without %q", annotationEnd, annotationBegin)
			}
			open = false
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	switch {
	case ups != 1:
		return fmt.Errorf("expected one %q, found %d", annotationUp, ups)
	case downs != 1:
		return fmt.Errorf("expected one %q, found %d", annotationDown, downs)
	case open:
		return fmt.Errorf("unterminated %q", annotationBegin)
	}
	return nil
}
