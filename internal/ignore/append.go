package ignore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Append adds pattern to the ignore file in dir, creating the file if needed.
// It returns false when the pattern was already present.
func Append(dir, pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return false, errors.New("ignore pattern must be non-empty and not a comment")
	}
	path := filepath.Join(dir, FileName)
	existing, err := Load(path, SourceRootFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	for _, p := range existing {
		if p.Value == pattern {
			return false, nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if needsNewline(f) {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(pattern + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// needsNewline reports whether a non-empty file lacks a trailing newline.
func needsNewline(f *os.File) bool {
	st, err := f.Stat()
	if err != nil || st.Size() == 0 {
		return false
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, st.Size()-1); err != nil {
		return false
	}
	return buf[0] != '\n'
}
