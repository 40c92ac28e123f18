package scanner

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const sniffLen = 800

// IsText reports whether data should be scanned: valid UTF-8, no NUL byte in
// the first 800 bytes, and not an obviously binary type by extension or header.
func IsText(path string, data []byte) bool {
	if looksBinary(data) || looksNonTextMIME(path, data) {
		return false
	}
	return utf8.Valid(data)
}

// HasIgnoreFileDirective reports whether data opts out of scanning.
func HasIgnoreFileDirective(data []byte) bool {
	return bytes.Contains(data, []byte(IgnoreFileDirective))
}

func looksBinary(b []byte) bool {
	n := sniffLen
	if len(b) < n {
		n = len(b)
	}
	return bytes.IndexByte(b[:n], 0) >= 0
}

// looksNonTextMIME uses the file extension and a small header sniff to skip
// images, media and archives.
func looksNonTextMIME(path string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			// svg is text
			if !strings.HasPrefix(ct, "image/svg") {
				return true
			}
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	if len(b) >= 4 && string(b[:4]) == "PK\x03\x04" {
		return true
	}
	return false
}
