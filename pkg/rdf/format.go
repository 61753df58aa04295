package rdf

import (
	"path/filepath"
	"strings"
)

// Format describes a serialization the package knows about
type Format struct {
	Name       string
	MIMETypes  []string // first entry is the preferred type
	Extensions []string // including the leading dot
}

// ContentType returns the preferred MIME type of the format
func (f *Format) ContentType() string {
	return f.MIMETypes[0]
}

var (
	FormatYARS = &Format{
		Name:       "YARS",
		MIMETypes:  []string{"text/x-yars", "application/x-yars"},
		Extensions: []string{".yars"},
	}
	FormatNTriples = &Format{
		Name:       "N-Triples",
		MIMETypes:  []string{"application/n-triples", "text/plain"},
		Extensions: []string{".nt"},
	}
)

var formats = []*Format{FormatYARS, FormatNTriples}

// normalizeContentType lowercases a content type and drops parameters like charset
func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

// FormatForMIMEType returns the format registered for a content type, or nil
func FormatForMIMEType(contentType string) *Format {
	ct := normalizeContentType(contentType)
	for _, f := range formats {
		for _, m := range f.MIMETypes {
			if m == ct {
				return f
			}
		}
	}
	return nil
}

// FormatForFilename returns the format matching a file extension, or nil
func FormatForFilename(name string) *Format {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	for _, f := range formats {
		for _, e := range f.Extensions {
			if e == ext {
				return f
			}
		}
	}
	return nil
}
