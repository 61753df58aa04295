package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// iriParts holds the five RFC 3986 components of an IRI reference, kept as
// the raw text they were written with.
type iriParts struct {
	scheme    string
	authority string
	path      string
	query     string
	fragment  string

	hasAuthority bool
	hasQuery     bool
	hasFragment  bool
}

// splitIRI breaks ref into components following RFC 3986 appendix B. No
// character is escaped or unescaped.
func splitIRI(ref string) iriParts {
	var p iriParts
	rest := ref

	if i := strings.IndexAny(rest, ":/?#"); i > 0 && rest[i] == ':' && isScheme(rest[:i]) {
		p.scheme, rest = rest[:i], rest[i+1:]
	}
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		p.fragment, p.hasFragment = rest[i+1:], true
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		p.query, p.hasQuery = rest[i+1:], true
		rest = rest[:i]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		p.authority, p.hasAuthority = rest[:end], true
		rest = rest[end:]
	}
	p.path = rest
	return p
}

// isScheme reports whether s is ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )
func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func (p iriParts) String() string {
	var sb strings.Builder
	if p.scheme != "" {
		sb.WriteString(p.scheme)
		sb.WriteByte(':')
	}
	if p.hasAuthority {
		sb.WriteString("//")
		sb.WriteString(p.authority)
	}
	sb.WriteString(p.path)
	if p.hasQuery {
		sb.WriteByte('?')
		sb.WriteString(p.query)
	}
	if p.hasFragment {
		sb.WriteByte('#')
		sb.WriteString(p.fragment)
	}
	return sb.String()
}

// baseIRI is an absolute IRI used to resolve relative references.
type baseIRI struct {
	raw   string
	parts iriParts
}

func parseBaseIRI(raw string) (*baseIRI, error) {
	if raw == "" {
		return nil, ErrEmptyBaseIRI
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidBaseIRI, raw, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w %q: not an absolute IRI", ErrInvalidBaseIRI, raw)
	}
	return &baseIRI{raw: raw, parts: splitIRI(raw)}, nil
}

// resolve returns ref as an absolute IRI (RFC 3986 section 5.2). References
// with a scheme are returned unchanged; everything else is resolved on the
// raw text, so non-ASCII characters, spaces and '%' come out as written.
func (b *baseIRI) resolve(ref string) string {
	r := splitIRI(ref)
	if r.scheme != "" {
		return ref
	}

	base := b.parts
	t := iriParts{
		scheme:      base.scheme,
		fragment:    r.fragment,
		hasFragment: r.hasFragment,
	}

	switch {
	case r.hasAuthority:
		t.authority, t.hasAuthority = r.authority, true
		t.path = removeDotSegments(r.path)
		t.query, t.hasQuery = r.query, r.hasQuery
	case r.path == "":
		t.authority, t.hasAuthority = base.authority, base.hasAuthority
		t.path = base.path
		if r.hasQuery {
			t.query, t.hasQuery = r.query, true
		} else {
			t.query, t.hasQuery = base.query, base.hasQuery
		}
	default:
		t.authority, t.hasAuthority = base.authority, base.hasAuthority
		if strings.HasPrefix(r.path, "/") {
			t.path = removeDotSegments(r.path)
		} else {
			t.path = removeDotSegments(mergePaths(base, r.path))
		}
		t.query, t.hasQuery = r.query, r.hasQuery
	}

	return t.String()
}

func mergePaths(base iriParts, ref string) string {
	if base.hasAuthority && base.path == "" {
		return "/" + ref
	}
	return base.path[:strings.LastIndexByte(base.path, '/')+1] + ref
}

// removeDotSegments implements RFC 3986 section 5.2.4
func removeDotSegments(path string) string {
	in := path
	var out []string

	pop := func() {
		if len(out) > 0 {
			out = out[:len(out)-1]
		}
	}

	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			pop()
		case in == "/..":
			in = "/"
			pop()
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}

// ResolveIRI resolves ref against base.
func ResolveIRI(base, ref string) (string, error) {
	b, err := parseBaseIRI(base)
	if err != nil {
		return "", err
	}
	return b.resolve(ref), nil
}
