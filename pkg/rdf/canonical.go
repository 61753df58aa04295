package rdf

import (
	"fmt"
	"strings"
)

// SerializeTriplesCanonical serializes triples to canonical N-Triples format (C14N)
// Note: Canonical form specifies representation, NOT ordering. Input order is preserved.
func SerializeTriplesCanonical(triples []*Triple) string {
	if len(triples) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(SerializeTripleCanonical(triple))
	}

	return builder.String()
}

// SerializeTripleCanonical serializes one triple as a canonical N-Triples line,
// including the terminating " .\n".
func SerializeTripleCanonical(triple *Triple) string {
	var builder strings.Builder
	builder.WriteString(serializeTermCanonical(triple.Subject))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(triple.Predicate))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(triple.Object))
	builder.WriteString(" .\n")
	return builder.String()
}

// serializeTermCanonical serializes a single RDF term in canonical format
func serializeTermCanonical(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return fmt.Sprintf("<%s>", escapeIRICanonical(t.IRI))
	case *BlankNode:
		return fmt.Sprintf("_:%s", t.ID)
	case *Literal:
		return serializeLiteralCanonical(t)
	default:
		return ""
	}
}

// serializeLiteralCanonical serializes a literal in canonical format
func serializeLiteralCanonical(lit *Literal) string {
	escaped := escapeStringCanonical(lit.Value)

	if lit.Language != "" {
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}

	// Omit xsd:string datatype in canonical format (it's the default)
	if lit.Datatype != nil && lit.Datatype.IRI != XSDString.IRI {
		return fmt.Sprintf(`"%s"^^<%s>`, escaped, escapeIRICanonical(lit.Datatype.IRI))
	}

	return fmt.Sprintf(`"%s"`, escaped)
}

// escapeStringCanonical escapes a string value for canonical N-Triples output
//   - Special named escapes: \t \b \n \r \f \" \\
//   - Other control characters, DEL and U+FFFE/U+FFFF: \uXXXX
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || (r >= 0xFFFE && r <= 0xFFFF) {
				fmt.Fprintf(&builder, `\u%04X`, r)
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}

// escapeIRICanonical escapes the characters an N-Triples IRIREF may not
// contain. YARS values are taken verbatim from the source document, so a
// space or quote inside an IRI has to be written as a UCHAR.
func escapeIRICanonical(iri string) string {
	if strings.IndexFunc(iri, iriNeedsEscape) < 0 {
		return iri
	}

	var builder strings.Builder
	builder.Grow(len(iri) + 8)
	for _, r := range iri {
		if iriNeedsEscape(r) {
			fmt.Fprintf(&builder, `\u%04X`, r)
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func iriNeedsEscape(r rune) bool {
	return r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r)
}
