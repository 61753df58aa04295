package rdf

import (
	"bufio"
	"fmt"
	"io"
)

// RDFParser is the interface for parsing RDF data in various formats
type RDFParser interface {
	// Parse parses RDF data from a reader and returns triples
	Parse(reader io.Reader, baseIRI string) ([]*Triple, error)

	// ContentType returns the MIME type this parser handles
	ContentType() string
}

// RDFWriter writes the triples it is handed to an underlying stream
type RDFWriter interface {
	TripleHandler

	// Format returns the serialization produced by the writer
	Format() *Format
}

// NewParser creates an RDF parser based on the content type
func NewParser(contentType string) (RDFParser, error) {
	if FormatForMIMEType(contentType) == FormatYARS {
		return &YARSIOParser{}, nil
	}
	return nil, fmt.Errorf("unsupported content type: %s", contentType)
}

// NewWriter creates an RDF writer for the content type on top of w
func NewWriter(contentType string, w io.Writer) (RDFWriter, error) {
	switch FormatForMIMEType(contentType) {
	case FormatNTriples:
		return NewNTriplesWriter(w), nil
	case FormatYARS:
		return NewYARSWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// YARSIOParser parses a whole YARS document into memory
type YARSIOParser struct{}

func (p *YARSIOParser) ContentType() string {
	return FormatYARS.ContentType()
}

func (p *YARSIOParser) Parse(reader io.Reader, baseIRI string) ([]*Triple, error) {
	collector := NewTripleCollector()
	parser := NewYARSParser(WithYARSHandler(collector))
	if err := parser.Parse(reader, baseIRI); err != nil {
		return nil, fmt.Errorf("error parsing YARS: %w", err)
	}
	return collector.Triples, nil
}

// NTriplesWriter streams triples as canonical N-Triples
type NTriplesWriter struct {
	w     *bufio.Writer
	count int
}

func NewNTriplesWriter(w io.Writer) *NTriplesWriter {
	return &NTriplesWriter{w: bufio.NewWriter(w)}
}

func (nw *NTriplesWriter) Format() *Format {
	return FormatNTriples
}

func (nw *NTriplesWriter) StartRDF() error {
	nw.count = 0
	return nil
}

func (nw *NTriplesWriter) HandleTriple(triple *Triple) error {
	if _, err := nw.w.WriteString(SerializeTripleCanonical(triple)); err != nil {
		return fmt.Errorf("error writing triple: %w", err)
	}
	nw.count++
	return nil
}

func (nw *NTriplesWriter) EndRDF() error {
	return nw.w.Flush()
}

// Count returns the number of triples written since StartRDF
func (nw *NTriplesWriter) Count() int {
	return nw.count
}

// YARSWriter has the shape of a writer for the YARS format. Producing YARS
// text from triples is not supported: every triple is rejected.
type YARSWriter struct {
	w io.Writer
}

func NewYARSWriter(w io.Writer) *YARSWriter {
	return &YARSWriter{w: w}
}

func (yw *YARSWriter) Format() *Format {
	return FormatYARS
}

func (yw *YARSWriter) StartRDF() error {
	return nil
}

func (yw *YARSWriter) HandleTriple(*Triple) error {
	return ErrYARSWriteUnsupported
}

func (yw *YARSWriter) EndRDF() error {
	return nil
}

// GetSupportedContentTypes returns the content types NewParser accepts
func GetSupportedContentTypes() []string {
	return append([]string(nil), FormatYARS.MIMETypes...)
}
