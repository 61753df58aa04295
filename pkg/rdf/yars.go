package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// YARS line syntax:
//
//	node-line      := "(" node-id "{v:'" value "'})"
//	relation-line  := "(" subject-id ")-[" predicate "]->(" object-id ")"
const (
	yarsLineOpen      = "("
	yarsLineClose     = ")"
	yarsNodeClose     = "})"
	yarsNodeCloseLen  = 3 // closing quote, '}' and ')'
	yarsValueSep      = "{v:'"
	yarsPredicateOpen = ")-["
	yarsObjectOpen    = "]->("
)

// YARSLineKind is the syntactic class of one YARS input line.
type YARSLineKind int

const (
	YARSUnrecognizedLine YARSLineKind = iota
	YARSNodeLine
	YARSRelationLine
)

func (k YARSLineKind) String() string {
	switch k {
	case YARSNodeLine:
		return "node"
	case YARSRelationLine:
		return "relation"
	default:
		return "unrecognized"
	}
}

// ClassifyYARSLine decides the kind of a line from its prefix and suffix only.
func ClassifyYARSLine(line string) YARSLineKind {
	if !strings.HasPrefix(line, yarsLineOpen) {
		return YARSUnrecognizedLine
	}
	if strings.HasSuffix(line, yarsNodeClose) {
		return YARSNodeLine
	}
	if strings.HasSuffix(line, yarsLineClose) {
		return YARSRelationLine
	}
	return YARSUnrecognizedLine
}

// NodeTable maps node identifiers to their raw values for one document.
// Later definitions of the same identifier replace earlier ones.
type NodeTable struct {
	values map[string]string
}

func NewNodeTable() *NodeTable {
	return &NodeTable{values: make(map[string]string)}
}

func (t *NodeTable) Define(id, raw string) {
	t.values[id] = raw
}

func (t *NodeTable) Lookup(id string) (string, bool) {
	raw, ok := t.values[id]
	return raw, ok
}

func (t *NodeTable) Len() int {
	return len(t.values)
}

// splitYARSNode returns the identifier and raw value of a node line. Only the
// first "{v:'" separates the two; anything after it belongs to the value.
func splitYARSNode(line string) (id, raw string, err error) {
	if len(line) < len(yarsLineOpen)+yarsNodeCloseLen {
		return "", "", ErrMalformedNode
	}
	body := line[len(yarsLineOpen) : len(line)-yarsNodeCloseLen]
	id, raw, found := strings.Cut(body, yarsValueSep)
	if !found {
		return "", "", ErrMalformedNode
	}
	return id, raw, nil
}

// splitYARSRelation returns the subject id, predicate text and object id of a
// relation line. Each separator must occur exactly once and in order, and the
// object id must not be empty.
func splitYARSRelation(line string) (subjectID, predicate, objectID string, err error) {
	body := line[len(yarsLineOpen) : len(line)-len(yarsLineClose)]

	subjectID, rest, found := strings.Cut(body, yarsPredicateOpen)
	if !found {
		return "", "", "", ErrMalformedRelation
	}
	predicate, objectID, found = strings.Cut(rest, yarsObjectOpen)
	if !found || objectID == "" {
		return "", "", "", ErrMalformedRelation
	}
	if strings.Contains(subjectID, yarsObjectOpen) ||
		strings.Contains(predicate, yarsPredicateOpen) ||
		strings.Contains(objectID, yarsPredicateOpen) ||
		strings.Contains(objectID, yarsObjectOpen) {
		return "", "", "", ErrMalformedRelation
	}
	return subjectID, predicate, objectID, nil
}

// stripBrackets drops the first and last character of a bracketed reference.
func stripBrackets(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	return raw[1 : len(raw)-1], true
}

// YARSParser converts YARS documents into RDF triples.
//
// A parser may be shared, but Parse calls on the same instance are
// serialized. Each call uses its own NodeTable.
type YARSParser struct {
	mu      sync.Mutex
	handler TripleHandler
	logger  *zap.Logger
}

// YARSOption configures a YARSParser.
type YARSOption func(*YARSParser)

// WithYARSHandler sets the handler that receives parsed triples.
func WithYARSHandler(h TripleHandler) YARSOption {
	return func(p *YARSParser) {
		p.handler = h
	}
}

// WithYARSLogger sets the logger used for debug output.
func WithYARSLogger(logger *zap.Logger) YARSOption {
	return func(p *YARSParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewYARSParser(opts ...YARSOption) *YARSParser {
	p := &YARSParser{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseString parses an in-memory YARS document.
func (p *YARSParser) ParseString(input, baseIRI string) error {
	return p.Parse(strings.NewReader(input), baseIRI)
}

// Parse reads UTF-8 YARS text from reader, resolving relative IRIs against
// baseIRI, and reports every triple to the handler in input order.
//
// Lines that are neither node nor relation definitions are skipped. The
// first parse error, read error or handler error stops the parse; triples
// already reported are not retracted.
func (p *YARSParser) Parse(reader io.Reader, baseIRI string) error {
	if reader == nil {
		return ErrNilReader
	}
	base, err := parseBaseIRI(baseIRI)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := &yarsSession{
		base:    base,
		table:   NewNodeTable(),
		handler: p.handler,
		logger:  p.logger,
	}

	decoded := transform.NewReader(reader, unicode.UTF8BOM.NewDecoder())
	return s.run(newLineReader(decoded))
}

// yarsSession holds the state of one Parse call.
type yarsSession struct {
	base    *baseIRI
	table   *NodeTable
	handler TripleHandler
	logger  *zap.Logger

	lineNo    int
	relations int
	skipped   int
}

func (s *yarsSession) run(lines *lineReader) error {
	if s.handler != nil {
		if err := s.handler.StartRDF(); err != nil {
			return &HandlerError{Err: err}
		}
	}

	for {
		line, err := lines.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading input at line %d: %w", s.lineNo+1, err)
		}
		s.lineNo++

		if err := s.processLine(line); err != nil {
			return err
		}
	}

	s.logger.Debug("parsed YARS document",
		zap.Int("lines", s.lineNo),
		zap.Int("nodes", s.table.Len()),
		zap.Int("relations", s.relations),
		zap.Int("skipped", s.skipped),
	)

	if s.handler != nil {
		if err := s.handler.EndRDF(); err != nil {
			return &HandlerError{Err: err}
		}
	}
	return nil
}

func (s *yarsSession) processLine(line string) error {
	switch ClassifyYARSLine(line) {
	case YARSNodeLine:
		id, raw, err := splitYARSNode(line)
		if err != nil {
			return s.lineError(line, "", err)
		}
		s.table.Define(id, raw)
		return nil

	case YARSRelationLine:
		triple, err := s.resolveRelation(line)
		if err != nil {
			return err
		}
		s.relations++
		if s.handler != nil {
			if err := s.handler.HandleTriple(triple); err != nil {
				return &HandlerError{Err: err}
			}
		}
		return nil

	default:
		s.skipped++
		if line != "" {
			s.logger.Debug("skipping unrecognized line", zap.Int("line", s.lineNo))
		}
		return nil
	}
}

func (s *yarsSession) resolveRelation(line string) (*Triple, error) {
	subjectID, predicateText, objectID, err := splitYARSRelation(line)
	if err != nil {
		return nil, s.lineError(line, "", err)
	}

	// Subject: always a bracketed IRI reference
	raw, ok := s.table.Lookup(subjectID)
	if !ok {
		return nil, s.lineError(line, subjectID, ErrUnresolvedReference)
	}
	subjectRef, ok := stripBrackets(raw)
	if !ok {
		return nil, s.lineError(line, subjectID, ErrInvalidIRI)
	}
	subjectIRI := s.base.resolve(subjectRef)

	// Predicate: taken from the line itself, brackets optional
	predicateRef := predicateText
	if strings.HasPrefix(predicateText, "<") && strings.HasSuffix(predicateText, ">") {
		predicateRef, _ = stripBrackets(predicateText)
	}
	predicateIRI := s.base.resolve(predicateRef)

	// Object: IRI when bracketed, otherwise the raw value as a plain literal
	raw, ok = s.table.Lookup(objectID)
	if !ok {
		return nil, s.lineError(line, objectID, ErrUnresolvedReference)
	}
	var object Term
	if strings.HasPrefix(raw, "<") {
		objectRef, ok := stripBrackets(raw)
		if !ok {
			return nil, s.lineError(line, objectID, ErrInvalidIRI)
		}
		object = NewNamedNode(s.base.resolve(objectRef))
	} else {
		object = NewLiteral(raw)
	}

	return NewTriple(NewNamedNode(subjectIRI), NewNamedNode(predicateIRI), object), nil
}

func (s *yarsSession) lineError(line, nodeID string, err error) error {
	return &ParseError{Line: s.lineNo, Text: line, NodeID: nodeID, Err: err}
}

// lineReader splits text into lines terminated by "\n", "\r" or "\r\n".
// Terminators are not part of the returned line.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next line, or io.EOF once the input is exhausted. A final
// line without a terminator is still returned.
func (lr *lineReader) next() (string, error) {
	var sb strings.Builder
	for {
		b, err := lr.r.ReadByte()
		if errors.Is(err, io.EOF) {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}

		switch b {
		case '\n':
			return sb.String(), nil
		case '\r':
			if next, err := lr.r.Peek(1); err == nil && next[0] == '\n' {
				_, _ = lr.r.Discard(1)
			}
			return sb.String(), nil
		default:
			sb.WriteByte(b)
		}
	}
}
