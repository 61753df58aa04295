package rdf

// TripleHandler receives the output of a parser. StartRDF is called once
// before the first triple and EndRDF once after the last. Returning an error
// from any method aborts the parse.
type TripleHandler interface {
	StartRDF() error
	HandleTriple(triple *Triple) error
	EndRDF() error
}

// TripleHandlerFunc adapts a function to a TripleHandler with no-op
// start and end notifications.
type TripleHandlerFunc func(triple *Triple) error

func (f TripleHandlerFunc) StartRDF() error { return nil }

func (f TripleHandlerFunc) HandleTriple(triple *Triple) error { return f(triple) }

func (f TripleHandlerFunc) EndRDF() error { return nil }

// TripleCollector accumulates every triple it receives.
type TripleCollector struct {
	Triples []*Triple
	Started bool
	Ended   bool
}

func NewTripleCollector() *TripleCollector {
	return &TripleCollector{}
}

func (c *TripleCollector) StartRDF() error {
	c.Started = true
	return nil
}

func (c *TripleCollector) HandleTriple(triple *Triple) error {
	c.Triples = append(c.Triples, triple)
	return nil
}

func (c *TripleCollector) EndRDF() error {
	c.Ended = true
	return nil
}
