package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"go.uber.org/zap"
)

// handleRoot describes the endpoint
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "yars2rdf",
		"endpoints": map[string]string{
			"convert": "POST /convert?base=IRI",
			"data":    "POST /data?base=IRI",
			"stats":   "GET /stats",
		},
		"accepts": rdf.GetSupportedContentTypes(),
	})
}

// handleConvert converts a YARS body to N-Triples
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed. Use POST")
		return
	}
	if !s.checkContentType(w, r) {
		return
	}

	if negotiateFormat(r.Header.Get("Accept")) != rdf.FormatNTriples {
		s.writeError(w, r, http.StatusNotAcceptable,
			fmt.Sprintf("%v. Available output: %s", rdf.ErrYARSWriteUnsupported, rdf.FormatNTriples.ContentType()))
		return
	}

	var buf bytes.Buffer
	writer := rdf.NewNTriplesWriter(&buf)

	// Output is buffered so a failure midway still gets an error status
	parser := rdf.NewYARSParser(
		rdf.WithYARSHandler(writer),
		rdf.WithYARSLogger(requestLogger(r, s.logger)),
	)
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := parser.Parse(body, s.requestBase(r)); err != nil {
		s.writeParseFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", writer.Format().ContentType()+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes()) // #nosec G104 - client went away
}

// handleDataUpload parses a YARS body and inserts its triples in one batch
func (s *Server) handleDataUpload(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed. Use POST")
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		s.writeError(w, r, http.StatusBadRequest, "Missing Content-Type header")
		return
	}

	parser, err := rdf.NewParser(contentType)
	if err != nil {
		s.writeError(w, r, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type: %s. Supported types: %v", contentType, rdf.GetSupportedContentTypes()))
		return
	}

	startTime := time.Now()
	triples, err := parser.Parse(http.MaxBytesReader(w, r.Body, s.maxBodyBytes), s.requestBase(r))
	if err != nil {
		s.writeParseFailure(w, r, err)
		return
	}

	if err := s.store.InsertTriplesBatch(triples); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("Insert error: %v", err))
		return
	}

	duration := time.Since(startTime)
	requestLogger(r, s.logger).Info("loaded triples",
		zap.Int("triples", len(triples)),
		zap.Duration("duration", duration),
	)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"statistics": map[string]any{
			"triplesInserted": len(triples),
			"durationMs":      duration.Milliseconds(),
		},
	})
}

// handleStats reports the number of stored triples
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed. Use GET")
		return
	}

	count, err := s.store.Count()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("Count error: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"triples": count})
}

// checkContentType rejects requests that are not YARS documents
func (s *Server) checkContentType(w http.ResponseWriter, r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		s.writeError(w, r, http.StatusBadRequest, "Missing Content-Type header")
		return false
	}
	if rdf.FormatForMIMEType(contentType) != rdf.FormatYARS {
		s.writeError(w, r, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type: %s. Supported types: %v", contentType, rdf.GetSupportedContentTypes()))
		return false
	}
	return true
}

func (s *Server) requestBase(r *http.Request) string {
	if base := r.URL.Query().Get("base"); base != "" {
		return base
	}
	return s.baseIRI
}

// writeParseFailure maps a parse failure to a status code
func (s *Server) writeParseFailure(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.writeError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, rdf.ErrInvalidBaseIRI), errors.Is(err, rdf.ErrEmptyBaseIRI):
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid base: %v", err))
	default:
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Parse error: %v", err))
	}
}
