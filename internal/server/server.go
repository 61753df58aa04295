package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes limits the size of uploaded documents
const DefaultMaxBodyBytes = 32 << 20

// Server is the HTTP conversion and loading endpoint
type Server struct {
	store        *store.TripleStore
	addr         string
	baseIRI      string
	maxBodyBytes int64
	logger       *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger used for request logs
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseIRI sets the base used when a request has no base parameter
func WithBaseIRI(base string) Option {
	return func(s *Server) { s.baseIRI = base }
}

// WithMaxBodyBytes caps request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new HTTP server on top of the store
func NewServer(store *store.TripleStore, addr string, opts ...Option) *Server {
	s := &Server{
		store:        store,
		addr:         addr,
		baseIRI:      "http://localhost/",
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request logging applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/data", s.handleDataUpload)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/", s.handleRoot)
	return s.withRequestID(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting YARS endpoint", zap.String("addr", "http://"+s.addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
