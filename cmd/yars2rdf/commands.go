package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleksaelezovic/yars2rdf/internal/logger"
	"github.com/aleksaelezovic/yars2rdf/internal/pipeline"
	"github.com/aleksaelezovic/yars2rdf/internal/server"
	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func sourcesFromArgs(args []string) []pipeline.Source {
	if len(args) == 0 {
		args = []string{"-"}
	}
	sources := make([]pipeline.Source, 0, len(args))
	for _, arg := range args {
		sources = append(sources, pipeline.FileSource(arg))
	}
	return sources
}

// outputFormat picks the serialization for an output path from its
// extension. Standard output and unknown extensions get N-Triples.
func outputFormat(path string) (*rdf.Format, error) {
	format := rdf.FormatNTriples
	if f := rdf.FormatForFilename(path); f != nil {
		format = f
	}
	if format == rdf.FormatYARS {
		return nil, fmt.Errorf("%s: %w", path, rdf.ErrYARSWriteUnsupported)
	}
	return format, nil
}

// openOutput returns the file at path, or standard output for "" and "-"
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path) // #nosec G304 - path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func convertCmd(opts *options) *cobra.Command {
	var (
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert YARS documents to N-Triples",
		Long: `Convert YARS documents to N-Triples. Files are converted concurrently and
written in argument order. With no files, or "-", standard input is read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = opts.cfg.Workers
			}
			if _, err := outputFormat(output); err != nil {
				return err
			}

			converter := pipeline.NewConverter(workers, logger.Get())
			results, err := converter.ConvertAll(cmd.Context(), sourcesFromArgs(args), opts.cfg.BaseIRI)
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			w := bufio.NewWriter(out)
			total := 0
			for _, res := range results {
				if _, err := w.Write(res.NTriples); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				total += res.Triples
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			logger.Get().Info("conversion finished",
				zap.Int("documents", len(results)),
				zap.Int("triples", total),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, N-Triples (default stdout)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversions (default $YARS_WORKERS)")
	return cmd
}

func loadCmd(opts *options) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Load YARS documents into the triple store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("batch-size") {
				batchSize = opts.cfg.BatchSize
			}

			ts, err := opts.openStore()
			if err != nil {
				return err
			}
			defer ts.Close()

			n, err := pipeline.LoadAll(cmd.Context(), ts, sourcesFromArgs(args), opts.cfg.BaseIRI, batchSize, logger.Get())
			if err != nil {
				return fmt.Errorf("load stopped after %d triples: %w", n, err)
			}
			if err := ts.Sync(); err != nil {
				return fmt.Errorf("failed to sync store: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d triples\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Triples per transaction (default $YARS_BATCH_SIZE)")
	return cmd
}

func countCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored triples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := opts.openStore()
			if err != nil {
				return err
			}
			defer ts.Close()

			count, err := ts.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func dumpCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write all stored triples as N-Triples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(output)
			if err != nil {
				return err
			}

			ts, err := opts.openStore()
			if err != nil {
				return err
			}
			defer ts.Close()

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			writer, err := rdf.NewWriter(format.ContentType(), out)
			if err != nil {
				return err
			}
			if err := dumpTriples(ts, writer); err != nil {
				return err
			}
			return out.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, N-Triples (default stdout)")
	return cmd
}

func dumpTriples(ts *store.TripleStore, handler rdf.TripleHandler) error {
	iter, err := ts.Query(store.AllTriples())
	if err != nil {
		return err
	}
	defer iter.Close()

	if err := handler.StartRDF(); err != nil {
		return err
	}
	for iter.Next() {
		triple, err := iter.Triple()
		if err != nil {
			return err
		}
		if err := handler.HandleTriple(triple); err != nil {
			return err
		}
	}
	return handler.EndRDF()
}

func serveCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP conversion endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = opts.cfg.Addr
			}

			ts, err := opts.openStore()
			if err != nil {
				return err
			}
			defer ts.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(ts, addr,
				server.WithLogger(logger.Get()),
				server.WithBaseIRI(opts.cfg.BaseIRI),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $YARS_ADDR)")
	return cmd
}
