// Package main provides the yars2rdf binary entry point.
// yars2rdf converts YARS property-graph text into RDF triples and can keep
// them in a local triple store.
package main

import (
	"fmt"
	"os"

	"github.com/aleksaelezovic/yars2rdf/internal/config"
	"github.com/aleksaelezovic/yars2rdf/internal/encoding"
	"github.com/aleksaelezovic/yars2rdf/internal/logger"
	"github.com/aleksaelezovic/yars2rdf/internal/storage"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "yars2rdf"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the persistent flags shared by all commands
type options struct {
	baseIRI  string
	dbPath   string
	logLevel string

	cfg *config.Config
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert YARS documents to RDF",
		Long: `yars2rdf reads YARS text, where node lines bind identifiers to IRIs or
literal values and relation lines connect them, and produces RDF triples.

Triples can be written as N-Triples, loaded into a badger-backed triple store
or served over HTTP.

Configuration is read from YARS_* environment variables (and an optional
.env file); flags take precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.baseIRI, "base", "", "Base IRI for relative references (default $YARS_BASE_IRI)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Triple store directory (default $YARS_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		convertCmd(opts),
		loadCmd(opts),
		countCmd(opts),
		dumpCmd(opts),
		serveCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// init loads configuration and the logger, then applies flag overrides
func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base") {
		cfg.BaseIRI = o.baseIRI
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.dbPath
	}
	o.cfg = cfg

	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if o.logLevel != "" {
		if err := logger.SetLevel(o.logLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
		}
	}
	return nil
}

// openStore opens the badger triple store at the configured path
func (o *options) openStore() (*store.TripleStore, error) {
	log := logger.Get()
	badgerStorage, err := storage.NewBadgerStorage(o.cfg.DBPath, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", o.cfg.DBPath, err)
	}
	log.Debug("opened triple store", zap.String("path", o.cfg.DBPath))
	return store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder()), nil
}
