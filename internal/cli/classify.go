package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/derisk/internal/config"
	"github.com/cognicore/derisk/internal/logging"
	"github.com/cognicore/derisk/internal/metrics"
	"github.com/cognicore/derisk/pkg/derisk"
	vocabconfig "github.com/cognicore/derisk/pkg/derisk/config"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/store/sqlite"
	"github.com/cognicore/derisk/pkg/derisk/table"
)

type classifyOptions struct {
	candidates  string
	rulebook    string
	targets     string
	out         string
	format      string
	noValue     string
	workers     int
	chunkSize   int
	explain     bool
	store       string
	metricsFile string
}

func newClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a target table and write it with the match columns added",
		Example: "  derisk classify --candidates candidates.csv --rulebook rulebook.csv --targets targets.csv\n" +
			"  derisk classify --candidates vocab.yaml --rulebook vocab.yaml --targets targets.html --format json --explain",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			mergeClassifyFlags(cmd, opts, c.Config)
			return runClassify(cmd.Context(), c.Config, c.Logger, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.candidates, "candidates", "", "derisking candidates (CSV, TSV, HTML or YAML)")
	f.StringVar(&opts.rulebook, "rulebook", "", "rulebook (CSV, TSV, HTML or YAML)")
	f.StringVar(&opts.targets, "targets", "", "target table (CSV, TSV or HTML)")
	f.StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&opts.format, "format", config.DefaultOutputFormat, "output format (csv, json)")
	f.StringVar(&opts.noValue, "no-value", "", "CSV cell text for absent results")
	f.IntVar(&opts.workers, "workers", 0, "classification workers (0 = one per CPU)")
	f.IntVar(&opts.chunkSize, "chunk-size", config.DefaultChunkSize, "records per worker task")
	f.BoolVar(&opts.explain, "explain", false, "add match provenance to JSON output")
	f.StringVar(&opts.store, "store", "", "SQLite database to record the run in")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	return cmd
}

// mergeClassifyFlags copies explicitly set flags over the loaded config.
func mergeClassifyFlags(cmd *cobra.Command, o *classifyOptions, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("candidates") {
		cfg.Input.Candidates = o.candidates
	}
	if f.Changed("rulebook") {
		cfg.Input.Rulebook = o.rulebook
	}
	if f.Changed("targets") {
		cfg.Input.Targets = o.targets
	}
	if f.Changed("out") {
		cfg.Output.Path = o.out
	}
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
	if f.Changed("no-value") {
		cfg.Output.NoValue = o.noValue
	}
	if f.Changed("workers") {
		cfg.Match.Workers = o.workers
	}
	if f.Changed("chunk-size") {
		cfg.Match.ChunkSize = o.chunkSize
	}
	if f.Changed("explain") {
		cfg.Output.Explain = o.explain
	}
	if f.Changed("store") {
		cfg.Store.Path = o.store
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.Textfile = o.metricsFile
	}
}

func runClassify(ctx context.Context, cfg *config.Config, logger logging.Logger, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Input.Targets == "" {
		return fmt.Errorf("--targets is required: %w", internalerr.ErrInvalidInput)
	}
	if cfg.Input.Candidates == "" && cfg.Input.Rulebook == "" {
		return fmt.Errorf("--candidates or --rulebook is required: %w", internalerr.ErrInvalidInput)
	}

	comp, err := (&vocabconfig.Loader{
		CandidatesPath: cfg.Input.Candidates,
		RulebookPath:   cfg.Input.Rulebook,
		Logger:         logger,
	}).Load()
	if err != nil {
		return err
	}

	targets, err := table.Open(cfg.Input.Targets)
	if err != nil {
		return err
	}
	records, err := table.Targets(targets)
	if err != nil {
		return fmt.Errorf("targets %s: %w", cfg.Input.Targets, err)
	}

	opts := derisk.Options{
		Vocabulary: comp.Vocabulary,
		Rulebook:   comp.Rulebook,
		Workers:    cfg.Match.Workers,
		ChunkSize:  cfg.Match.ChunkSize,
		Logger:     logger,
	}
	var rec *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		rec, err = metrics.NewRecorder(metrics.Config{Namespace: cfg.Metrics.Namespace})
		if err != nil {
			return err
		}
		opts.Observer = rec
	}
	engine := derisk.New(opts)

	var results []derisk.Result
	if cfg.Store.Path != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		run, res, err := engine.Run(ctx, st, cfg.Input.Targets, records)
		if err != nil {
			return err
		}
		results = res
		logger.Info("run recorded", logging.String("run", run.ID), logging.String("store", cfg.Store.Path))
	} else {
		results, err = engine.Classify(ctx, records)
		if err != nil {
			return err
		}
	}

	if err := writeResults(cfg.Output, targets, results, stdout); err != nil {
		return err
	}

	if rec != nil {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}
	return nil
}

func writeResults(out config.OutputConfig, targets *table.Table, results []derisk.Result, stdout io.Writer) (err error) {
	w, closeFn, err := openOutput(out.Path, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	switch out.Format {
	case config.FormatJSON:
		return table.WriteJSON(w, targets, results, out.Explain)
	default:
		augmented, err := table.Augment(targets, results, out.NoValue)
		if err != nil {
			return err
		}
		return table.WriteCSV(w, augmented)
	}
}
