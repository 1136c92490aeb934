package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hanpama/hwptext"
	"github.com/hanpama/hwptext/internal/config"
	"github.com/hanpama/hwptext/internal/report"
)

const (
	exitOK      = 0
	exitError   = 1
	exitMissing = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	keywords    string
	json        bool
	summary     bool
	output      string
	failMissing bool
	format      string
	strict      bool
	jobs        int
	config      string
	verbose     bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hwpcat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hwpcat [flags] <hwp-file>...\n")
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.keywords, "keywords", "", "comma separated keywords to look for")
	fs.BoolVar(&opts.json, "json", false, "write the result as JSON")
	fs.BoolVar(&opts.summary, "summary", false, "write statistics and keyword status instead of text")
	fs.StringVar(&opts.output, "o", "", "write output to `file` instead of stdout")
	fs.BoolVar(&opts.failMissing, "fail-missing", false, "exit with status 2 when a keyword is missing")
	fs.StringVar(&opts.format, "format", "", "force the input format (hwp or hwpx)")
	fs.BoolVar(&opts.strict, "strict", false, "read paragraph text records only")
	fs.IntVar(&opts.jobs, "j", 0, "number of files extracted in parallel")
	fs.StringVar(&opts.config, "config", "", "YAML policy `file`")
	fs.BoolVar(&opts.verbose, "v", false, "log debug messages")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return exitError
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}
	applyFlags(fs, &opts, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	logger := cfg.Logger(stderr)
	ex := hwptext.New(cfg.Extractor(logger))

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating output: %v\n", err)
			return exitError
		}
		defer f.Close()
		out = f
	}

	files := fs.Args()
	if len(files) == 1 {
		return runOne(ctx, ex, cfg, &opts, files[0], out, stderr)
	}
	return runBatch(ctx, ex, cfg, &opts, files, out, stderr, logger)
}

// applyFlags overrides the loaded policy with flags given on the command line.
func applyFlags(fs *flag.FlagSet, opts *options, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "keywords":
			cfg.Keywords = config.SplitKeywords(opts.keywords)
		case "fail-missing":
			cfg.FailMissing = opts.failMissing
		case "format":
			cfg.Format = opts.format
		case "strict":
			cfg.Strict = opts.strict
		case "j":
			cfg.Concurrency = opts.jobs
		case "v":
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
}

func runOne(ctx context.Context, ex *hwptext.Extractor, cfg *config.Config, opts *options, path string, out, stderr io.Writer) int {
	res, err := ex.ExtractFileAs(ctx, path, hwptext.Format(cfg.Format), cfg.Keywords)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
		return exitError
	}

	switch {
	case opts.json:
		err = report.JSON(out, res)
	case opts.summary:
		err = report.Summary(out, path, res)
	default:
		err = report.Text(out, res)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitError
	}

	if cfg.FailMissing && !res.Passed() {
		return exitMissing
	}
	return exitOK
}

type batchEntry struct {
	Path   string          `json:"path"`
	Result *hwptext.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runBatch(ctx context.Context, ex *hwptext.Extractor, cfg *config.Config, opts *options, files []string, out, stderr io.Writer, logger *slog.Logger) int {
	results := ex.ExtractFilesAs(ctx, files, hwptext.Format(cfg.Format), cfg.Keywords)

	code := exitOK
	for _, fr := range results {
		switch {
		case fr.Err != nil:
			code = exitError
		case cfg.FailMissing && !fr.Result.Passed() && code == exitOK:
			code = exitMissing
		}
	}

	var err error
	switch {
	case opts.json:
		entries := make([]batchEntry, len(results))
		for i, fr := range results {
			entries[i] = batchEntry{Path: fr.Path, Result: fr.Result}
			if fr.Err != nil {
				entries[i].Error = fr.Err.Error()
			}
		}
		err = report.JSON(out, entries)
	case opts.summary:
		err = report.Batch(out, results)
	default:
		for _, fr := range results {
			if fr.Err != nil {
				fmt.Fprintf(stderr, "Error reading %s: %v\n", fr.Path, fr.Err)
				continue
			}
			if _, err = fmt.Fprintf(out, "==> %s <==\n", fr.Path); err != nil {
				break
			}
			if err = report.Text(out, fr.Result); err != nil {
				break
			}
		}
	}
	if err != nil {
		logger.Error("writing output", "err", err)
		return exitError
	}
	return code
}
