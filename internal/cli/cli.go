// Package cli is jxtract's command surface: subcommand dispatch,
// signal-driven cancellation, and exit-code conventions. Adapted from
// the teacher's internal/cli/cli.go (flag.FlagSet per subcommand,
// os/signal.NotifyContext-driven shutdown, the same exit-code
// vocabulary), re-themed from a Dragonfly-to-Redis migration driver
// into a single-shot journal extraction driver.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"jxtract/internal/config"
	"jxtract/internal/endpoint"
	"jxtract/internal/extractor"
	"jxtract/internal/logger"
	"jxtract/internal/runreport"
	"jxtract/internal/sink"
	"jxtract/internal/state"
)

// Execute dispatches CLI subcommands and returns a process exit code.
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[jxtract] ")

	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "extract":
		return runExtract(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println("jxtract 0.1.0-dev")
		return 0
	default:
		log.Printf("unknown subcommand: %s", args[0])
		printUsage()
		return 2
	}
}

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		inputPath  string
		outputPath string
		format     string
		logLevel   string
		tuningPath string
		statePath  string
		reportPath string
		verbose    bool
		quiet      bool
	)
	fs.StringVar(&inputPath, "i", "-", "Input journal path (bare path, '-' for stdin, or s3://bucket/key)")
	fs.StringVar(&outputPath, "o", "-", "Output path (bare path, '-' for stdout, s3://bucket/key, or *.gz)")
	fs.StringVar(&format, "f", "ndjson", "Output format: ndjson, csv, or parquet")
	fs.StringVar(&logLevel, "l", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&verbose, "v", false, "Verbose: lower the log file's level to debug")
	fs.BoolVar(&quiet, "q", false, "Quiet: suppress console output entirely")
	fs.StringVar(&tuningPath, "c", "", "Optional tuning YAML file (frame ceiling, row group size, rate limit)")
	fs.StringVar(&statePath, "state-file", "", "Optional path to write a live JSON progress snapshot")
	fs.StringVar(&reportPath, "report-file", "", "Optional path to write a post-run JSON manifest")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		log.Printf("failed to parse arguments: %v", err)
		return 2
	}

	outFormat, err := sink.ParseFormat(format)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	opts := extractor.Options{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		Format:        outFormat,
		ProgressEvery: 0,
	}

	if tuningPath != "" {
		tuning, err := config.Load(tuningPath)
		if err != nil {
			log.Printf("failed to load tuning file: %v", err)
			return 2
		}
		opts.FrameCeiling = tuning.FrameCeilingBytes
		opts.RowGroupSize = tuning.RowGroupSize
		opts.RateLimit = tuning.RateLimit
		opts.ProgressEvery = tuning.ProgressEvery
	}

	level := parseLogLevel(logLevel)
	if verbose {
		level = logger.DEBUG
	}
	consoleEnabled := !quiet
	logDir := filepath.Join(os.TempDir(), "jxtract-logs")
	if err := logger.Init(logDir, level, logFilePrefix(inputPath), consoleEnabled); err != nil {
		fmt.Fprintf(os.Stderr, "jxtract: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	var store *state.Store
	if statePath != "" {
		store = state.NewStore(statePath)
		_ = store.Write(state.Snapshot{
			Status:     "starting",
			InputPath:  inputPath,
			OutputPath: outputPath,
			Format:     string(outFormat),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	if !quiet {
		logger.Console("extracting %s -> %s (format=%s)", displayPath(inputPath), displayPath(outputPath), outFormat)
	}

	res, extractErr := extractor.Extract(ctx, opts)
	finished := time.Now()

	if reportPath != "" {
		report := runreport.Report{
			InputPath:   inputPath,
			OutputPath:  outputPath,
			Format:      string(outFormat),
			EventCount:  res.EventCount,
			BytesRead:   res.BytesRead,
			HostCount:   res.DictSizes[0],
			SourceCount: res.DictSizes[1],
			TypeCount:   res.DictSizes[2],
			StartedAt:   started,
			FinishedAt:  finished,
			DurationMS:  finished.Sub(started).Milliseconds(),
		}
		if extractErr != nil {
			report.Error = extractErr.Error()
			report.ErrorAtByte = res.ErrPosition
		}
		if err := runreport.Write(reportPath, report); err != nil {
			logger.Warn("failed to write run report: %v", err)
		}
	}

	if extractErr != nil {
		logger.Error("extraction failed after %d events (byte %d): %v", res.EventCount, res.ErrPosition, extractErr)
		if store != nil {
			_ = store.Write(state.Snapshot{
				Status:      "failed",
				InputPath:   inputPath,
				OutputPath:  outputPath,
				Format:      string(outFormat),
				EventCount:  res.EventCount,
				BytesRead:   res.BytesRead,
				HostCount:   res.DictSizes[0],
				SourceCount: res.DictSizes[1],
				TypeCount:   res.DictSizes[2],
				Message:     extractErr.Error(),
				StartedAt:   started,
			})
		}
		return exitCodeFor(extractErr)
	}

	if store != nil {
		_ = store.Write(state.Snapshot{
			Status:      "done",
			InputPath:   inputPath,
			OutputPath:  outputPath,
			Format:      string(outFormat),
			EventCount:  res.EventCount,
			BytesRead:   res.BytesRead,
			HostCount:   res.DictSizes[0],
			SourceCount: res.DictSizes[1],
			TypeCount:   res.DictSizes[2],
			StartedAt:   started,
		})
	}
	if !quiet {
		logger.Console("done: %d events, %d bytes read, dictionaries host=%d source=%d sourcetype=%d",
			res.EventCount, res.BytesRead, res.DictSizes[0], res.DictSizes[1], res.DictSizes[2])
	}
	return 0
}

// exitCodeFor maps a fatal extraction error onto the exit-code
// vocabulary from spec.md §6: an unsupported -i/-o scheme is a usage
// error (2); a writer-construction failure for the selected format is
// reported as 3 ("missing optional dependency for selected format");
// everything else (decoder or I/O failure) is 1.
func exitCodeFor(err error) int {
	var schemeErr *endpoint.UnsupportedSchemeError
	if errors.As(err, &schemeErr) {
		return 2
	}
	if strings.Contains(err.Error(), "construct writer") {
		return 3
	}
	return 1
}

func printUsage() {
	binary := filepath.Base(os.Args[0])
	fmt.Printf(`jxtract - Splunk journal extractor

Usage:
  %[1]s extract [options]

Options:
  -i PATH           input journal (default "-", stdin; s3://bucket/key for object storage)
  -o PATH           output path (default "-", stdout; ".gz" suffix wraps output in gzip)
  -f FORMAT         ndjson, csv, or parquet (default ndjson)
  -l LEVEL          log level: debug, info, warn, error (default info)
  -v                verbose: debug-level log file
  -q                quiet: no console output
  -c FILE           optional tuning YAML (frameCeilingBytes, rowGroupSize, rateLimit, progressEvery)
  -state-file FILE  optional live JSON progress snapshot
  -report-file FILE optional post-run JSON manifest

Other commands:
  help       Show this help
  version    Show version info

Examples:
  %[1]s extract -i archive.journal.zst -o events.ndjson
  %[1]s extract -i s3://bucket/journals/db_123 -o s3://bucket/out/events.csv.gz -f csv
`, binary)
}

func logFilePrefix(inputPath string) string {
	base := filepath.Base(inputPath)
	if base == "" || base == "-" || base == "." {
		return "jxtract"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "<stdio>"
	}
	return path
}

func parseLogLevel(s string) logger.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
