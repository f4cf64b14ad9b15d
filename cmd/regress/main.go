// Command regress fits a linear regression from the command line and prints
// the summary table.
//
//	regress -file data.csv -response y -regressors x1,x2 -method OLS_RobustHC3
//	regress -synthetic -samples 200 -features 2 -seed 7 -compare
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"econlab/internal/config"
	"econlab/internal/dataprocessing"
	"econlab/internal/exporter"
	"econlab/internal/infrastructure"
	"econlab/internal/regression"
	"econlab/internal/services"
	"econlab/internal/validation"
)

type options struct {
	file        string
	sheet       string
	synthetic   bool
	samples     int
	features    int
	noise       float64
	seed        int64
	intercept   float64
	response    string
	regressors  string
	method      string
	endogenous  string
	instruments string
	compare     bool
	export      string
	coefExport  string
	logLevel    string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "regress:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	defaults := dataprocessing.DefaultSyntheticConfig()
	opts := &options{}

	fs := flag.NewFlagSet("regress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "CSV or XLSX dataset")
	fs.StringVar(&opts.sheet, "sheet", "", "workbook sheet (defaults to the first)")
	fs.BoolVar(&opts.synthetic, "synthetic", false, "generate a synthetic dataset instead of reading -file")
	fs.IntVar(&opts.samples, "samples", defaults.Samples, "synthetic sample count")
	fs.IntVar(&opts.features, "features", defaults.Features, "synthetic regressor count")
	fs.Float64Var(&opts.noise, "noise", defaults.Noise, "synthetic noise standard deviation")
	fs.Int64Var(&opts.seed, "seed", defaults.Seed, "synthetic random seed")
	fs.Float64Var(&opts.intercept, "intercept", defaults.Intercept, "synthetic intercept")
	fs.StringVar(&opts.response, "response", "", "response column (synthetic default: Y)")
	fs.StringVar(&opts.regressors, "regressors", "", "comma-separated regressor columns (synthetic default: all)")
	fs.StringVar(&opts.method, "method", "OLS", "OLS | OLS_RobustHC3 | GLS | IV2SLS")
	fs.StringVar(&opts.endogenous, "endogenous", "", "endogenous regressor for IV2SLS")
	fs.StringVar(&opts.instruments, "instruments", "", "comma-separated instruments for IV2SLS")
	fs.BoolVar(&opts.compare, "compare", false, "fit every applicable method and print each summary")
	fs.StringVar(&opts.export, "export", "", "write observed/fitted/residual series to this CSV")
	fs.StringVar(&opts.coefExport, "coef-export", "", "write the coefficient table to this CSV")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.synthetic == (opts.file != "") {
		return nil, errors.New("exactly one of -file and -synthetic is required")
	}
	if !opts.synthetic && (opts.response == "" || opts.regressors == "") {
		return nil, errors.New("-response and -regressors are required with -file")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Format = "text"
	logger := infrastructure.NewLogger(cfg.Logging, stderr)

	datasets := services.NewDatasetService(cfg.Regression, nil, logger)
	analysis := services.NewAnalysisService(cfg.Regression, nil, nil, logger)
	files := validation.NewFileValidator(config.MaxUploadBytes, logger)

	for _, out := range []string{opts.export, opts.coefExport} {
		if out == "" {
			continue
		}
		if err := files.ValidateOutputPath(out); err != nil {
			return err
		}
	}

	ds, response, regressors, err := loadDataset(ctx, datasets, files, opts)
	if err != nil {
		return err
	}

	in := services.ModelInput{
		Dataset:     ds,
		Response:    response,
		Regressors:  regressors,
		Endogenous:  opts.endogenous,
		Instruments: splitList(opts.instruments),
	}

	if opts.compare {
		results, err := analysis.Compare(ctx, in, nil)
		if err != nil {
			return err
		}
		for _, c := range results {
			fmt.Fprintf(stdout, "== %s ==\n", c.Method)
			if c.Err != nil {
				fmt.Fprintf(stdout, "error: %v\n\n", c.Err)
				continue
			}
			fmt.Fprintln(stdout, analysis.Report(c.Analysis))
		}
		return nil
	}

	if in.Method, err = regression.ParseMethod(opts.method); err != nil {
		return err
	}
	result, err := analysis.Fit(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, analysis.Report(result))

	writer := exporter.NewCSVWriter("", logger)
	if opts.export != "" {
		if err := writer.WriteSeries(opts.export, result.Model); err != nil {
			return fmt.Errorf("export series: %w", err)
		}
	}
	if opts.coefExport != "" {
		if err := writer.WriteCSV(opts.coefExport, exporter.CoefficientOptions(result.Model)); err != nil {
			return fmt.Errorf("export coefficients: %w", err)
		}
	}
	return nil
}

func loadDataset(ctx context.Context, datasets *services.DatasetService, files *validation.FileValidator, opts *options) (*regression.Dataset, string, []string, error) {
	if opts.synthetic {
		result, err := datasets.Synthetic(ctx, dataprocessing.SyntheticConfig{
			Samples:   opts.samples,
			Features:  opts.features,
			Noise:     opts.noise,
			Seed:      opts.seed,
			Intercept: opts.intercept,
		})
		if err != nil {
			return nil, "", nil, err
		}
		response, regressors := result.Response, result.Regressors
		if opts.response != "" {
			response = opts.response
		}
		if opts.regressors != "" {
			regressors = splitList(opts.regressors)
		}
		return result.Dataset, response, regressors, nil
	}

	if _, err := files.ValidateDatasetFile(opts.file); err != nil {
		return nil, "", nil, err
	}
	f, err := os.Open(opts.file)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	ds, err := datasets.Parse(ctx, opts.file, f, opts.sheet)
	if err != nil {
		return nil, "", nil, err
	}
	return ds, opts.response, splitList(opts.regressors), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
