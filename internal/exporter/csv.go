package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"econlab/internal/regression"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewCSVWriter creates a writer that resolves relative paths against baseDir.
func NewCSVWriter(baseDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Write(file, options)
}

// Write encodes options to any writer. Headers and the BOM are skipped in
// append mode.
func Write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix && !options.Append {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SeriesOptions builds the observed/fitted/residual table of a model.
func SeriesOptions(model *regression.FittedModel) WriteOptions {
	observed := model.Response()
	fitted := model.FittedValues()
	resid := model.Residuals()
	records := make([][]string, len(observed))
	for i := range observed {
		records[i] = []string{
			formatInt(int64(i + 1)),
			formatFloat(observed[i]),
			formatFloat(fitted[i]),
			formatFloat(resid[i]),
		}
	}
	return WriteOptions{
		Headers:   []string{"observation", "observed", "fitted", "residual"},
		Records:   records,
		BOMPrefix: true,
	}
}

// WriteSeries exports the in-sample series of a fitted model.
func (w *CSVWriter) WriteSeries(filePath string, model *regression.FittedModel) error {
	return w.WriteCSV(filePath, SeriesOptions(model))
}

// CoefficientOptions builds the coefficient inference table of a model.
func CoefficientOptions(model *regression.FittedModel) WriteOptions {
	names := model.Names()
	coef := model.Coefficients()
	se := model.StdErrors()
	tstat := model.TStats()
	pval := model.PValues()
	lo, hi := model.ConfidenceIntervals()
	records := make([][]string, len(names))
	for i, name := range names {
		records[i] = []string{
			name,
			formatFloat(coef[i]),
			formatFloat(se[i]),
			formatFloat(tstat[i]),
			formatFloat(pval[i]),
			formatFloat(lo[i]),
			formatFloat(hi[i]),
		}
	}
	return WriteOptions{
		Headers:   []string{"term", "coef", "std_err", "t", "p_value", "ci_low", "ci_high"},
		Records:   records,
		BOMPrefix: true,
	}
}

// resolvePath resolves a relative path against the base directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
