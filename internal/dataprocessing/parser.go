package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"econlab/internal/regression"
)

// Format identifies a supported input file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyInput        = errors.New("input contains no data rows")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrTooManyRows       = errors.New("too many rows")
)

// ParseOptions tunes parsing. Zero values select defaults.
type ParseOptions struct {
	// Sheet selects a workbook sheet; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows; 0 means unlimited.
	MaxRows int
}

// FormatFromName infers the format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".dta":
		return "", fmt.Errorf("%w: Stata .dta files are not supported, export to CSV or XLSX", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ParseFile reads a dataset from disk, choosing the parser by extension.
func ParseFile(path string, opts ParseOptions) (*regression.Dataset, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Parse(f, format, opts)
}

// Parse reads a dataset in the given format.
func Parse(r io.Reader, format Format, opts ParseOptions) (*regression.Dataset, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readWorkbook(r, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records, opts.MaxRows)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readWorkbook(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyInput
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// fromRecords converts a header row plus string cells into a dataset.
// Fully blank rows are skipped; any other blank or non-numeric cell fails.
func fromRecords(records [][]string, maxRows int) (*regression.Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if isBlank(rec) {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}
		row := make([]float64, len(header))
		for j, name := range header {
			cell := ""
			if j < len(rec) {
				cell = strings.TrimSpace(rec[j])
			}
			if cell == "" {
				return nil, fmt.Errorf("%w: row %d column %q is empty", ErrInvalidCell, line, name)
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %q is not numeric", ErrInvalidCell, line, name, cell)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	ds, err := regression.NewDataset(header, rows)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return ds, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
