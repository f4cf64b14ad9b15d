// Package validation checks dataset files and export destinations before the
// command-line tools touch them.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"econlab/internal/dataprocessing"
)

// ErrFileTooLarge is returned for dataset files above the size limit.
var ErrFileTooLarge = errors.New("file exceeds the size limit")

// FileValidator provides file validation for dataset inputs and exports
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a validator. maxBytes <= 0 disables the size check.
func NewFileValidator(maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()
	return info, nil
}

// ValidateDatasetFile checks that path is a readable CSV or XLSX file within
// the size limit and returns its format.
func (v *FileValidator) ValidateDatasetFile(path string) (dataprocessing.Format, error) {
	format, err := dataprocessing.FormatFromName(path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return "", fmt.Errorf("file %s is a temporary Excel file", path)
	}

	info, err := v.ValidateFile(path)
	if err != nil {
		return "", err
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), v.maxBytes)
	}

	v.logger.Debug("Dataset file validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputPath ensures the directory of path exists and is writable
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}
