package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM lets Excel detect the encoding of written files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes report tables under one output directory. Relative
// names resolve against that directory; absolute names are used as is.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{dir: dir, logger: logger}
}

// Write replaces name with headers followed by rows and returns the full
// path. The file is written next to its destination and renamed into
// place, so readers never see a partial table.
func (w *CSVWriter) Write(name string, headers []string, rows [][]string) (string, error) {
	path, err := w.prepare(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, true, headers, rows); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	w.logger.Debug("CSV written", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, nil
}

// Append adds rows to name. A missing or empty file is started with the
// BOM and headers first.
func (w *CSVWriter) Append(name string, headers []string, rows [][]string) (string, error) {
	path, err := w.prepare(name)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}
	fresh := info.Size() == 0
	if !fresh {
		headers = nil
	}

	if err := writeRecords(file, fresh, headers, rows); err != nil {
		return "", err
	}

	w.logger.Debug("CSV appended", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, file.Close()
}

func (w *CSVWriter) prepare(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.dir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return path, nil
}

func writeRecords(out io.Writer, bom bool, headers []string, rows [][]string) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
