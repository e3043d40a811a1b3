// Package importer reads word lists from spreadsheets so they can be stored
// as a new leaf theme.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"wordclash/internal/models"
)

// Format is the file type of an import
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
var ErrUnsupportedFormat = errors.New("unsupported import format")

// FormatFromName picks the format from a file name's extension
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Config selects where the words are in the file
type Config struct {
	SourceColumn string // Column letter holding the source text
	TargetColumn string // Column letter holding the translation
	SheetName    string // Sheet to read, the first sheet when empty
	SkipHeader   bool
}

// DefaultConfig reads source from A and target from B, skipping a header row
func DefaultConfig() Config {
	return Config{
		SourceColumn: "A",
		TargetColumn: "B",
		SkipHeader:   true,
	}
}

// SkippedRow is a row that did not yield a word
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result holds the parsed words and the rows that were left out
type Result struct {
	Words     []models.WordInput `json:"words"`
	Processed int                `json:"processed"`
	Skipped   []SkippedRow       `json:"skipped"`
}

// ImportFile parses an xlsx or csv file
func ImportFile(path string, cfg Config) (*Result, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	return ImportReader(file, format, cfg)
}

// ImportReader parses an import from r
func ImportReader(r io.Reader, format Format, cfg Config) (*Result, error) {
	sourceIdx, err := columnIndex(cfg.SourceColumn, "A")
	if err != nil {
		return nil, err
	}
	targetIdx, err := columnIndex(cfg.TargetColumn, "B")
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readExcel(r, cfg.SheetName)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		rowNum := i + 1
		if i == 0 && cfg.SkipHeader {
			continue
		}
		result.Processed++

		source, target := cell(row, sourceIdx), cell(row, targetIdx)
		switch {
		case source == "" && target == "":
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: "empty row"})
		case source == "":
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: "missing source text"})
		case target == "":
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: "missing target text"})
		default:
			result.Words = append(result.Words, models.WordInput{SourceText: source, TargetText: target})
		}
	}

	if len(result.Skipped) > 0 {
		log.WithFields(log.Fields{
			"format":  format,
			"skipped": len(result.Skipped),
			"words":   len(result.Words),
		}).Warn("Import skipped rows")
	}
	return result, nil
}

func readExcel(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

// columnIndex converts a column letter to a zero-based index
func columnIndex(column, fallback string) (int, error) {
	if column == "" {
		column = fallback
	}
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(column))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", column, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
