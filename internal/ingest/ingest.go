// Package ingest parses uploaded source files into rows. Only the parse
// failure of a whole file is an error; malformed individual lines are
// skipped, matching the tolerant reader used for invoice uploads.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bulk-payment-backend/internal/models"
)

// ErrUnsupported is returned for any extension other than .csv or .xlsx.
var ErrUnsupported = errors.New("ingest: only CSV or XLSX files are accepted")

// ReadFile parses the source file into rows, dispatching on extension.
func ReadFile(path string) ([]models.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, ErrUnsupported
	}
}

func readCSV(path string) ([]models.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read source header: %w", err)
	}
	if len(header) > 0 {
		// Excel exports prefix the file with a UTF-8 BOM, which would glue
		// itself onto the first column name.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed lines
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, models.RowFromFields(header, record))
	}
	return rows, nil
}

func readXLSX(path string) ([]models.Row, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("ingest: workbook has no sheets")
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read workbook rows: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	var rows []models.Row
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, models.RowFromFields(header, record))
	}
	return rows, nil
}

func isBlank(record []string) bool {
	return len(record) == 0 || strings.Join(record, "") == ""
}
