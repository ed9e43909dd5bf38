package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"bulk-payment-backend/internal/models"
)

// ErrNotFound is returned when neither artifact exists for a job.
var ErrNotFound = errors.New("report: job not found")

const repairAttempts = 10

// ReadStatus returns the job's meta snapshot. An unparsable snapshot (legacy
// partial write) goes through a progressive repair; if that fails, status is
// reconstructed from the report file's line count.
func ReadStatus(dir, jobID string) (models.JobMeta, error) {
	raw, err := os.ReadFile(MetaPath(dir, jobID))
	if err == nil {
		var meta models.JobMeta
		if jsonErr := json.Unmarshal(raw, &meta); jsonErr == nil {
			return meta, nil
		}
		if meta, ok := repairMeta(raw); ok {
			// Persist the repaired snapshot so the next read is clean.
			_ = writeMetaAtomic(MetaPath(dir, jobID), meta)
			return meta, nil
		}
	}

	// Fall back to the report file: every line is a terminal outcome, so the
	// job it describes is complete.
	n, countErr := countRows(ReportPath(dir, jobID))
	if countErr != nil {
		return models.JobMeta{}, ErrNotFound
	}
	return models.JobMeta{
		JobID:     jobID,
		Processed: n,
		Total:     n,
		Status:    models.JobStatusCompleted,
	}, nil
}

// repairMeta trims trailing bytes until the document parses, bounded to a
// few attempts. Only relevant for files written before snapshots became
// strictly atomic.
func repairMeta(raw []byte) (models.JobMeta, bool) {
	candidate := raw
	if i := bytes.IndexByte(candidate, '{'); i > 0 {
		candidate = candidate[i:]
	}
	for attempt := 0; attempt < repairAttempts && len(candidate) > 2; attempt++ {
		var meta models.JobMeta
		if err := json.Unmarshal(candidate, &meta); err == nil {
			return meta, true
		}
		candidate = candidate[:len(candidate)-1]
	}
	return models.JobMeta{}, false
}

// ReadPage returns one 1-indexed page of report rows. An out-of-range page
// yields an empty slice, not an error; a missing report yields ErrNotFound.
func ReadPage(dir, jobID string, page, pageSize int) ([]models.Row, error) {
	file, err := os.Open(ReportPath(dir, jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []models.Row{}, nil
		}
		return nil, fmt.Errorf("read report header: %w", err)
	}

	from := (page - 1) * pageSize
	to := from + pageSize

	rows := []models.Row{}
	for i := 0; i < to; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read report row: %w", err)
		}
		if i >= from {
			rows = append(rows, models.RowFromFields(header, record))
		}
	}
	return rows, nil
}

// Delete removes both artifacts for a job and reports which paths existed.
func Delete(dir, jobID string) ([]string, error) {
	removed := []string{}
	for _, path := range []string{ReportPath(dir, jobID), MetaPath(dir, jobID)} {
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		} else if !os.IsNotExist(err) {
			return removed, fmt.Errorf("delete artifact: %w", err)
		}
	}
	return removed, nil
}

// countRows counts data lines in the report, header excluded.
func countRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	n := -1 // header
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
