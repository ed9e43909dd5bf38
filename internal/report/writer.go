// Package report owns the two per-job artifacts: the append-only CSV report
// and the atomically swapped JSON meta snapshot. The batch executor is the
// only writer; everything else reads.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bulk-payment-backend/internal/models"
)

// ReportPath returns the report file location for a job.
func ReportPath(dir, jobID string) string {
	return filepath.Join(dir, jobID+".csv")
}

// MetaPath returns the meta snapshot location for a job.
func MetaPath(dir, jobID string) string {
	return filepath.Join(dir, jobID+".meta.json")
}

// Writer appends terminal row outcomes to a job's report file and keeps the
// meta snapshot in sync. Not safe for concurrent use; each job has exactly
// one writer.
type Writer struct {
	dir   string
	jobID string
	file  *os.File
	csv   *csv.Writer
	meta  models.JobMeta
}

// NewWriter creates the report file with its header and persists the initial
// meta snapshot {processed:0, total, processing} before any row work begins.
func NewWriter(dir, jobID string, total int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	file, err := os.Create(ReportPath(dir, jobID))
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}

	w := &Writer{
		dir:   dir,
		jobID: jobID,
		file:  file,
		csv:   csv.NewWriter(file),
		meta: models.JobMeta{
			JobID:  jobID,
			Total:  total,
			Status: models.JobStatusProcessing,
		},
	}

	if err := w.csv.Write(models.ReportHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("write report header: %w", err)
	}
	w.csv.Flush()

	if err := writeMetaAtomic(MetaPath(dir, jobID), w.meta); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// Append writes one terminal row to the report and rewrites the meta
// snapshot with the incremented processed count.
func (w *Writer) Append(row models.Row) error {
	if err := w.csv.Write(row.Record()); err != nil {
		return fmt.Errorf("append report row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush report row: %w", err)
	}

	w.meta.Processed++
	return writeMetaAtomic(MetaPath(w.dir, w.jobID), w.meta)
}

// Finalize marks the job completed in the meta snapshot and closes the
// report file. Idempotent with respect to the snapshot contents.
func (w *Writer) Finalize() error {
	w.meta.Status = models.JobStatusCompleted
	metaErr := writeMetaAtomic(MetaPath(w.dir, w.jobID), w.meta)
	closeErr := w.file.Close()
	if metaErr != nil {
		return metaErr
	}
	return closeErr
}

// Meta returns the current snapshot values.
func (w *Writer) Meta() models.JobMeta { return w.meta }

// writeMetaAtomic writes the snapshot via temp-file-then-rename so a reader
// always observes a complete document.
func writeMetaAtomic(path string, meta models.JobMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write meta temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("swap meta: %w", err)
	}
	return nil
}
