// Package batch runs one submitted job to completion: validation, bounded
// concurrent dispatch to the transfer service, durable incremental report
// writes and progress notifications.
package batch

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"bulk-payment-backend/internal/models"
	"bulk-payment-backend/internal/progress"
	"bulk-payment-backend/internal/report"
	"bulk-payment-backend/internal/validator"
)

// DefaultBatchSize bounds the number of concurrent outbound transfer calls.
const DefaultBatchSize = 50

// TransferClient dispatches one accepted row to the external transfer
// service. A nil error settles the row as SUCCESS, any error as FAILED.
type TransferClient interface {
	Send(ctx context.Context, row models.Row) error
}

// Executor owns the job state machine (queued -> processing -> completed).
// A started job always runs to completion; individual row failures never
// abort it.
type Executor struct {
	reportsDir string
	batchSize  int
	transfers  TransferClient
	events     *progress.Channel
	log        *slog.Logger
}

func NewExecutor(reportsDir string, batchSize int, transfers TransferClient, events *progress.Channel, log *slog.Logger) *Executor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Executor{
		reportsDir: reportsDir,
		batchSize:  batchSize,
		transfers:  transfers,
		events:     events,
		log:        log,
	}
}

// Run processes all rows of a job. Intended to be called in its own
// goroutine; the submitting request only waits for parsing, not for this.
// The uploaded source file is removed when the job finishes, on every path.
func (e *Executor) Run(ctx context.Context, jobID string, rows []models.Row, sourcePath string) {
	defer func() {
		if sourcePath == "" {
			return
		}
		if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
			e.log.Warn("could not delete uploaded source file", "jobId", jobID, "error", err)
		}
	}()

	accepted, refused := validator.Split(rows)

	writer, err := report.NewWriter(e.reportsDir, jobID, len(rows))
	if err != nil {
		e.log.Error("could not create report", "jobId", jobID, "error", err)
		return
	}

	var succeeded, failed int
	defer func() {
		if err := writer.Finalize(); err != nil {
			e.log.Error("could not finalize report", "jobId", jobID, "error", err)
		}
		meta := writer.Meta()
		e.publish(models.ProgressEvent{
			JobID:      jobID,
			Processed:  meta.Processed,
			Total:      meta.Total,
			Succeeded:  succeeded,
			Failed:     failed,
			Status:     models.JobStatusCompleted,
			ReportPath: report.ReportPath(e.reportsDir, jobID),
		})
		e.log.Info("job finished",
			"jobId", jobID, "total", meta.Total, "succeeded", succeeded, "failed", failed, "refused", len(refused))
	}()

	// Refused rows go straight to the report; they count toward processed
	// but are never dispatched.
	for _, r := range refused {
		row := r.Row
		row.Statut = models.RowStatusRefused
		row.ErrorMessage = r.Reason
		e.append(writer, jobID, row)
	}

	for start := 0; start < len(accepted); start += e.batchSize {
		end := start + e.batchSize
		if end > len(accepted) {
			end = len(accepted)
		}
		chunk := accepted[start:end]

		// Dispatch the whole batch concurrently and wait for every call to
		// settle before touching the next batch.
		results := make([]error, len(chunk))
		var wg sync.WaitGroup
		for i, row := range chunk {
			wg.Add(1)
			go func(i int, row models.Row) {
				defer wg.Done()
				results[i] = e.transfers.Send(ctx, row)
			}(i, row)
		}
		wg.Wait()

		for i, row := range chunk {
			if results[i] != nil {
				row.Statut = models.RowStatusFailed
				row.ErrorMessage = results[i].Error()
				failed++
			} else {
				row.Statut = models.RowStatusSuccess
				row.ErrorMessage = "Paiement effectué avec succès"
				succeeded++
			}
			e.append(writer, jobID, row)
		}

		meta := writer.Meta()
		e.publish(models.ProgressEvent{
			JobID:     jobID,
			Processed: meta.Processed,
			Total:     meta.Total,
			Succeeded: succeeded,
			Failed:    failed,
			Status:    models.JobStatusProcessing,
		})
	}
}

// append is best-effort: report persistence failures are logged but do not
// stop row processing.
func (e *Executor) append(writer *report.Writer, jobID string, row models.Row) {
	if err := writer.Append(row); err != nil {
		e.log.Error("could not append report row", "jobId", jobID, "error", err)
	}
}

func (e *Executor) publish(ev models.ProgressEvent) {
	if e.events != nil {
		e.events.Publish(ev.JobID, ev)
	}
}
