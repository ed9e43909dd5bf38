// Package reconciler recovers an accurate, monotonic view of every tracked
// job by polling the status and result endpoints on a timer, independent of
// any pushed events it may have missed. It owns the upload records and page
// caches, detects completion, and triggers the one downstream delivery.
package reconciler

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"bulk-payment-backend/internal/models"
)

// Defaults matching the backend's result endpoint.
const (
	DefaultInterval = 3 * time.Second
	DefaultPageSize = 10
)

// StatusAPI is the pull side of the backend: scalar status plus one result
// page at a time.
type StatusAPI interface {
	FetchStatus(ctx context.Context, jobID string) (models.JobMeta, error)
	FetchPage(ctx context.Context, jobID string, page int) ([]models.Row, error)
}

// ReportSink receives the finished report exactly once per job.
type ReportSink interface {
	SendReport(ctx context.Context, jobID string) error
}

type Reconciler struct {
	store    Store
	api      StatusAPI
	sink     ReportSink
	interval time.Duration
	pageSize int
	log      *slog.Logger

	// Per-job guard: a tick never starts work for a job while a previous
	// tick's work for that job is still outstanding, so a slow poll cannot
	// double-finalize.
	mu       sync.Mutex
	inFlight map[string]bool
}

func New(store Store, api StatusAPI, sink ReportSink, interval time.Duration, pageSize int, log *slog.Logger) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Reconciler{
		store:    store,
		api:      api,
		sink:     sink,
		interval: interval,
		pageSize: pageSize,
		log:      log,
		inFlight: make(map[string]bool),
	}
}

// Start runs the tick loop until the context is cancelled. The first tick
// fires immediately.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Tick(ctx)
			}
		}
	}()
}

// Tick reconciles every active job once. Any per-job failure is swallowed
// and retried on the next tick; it never surfaces to users.
func (r *Reconciler) Tick(ctx context.Context) {
	records, err := r.store.ListActiveRecords(ctx)
	if err != nil {
		r.log.Warn("could not list tracked uploads", "error", err)
		return
	}
	for _, rec := range records {
		r.reconcile(ctx, rec)
	}
}

func (r *Reconciler) reconcile(ctx context.Context, rec models.UploadRecord) {
	if !r.begin(rec.JobID) {
		return
	}
	defer r.end(rec.JobID)

	cache, err := r.store.GetCache(ctx, rec.JobID)
	if err != nil {
		r.log.Warn("could not load job cache", "jobId", rec.JobID, "error", err)
		return
	}
	if cache.PageSize == 0 {
		cache.PageSize = r.pageSize
	}
	// Seed the total from the upload response until the server confirms it.
	seedTotal(cache, rec.TotalRows)

	serverCompleted := false
	if meta, err := r.api.FetchStatus(ctx, rec.JobID); err == nil {
		seedTotal(cache, meta.Total)
		serverCompleted = meta.Status == models.JobStatusCompleted
	}

	next := cache.LastFetchedPage + 1
	data, err := r.api.FetchPage(ctx, rec.JobID, next)
	if err != nil {
		// Network failure for this tick only; the page cursor did not move.
		_ = r.store.SaveCache(ctx, cache)
		return
	}

	merged, err := mergePage(cache, next, data)
	if err != nil {
		r.log.Warn("could not merge result page", "jobId", rec.JobID, "page", next, "error", err)
		return
	}

	total := cache.TotalRows
	if total > 0 {
		rec.Progress = min(100, int(math.Round(float64(merged)/float64(total)*100)))
		rec.TotalRows = total
		if rec.RowCount == 0 {
			rec.RowCount = total
		}
	} else {
		// Estimate only: capped below 100 because pages attempted is not a
		// confirmation of completion.
		pages := cache.LastFetchedPage
		if pages < 1 {
			pages = 1
		}
		rec.Progress = min(99, int(math.Round(float64(merged)/float64(pages*cache.PageSize)*100)))
	}

	if (total > 0 && merged >= total) || (serverCompleted && cache.ConsecutiveEmpty >= 2) {
		r.finalize(ctx, &rec, cache)
	}

	if err := r.store.SaveCache(ctx, cache); err != nil {
		r.log.Warn("could not save job cache", "jobId", rec.JobID, "error", err)
	}
	if err := r.store.SaveRecord(ctx, &rec); err != nil {
		r.log.Warn("could not save upload record", "jobId", rec.JobID, "error", err)
	}
}

// finalize marks the job locally complete and fires the downstream delivery.
// Idempotent: a job already marked complete is left untouched, so delivery
// happens at most once. A failed delivery is logged and not retried; it does
// not revert completion.
func (r *Reconciler) finalize(ctx context.Context, rec *models.UploadRecord, cache *models.JobCache) {
	if cache.Completed {
		return
	}
	cache.Completed = true
	cache.ConsecutiveEmpty = 0
	rec.Status = models.UploadStatusCompleted
	rec.Progress = 100

	if err := r.sink.SendReport(ctx, rec.JobID); err != nil {
		r.log.Error("report delivery failed", "jobId", rec.JobID, "error", err)
	} else {
		r.log.Info("job reconciled as complete", "jobId", rec.JobID)
	}
}

func (r *Reconciler) begin(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[jobID] {
		return false
	}
	r.inFlight[jobID] = true
	return true
}

func (r *Reconciler) end(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, jobID)
}
