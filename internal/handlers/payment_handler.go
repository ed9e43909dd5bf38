package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bulk-payment-backend/internal/ingest"
	"bulk-payment-backend/internal/models"
	"bulk-payment-backend/internal/progress"
	"bulk-payment-backend/internal/report"
	"bulk-payment-backend/internal/services/batch"
	"bulk-payment-backend/internal/services/reconciler"
)

// PaymentHandler serves the job lifecycle endpoints: submission, status,
// paginated results, the SSE stream, report delivery and artifact deletion.
type PaymentHandler struct {
	reportsDir string
	uploadsDir string
	pageSize   int
	executor   *batch.Executor
	events     *progress.Channel
	store      reconciler.Store
	sink       reconciler.ReportSink
	log        *slog.Logger
}

func NewPaymentHandler(
	reportsDir, uploadsDir string,
	pageSize int,
	executor *batch.Executor,
	events *progress.Channel,
	store reconciler.Store,
	sink reconciler.ReportSink,
	log *slog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		reportsDir: reportsDir,
		uploadsDir: uploadsDir,
		pageSize:   pageSize,
		executor:   executor,
		events:     events,
		store:      store,
		sink:       sink,
		log:        log,
	}
}

// Initiate accepts the uploaded source file, parses it synchronously so a
// broken file fails the submission, then starts the job in the background
// and returns immediately with the job id.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only CSV or XLSX files are accepted"})
		return
	}

	savedPath := filepath.Join(h.uploadsDir, fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, savedPath); err != nil {
		h.log.Error("could not save uploaded file", "filename", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save uploaded file"})
		return
	}

	rows, err := ingest.ReadFile(savedPath)
	if err != nil {
		// No job was started, so nothing else will clean this file up.
		if rmErr := os.Remove(savedPath); rmErr != nil {
			h.log.Warn("could not delete rejected upload", "path", savedPath, "error", rmErr)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The uuid suffix keeps two submissions in the same millisecond from
	// sharing report artifacts.
	jobID := fmt.Sprintf("batch_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])

	rec := &models.UploadRecord{
		ID:        uuid.New().String(),
		Filename:  file.Filename,
		JobID:     jobID,
		Status:    models.UploadStatusInProgress,
		RowCount:  len(rows),
		TotalRows: len(rows),
	}
	if err := h.store.SaveRecord(c.Request.Context(), rec); err != nil {
		h.log.Warn("could not track upload", "jobId", jobID, "error", err)
	}

	// The job outlives this request.
	go h.executor.Run(context.Background(), jobID, rows, savedPath)

	h.log.Info("job accepted", "jobId", jobID, "filename", file.Filename, "rows", len(rows))
	c.JSON(http.StatusAccepted, gin.H{
		"jobId":     jobID,
		"totalRows": len(rows),
		"status":    models.JobStatusProcessing,
	})
}

// Status returns the job's meta snapshot.
func (h *PaymentHandler) Status(c *gin.Context) {
	jobID := c.Param("jobId")
	meta, err := report.ReadStatus(h.reportsDir, jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// Result returns one 1-indexed page of report rows; out-of-range pages yield
// an empty data array.
func (h *PaymentHandler) Result(c *gin.Context) {
	jobID := c.Param("jobId")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	rows, err := report.ReadPage(h.reportsDir, jobID, page, h.pageSize)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":     page,
		"pageSize": h.pageSize,
		"data":     rows,
	})
}

// Stream pushes live progress events over SSE until a terminal event is sent
// or the client disconnects. Missed events are recovered by polling, not
// replayed here.
func (h *PaymentHandler) Stream(c *gin.Context) {
	jobID := c.Param("jobId")

	events := make(chan models.ProgressEvent, 16)
	unsubscribe := h.events.Subscribe(jobID, func(ev models.ProgressEvent) {
		enqueueEvent(events, ev)
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent("message", ev)
			return ev.Status != models.JobStatusCompleted
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// enqueueEvent buffers one event for an SSE client. Progress events are
// dropped when the client is behind (it catches up via polling), but the
// terminal event must get through or the stream never closes, so it evicts
// the oldest buffered event to make room. The subscription handler is the
// only writer.
func enqueueEvent(events chan models.ProgressEvent, ev models.ProgressEvent) {
	select {
	case events <- ev:
		return
	default:
	}
	if ev.Status != models.JobStatusCompleted {
		return
	}
	select {
	case <-events:
	default:
	}
	select {
	case events <- ev:
	default:
	}
}

// SendFile posts the finished report to the configured downstream sink.
func (h *PaymentHandler) SendFile(c *gin.Context) {
	var payload struct {
		JobID string `json:"jobId"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.JobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobId is required"})
		return
	}

	if err := h.sink.SendReport(c.Request.Context(), payload.JobID); err != nil {
		h.log.Error("manual report delivery failed", "jobId", payload.JobID, "error", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes the report and meta artifacts for a job.
func (h *PaymentHandler) Delete(c *gin.Context) {
	jobID := c.Param("jobId")
	removed, err := report.Delete(h.reportsDir, jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobId": jobID, "removed": removed})
}

// Uploads lists every tracked upload record, newest first.
func (h *PaymentHandler) Uploads(c *gin.Context) {
	records, err := h.store.ListRecords(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": records})
}
