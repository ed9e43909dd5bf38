// Package delivery posts a finished report file to the configured downstream
// sink. Delivery is fire-once: a failure is reported to the caller and
// logged, never retried, and never reverts a job's completed state.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"bulk-payment-backend/internal/report"
)

// Webhook sends the report CSV as a multipart form upload.
type Webhook struct {
	url        string
	reportsDir string
	http       *http.Client
	log        *slog.Logger
}

func NewWebhook(url, reportsDir string, log *slog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		reportsDir: reportsDir,
		http:       &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// SendReport posts the job's report file to the sink.
func (w *Webhook) SendReport(ctx context.Context, jobID string) error {
	path := report.ReportPath(w.reportsDir, jobID)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open report for delivery: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s.csv"`, jobID))
	header.Set("Content-Type", "text/csv")
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build delivery form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy report into form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close delivery form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("delivery rejected (%d): %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	w.log.Info("report delivered", "jobId", jobID, "status", resp.StatusCode)
	return nil
}
