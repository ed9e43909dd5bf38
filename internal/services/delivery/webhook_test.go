package delivery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulk-payment-backend/internal/report"
)

func TestSendReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(report.ReportPath(dir, "batch_1"),
		[]byte("type_id,valeur_id,devise,montant,nom_complet,statut,error_message\n"), 0o644))

	var filename, contentType, content string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		raw, err := io.ReadAll(file)
		require.NoError(t, err)
		filename = header.Filename
		contentType = header.Header.Get("Content-Type")
		content = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, hook.SendReport(context.Background(), "batch_1"))

	assert.Equal(t, "batch_1.csv", filename)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, content, "type_id,valeur_id")
}

func TestSendReportMissingFile(t *testing.T) {
	hook := NewWebhook("http://unused", t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := hook.SendReport(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSendReportRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(report.ReportPath(dir, "batch_2"), []byte("header\n"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sink unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := hook.SendReport(context.Background(), "batch_2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
