package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulk-payment-backend/internal/models"
)

func TestSendBuildsPayload(t *testing.T) {
	var got transferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transfers", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	row := models.Row{TypeID: "MSISDN", ValeurID: "22912345678", Devise: "XOF", Montant: "100", NomComplet: "Awa Diallo"}

	require.NoError(t, client.Send(context.Background(), row))

	assert.Equal(t, "MSISDN", got.To.IDType)
	assert.Equal(t, "22912345678", got.To.IDValue)
	assert.Equal(t, "XOF", got.Currency)
	assert.Equal(t, "100", got.Amount)
	assert.Equal(t, "SEND", got.AmountType)
	assert.Equal(t, "TRANSFER", got.TransactionType)
	assert.Equal(t, "Paiement de pension a 22912345678", got.Note)
	assert.NotEmpty(t, got.HomeTransactionID)
	assert.Equal(t, "Gouvernement Beninois", got.From.DisplayName)
}

func TestSendUniqueHomeTransactionIDs(t *testing.T) {
	ids := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ids[req.HomeTransactionID] = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	row := models.Row{TypeID: "MSISDN", ValeurID: "22912345678", Devise: "XOF", Montant: "100"}
	require.NoError(t, client.Send(context.Background(), row))
	require.NoError(t, client.Send(context.Background(), row))

	assert.Len(t, ids, 2)
}

func TestSendErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"payee not found"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Send(context.Background(), models.Row{TypeID: "MSISDN", ValeurID: "1", Devise: "XOF", Montant: "1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "payee not found")
}
