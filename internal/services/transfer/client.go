// Package transfer sends a single payment instruction to the external
// transfer service. The service's own semantics are opaque here: a 2xx
// response settles the row as SUCCESS, anything else as FAILED.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bulk-payment-backend/internal/models"
)

type party struct {
	DisplayName string `json:"displayName,omitempty"`
	IDType      string `json:"idType"`
	IDValue     string `json:"idValue"`
}

type transferRequest struct {
	From              party  `json:"from"`
	To                party  `json:"to"`
	AmountType        string `json:"amountType"`
	Currency          string `json:"currency"`
	Amount            string `json:"amount"`
	TransactionType   string `json:"transactionType"`
	Note              string `json:"note"`
	HomeTransactionID string `json:"homeTransactionId"`
}

// Client posts transfers to the service's /transfers endpoint.
type Client struct {
	baseURL string
	http    *http.Client

	// Payer identity stamped on every outgoing transfer.
	payerName    string
	payerIDType  string
	payerIDValue string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 30 * time.Second},
		payerName:    "Gouvernement Beninois",
		payerIDType:  "MSISDN",
		payerIDValue: "123456789",
	}
}

// Send dispatches one row. Every call carries a fresh homeTransactionId so
// the transfer service can correlate retries at its side; this client never
// retries on its own.
func (c *Client) Send(ctx context.Context, row models.Row) error {
	payload := transferRequest{
		From: party{
			DisplayName: c.payerName,
			IDType:      c.payerIDType,
			IDValue:     c.payerIDValue,
		},
		To: party{
			IDType:  row.TypeID,
			IDValue: row.ValeurID,
		},
		AmountType:        "SEND",
		Currency:          row.Devise,
		Amount:            row.Montant,
		TransactionType:   "TRANSFER",
		Note:              "Paiement de pension a " + row.ValeurID,
		HomeTransactionID: uuid.New().String(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("transfer rejected (%d): %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
