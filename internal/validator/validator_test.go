package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulk-payment-backend/internal/models"
)

func row(typeID, valeurID, devise, montant string) models.Row {
	return models.Row{TypeID: typeID, ValeurID: valeurID, Devise: devise, Montant: montant, NomComplet: "Jean Dupont"}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		row    models.Row
		ok     bool
		reason string
	}{
		{
			name: "valid msisdn",
			row:  row("MSISDN", "22912345678", "XOF", "100"),
			ok:   true,
		},
		{
			name: "valid personal id",
			row:  row("PERSONAL_ID", "0123456789", "XOF", "100"),
			ok:   true,
		},
		{
			name:   "empty type",
			row:    row("", "22912345678", "XOF", "100"),
			ok:     false,
			reason: "Le type est invalide",
		},
		{
			name:   "unknown type",
			row:    row("IBAN", "22912345678", "XOF", "100"),
			ok:     false,
			reason: "Le type est invalide",
		},
		{
			name:   "empty value",
			row:    row("MSISDN", "", "XOF", "100"),
			ok:     false,
			reason: "La valeur est invalide",
		},
		{
			name:   "non numeric value",
			row:    row("MSISDN", "abc123", "XOF", "100"),
			ok:     false,
			reason: "La valeur doit être un nombre",
		},
		{
			name:   "personal id too short",
			row:    row("PERSONAL_ID", "123", "XOF", "50"),
			ok:     false,
			reason: "La valeur doit comporter 10 chiffres",
		},
		{
			name:   "personal id too long",
			row:    row("PERSONAL_ID", "01234567890", "XOF", "50"),
			ok:     false,
			reason: "La valeur doit comporter 10 chiffres",
		},
		{
			name:   "empty currency",
			row:    row("MSISDN", "22912345678", "", "100"),
			ok:     false,
			reason: "La devise est invalide",
		},
		{
			name:   "unsupported currency",
			row:    row("MSISDN", "22912345678", "EUR", "100"),
			ok:     false,
			reason: "La devise n'est pas autorisée",
		},
		{
			name:   "empty amount",
			row:    row("MSISDN", "22912345678", "XOF", ""),
			ok:     false,
			reason: "Le montant est invalide",
		},
		{
			name:   "non numeric amount",
			row:    row("MSISDN", "22912345678", "XOF", "abc"),
			ok:     false,
			reason: "Le montant doit être un nombre positif",
		},
		{
			name:   "negative amount",
			row:    row("MSISDN", "22912345678", "XOF", "-5"),
			ok:     false,
			reason: "Le montant doit être un nombre positif",
		},
		{
			name:   "zero amount",
			row:    row("MSISDN", "22912345678", "XOF", "0"),
			ok:     false,
			reason: "Le montant doit être un nombre positif",
		},
		{
			name:   "multiple errors joined",
			row:    row("IBAN", "abc", "EUR", "-1"),
			ok:     false,
			reason: "Le type est invalide; La valeur doit être un nombre; La devise n'est pas autorisée et Le montant doit être un nombre positif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Check(tt.row)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSplitPreservesOrder(t *testing.T) {
	rows := []models.Row{
		row("PERSONAL_ID", "0123456789", "XOF", "100"),
		row("MSISDN", "22912345678", "XOF", "-5"),
		row("PERSONAL_ID", "123", "XOF", "50"),
	}

	accepted, refused := Split(rows)

	require.Len(t, accepted, 1)
	require.Len(t, refused, 2)
	assert.Equal(t, "0123456789", accepted[0].ValeurID)
	assert.Equal(t, "22912345678", refused[0].Row.ValeurID)
	assert.Equal(t, "Le montant doit être un nombre positif", refused[0].Reason)
	assert.Equal(t, "123", refused[1].Row.ValeurID)
	assert.Equal(t, "La valeur doit comporter 10 chiffres", refused[1].Reason)
}
