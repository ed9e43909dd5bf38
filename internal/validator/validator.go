// Package validator applies the per-row acceptance rules for payment
// instructions. Validation is pure: no I/O, source order preserved.
package validator

import (
	"strings"

	"github.com/shopspring/decimal"

	"bulk-payment-backend/internal/models"
)

var validTypeIDs = []string{"PERSONAL_ID", "MSISDN"}

var validDevises = []string{"XOF"}

// Refusal pairs a refused row with its joined reason.
type Refusal struct {
	Row    models.Row
	Reason string
}

// Check runs every rule against one row and collects all failures; it never
// short-circuits. An empty reason means the row is accepted.
func Check(row models.Row) (ok bool, reason string) {
	var errs []string

	if row.TypeID == "" || !contains(validTypeIDs, row.TypeID) {
		errs = append(errs, "Le type est invalide")
	}

	if row.ValeurID == "" {
		errs = append(errs, "La valeur est invalide")
	} else if !isDigits(row.ValeurID) {
		errs = append(errs, "La valeur doit être un nombre")
	}

	if row.TypeID == "PERSONAL_ID" && row.ValeurID != "" {
		if len(row.ValeurID) != 10 || !isDigits(row.ValeurID) {
			errs = append(errs, "La valeur doit comporter 10 chiffres")
		}
	}

	if row.Devise == "" {
		errs = append(errs, "La devise est invalide")
	} else if !contains(validDevises, row.Devise) {
		errs = append(errs, "La devise n'est pas autorisée")
	}

	if row.Montant == "" {
		errs = append(errs, "Le montant est invalide")
	} else {
		montant, err := decimal.NewFromString(strings.TrimSpace(row.Montant))
		if err != nil || montant.Sign() <= 0 {
			errs = append(errs, "Le montant doit être un nombre positif")
		}
	}

	if len(errs) > 0 {
		return false, joinErrors(errs)
	}
	return true, ""
}

// Split partitions rows into accepted rows and refusals, both in source order.
func Split(rows []models.Row) (accepted []models.Row, refused []Refusal) {
	for _, row := range rows {
		if ok, reason := Check(row); ok {
			accepted = append(accepted, row)
		} else {
			refused = append(refused, Refusal{Row: row, Reason: reason})
		}
	}
	return accepted, refused
}

// joinErrors joins reasons with "; ", the last one with " et ".
func joinErrors(errs []string) string {
	if len(errs) == 1 {
		return errs[0]
	}
	allButLast := strings.Join(errs[:len(errs)-1], "; ")
	return allButLast + " et " + errs[len(errs)-1]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
