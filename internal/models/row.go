package models

// Row statuses. A row moves PENDING -> {ACCEPTED,REFUSED} during validation,
// then ACCEPTED -> {SUCCESS,FAILED} once its transfer settles.
const (
	RowStatusPending  = "PENDING"
	RowStatusAccepted = "ACCEPTED"
	RowStatusRefused  = "REFUSED"
	RowStatusSuccess  = "SUCCESS"
	RowStatusFailed   = "FAILED"
)

// ReportHeader is the fixed column order of every report file.
var ReportHeader = []string{
	"type_id", "valeur_id", "devise", "montant", "nom_complet", "statut", "error_message",
}

// Row is one payment instruction plus its accumulated processing outcome.
// Field names follow the report vocabulary (the source files are French).
type Row struct {
	TypeID       string `json:"type_id"`
	ValeurID     string `json:"valeur_id"`
	Devise       string `json:"devise"`
	Montant      string `json:"montant"`
	NomComplet   string `json:"nom_complet"`
	Statut       string `json:"statut"`
	ErrorMessage string `json:"error_message"`
}

// Record returns the row as a CSV record in ReportHeader order.
func (r Row) Record() []string {
	return []string{r.TypeID, r.ValeurID, r.Devise, r.Montant, r.NomComplet, r.Statut, r.ErrorMessage}
}

// RowFromFields builds a Row from a header row and a data record, matching
// columns by name so extra or reordered columns in source files are tolerated.
func RowFromFields(header, record []string) Row {
	var row Row
	for i, name := range header {
		if i >= len(record) {
			break
		}
		val := record[i]
		switch name {
		case "type_id":
			row.TypeID = val
		case "valeur_id":
			row.ValeurID = val
		case "devise":
			row.Devise = val
		case "montant":
			row.Montant = val
		case "nom_complet":
			row.NomComplet = val
		case "statut":
			row.Statut = val
		case "error_message":
			row.ErrorMessage = val
		}
	}
	return row
}
