package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileCSV(t *testing.T) {
	path := writeTemp(t, "source.csv",
		"type_id,valeur_id,devise,montant,nom_complet\n"+
			"PERSONAL_ID,0123456789,XOF,100,Jean Dupont\n"+
			"\n"+
			"MSISDN,22912345678,XOF,250,Awa Diallo\n")

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PERSONAL_ID", rows[0].TypeID)
	assert.Equal(t, "0123456789", rows[0].ValeurID)
	assert.Equal(t, "Jean Dupont", rows[0].NomComplet)
	assert.Equal(t, "22912345678", rows[1].ValeurID)
	assert.Equal(t, "250", rows[1].Montant)
}

func TestReadFileStripsByteOrderMark(t *testing.T) {
	path := writeTemp(t, "source.csv",
		"\xEF\xBB\xBFtype_id,valeur_id,devise,montant,nom_complet\n"+
			"MSISDN,22912345678,XOF,250,Awa Diallo\n")

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MSISDN", rows[0].TypeID)
	assert.Equal(t, "22912345678", rows[0].ValeurID)
}

func TestReadFileReorderedColumns(t *testing.T) {
	path := writeTemp(t, "source.csv",
		"montant,type_id,valeur_id,devise\n"+
			"75,MSISDN,22900000001,XOF\n")

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "75", rows[0].Montant)
	assert.Equal(t, "MSISDN", rows[0].TypeID)
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "source.txt", "whatever")

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReadFileEmptyCSV(t *testing.T) {
	path := writeTemp(t, "source.csv", "")

	_, err := ReadFile(path)
	assert.Error(t, err)
}
