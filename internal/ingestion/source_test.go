package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVRows(t *testing.T) {
	t.Run("MergesIdentityOnSourceID", func(t *testing.T) {
		txPath := writeCSV(t, "transactions.csv",
			"TransactionID,TransactionAmt,ProductCD\n"+
				"1,68.5,W\n"+
				"2,29.0,H\n")
		idPath := writeCSV(t, "identity.csv",
			"TransactionID,id_01,DeviceType\n"+
				"2,-5,mobile\n")

		rows, err := LoadCSVRows(txPath, idPath, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		// Row 1 has no identity match, keeps only transaction fields
		assert.Equal(t, "68.5", rows[0]["TransactionAmt"])
		assert.Empty(t, rows[0]["id_01"])

		// Row 2 merged the identity columns
		assert.Equal(t, "29.0", rows[1]["TransactionAmt"])
		assert.Equal(t, "-5", rows[1]["id_01"])
		assert.Equal(t, "mobile", rows[1]["DeviceType"])
	})

	t.Run("LimitCapsRowCount", func(t *testing.T) {
		txPath := writeCSV(t, "transactions.csv",
			"TransactionID,TransactionAmt\n1,1.0\n2,2.0\n3,3.0\n")

		rows, err := LoadCSVRows(txPath, "", 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "1", rows[0].SourceID())
		assert.Equal(t, "2", rows[1].SourceID())
	})

	t.Run("MissingIdentityFileIsTolerated", func(t *testing.T) {
		txPath := writeCSV(t, "transactions.csv",
			"TransactionID,TransactionAmt\n1,1.0\n")

		rows, err := LoadCSVRows(txPath, filepath.Join(t.TempDir(), "absent.csv"), 0)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("MissingTransactionFileFails", func(t *testing.T) {
		_, err := LoadCSVRows(filepath.Join(t.TempDir(), "absent.csv"), "", 0)
		assert.Error(t, err)
	})

	t.Run("RaggedRowsKeepPresentColumns", func(t *testing.T) {
		txPath := writeCSV(t, "transactions.csv",
			"TransactionID,TransactionAmt,ProductCD\n1,68.5\n")

		rows, err := LoadCSVRows(txPath, "", 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "68.5", rows[0]["TransactionAmt"])
		_, present := rows[0]["ProductCD"]
		assert.False(t, present)
	})
}
