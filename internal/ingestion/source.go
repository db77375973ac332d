package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadCSVRows reads the batch source: a transaction CSV merged with an
// optional identity CSV on the shared source-id column (left join — rows
// without identity data keep only their transaction fields). At most limit
// rows are returned, preserving file order.
func LoadCSVRows(transactionPath, identityPath string, limit int) ([]SourceRow, error) {
	rows, err := readCSV(transactionPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction file: %w", err)
	}

	if identityPath == "" {
		return rows, nil
	}

	identityRows, err := readCSV(identityPath, 0)
	if err != nil {
		if os.IsNotExist(err) {
			// Identity data is optional in the upstream dataset
			return rows, nil
		}
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	identityByID := make(map[string]SourceRow, len(identityRows))
	for _, row := range identityRows {
		if id := row.SourceID(); id != "" {
			identityByID[id] = row
		}
	}

	for _, row := range rows {
		identity, ok := identityByID[row.SourceID()]
		if !ok {
			continue
		}
		for k, v := range identity {
			if k == SourceIDColumn {
				continue
			}
			row[k] = v
		}
	}

	return rows, nil
}

// readCSV parses a headered CSV file into rows; limit 0 means unbounded
func readCSV(path string, limit int) ([]SourceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Upstream files carry ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header from %s: %w", path, err)
	}

	var rows []SourceRow
	for limit <= 0 || len(rows) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record from %s: %w", path, err)
		}

		row := make(SourceRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
