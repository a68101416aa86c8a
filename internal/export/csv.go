package export

import (
	"bytes"
	"encoding/csv"
)

func generateCSV(columns []Column, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column.Header
	}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			record[i] = formatCell(row[column.Key])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
