package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Letterhead prepends institutional context to rendered documents.
type Letterhead struct {
	Title    string
	Subtitle string
}

// CSVExporter renders Dataset records into CSV bytes with an optional
// letterhead block, matching the department's printed register format.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset, head Letterhead) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if head.Title != "" {
		if err := writer.Write([]string{head.Title}); err != nil {
			return nil, fmt.Errorf("write csv letterhead: %w", err)
		}
		subtitle := head.Subtitle
		if subtitle == "" {
			subtitle = fmt.Sprintf("Generated: %s", time.Now().Format("02/01/2006"))
		}
		if err := writer.Write([]string{subtitle}); err != nil {
			return nil, fmt.Errorf("write csv letterhead: %w", err)
		}
		if err := writer.Write([]string{}); err != nil {
			return nil, fmt.Errorf("write csv letterhead: %w", err)
		}
	}

	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
