package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	quoteAll bool
}

// NewCSVExporter builds a CSV exporter that quotes only when needed.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// NewQuotedCSVExporter builds a CSV exporter that wraps every field in double
// quotes, doubling embedded quotes.
func NewQuotedCSVExporter() *CSVExporter {
	return &CSVExporter{quoteAll: true}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	for _, comment := range data.Comments {
		buf.WriteString("# ")
		buf.WriteString(strings.ReplaceAll(comment, "\n", " "))
		buf.WriteByte('\n')
	}
	if e.quoteAll {
		writeQuoted(buf, data.Headers)
		for _, row := range data.Rows {
			writeQuoted(buf, data.record(row))
		}
		return buf.Bytes(), nil
	}

	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// encoding/csv has no always-quote mode.
func writeQuoted(buf *bytes.Buffer, record []string) {
	for i, field := range record {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
