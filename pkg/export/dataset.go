package export

import "fmt"

// Dataset defines tabular export content. Comments are rendered ahead of the
// header row by formats that support them.
type Dataset struct {
	Title    string
	Comments []string
	Headers  []string
	Rows     []map[string]string
}

// Format enumerates supported renderers.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Valid reports whether f has a renderer.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return true
	}
	return false
}

// Renderer converts a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Renderers groups one renderer per format.
type Renderers map[Format]Renderer

// DefaultRenderers wires the built-in CSV, XLSX and PDF renderers.
func DefaultRenderers() Renderers {
	return Renderers{
		FormatCSV:  NewCSVExporter(),
		FormatXLSX: NewXLSXExporter(),
		FormatPDF:  NewPDFExporter(),
	}
}

// Render dispatches to the renderer registered for format.
func (r Renderers) Render(format Format, data Dataset) ([]byte, error) {
	renderer, ok := r[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return renderer.Render(data)
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
