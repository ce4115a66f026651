package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:    "Roster",
		Comments: []string{"Total: 2"},
		Headers:  []string{"Matricula", "Nombre"},
		Rows: []map[string]string{
			{"Matricula": "2023001", "Nombre": "Ana \"La\" Ruiz"},
			{"Matricula": "2023002", "Nombre": "Luis, Jr."},
		},
	}
}

func TestQuotedCSVExporterQuotesEveryField(t *testing.T) {
	out, err := NewQuotedCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	expected := "# Total: 2\n" +
		"\"Matricula\",\"Nombre\"\n" +
		"\"2023001\",\"Ana \"\"La\"\" Ruiz\"\n" +
		"\"2023002\",\"Luis, Jr.\"\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterQuotesOnlyWhenNeeded(t *testing.T) {
	data := sampleDataset()
	data.Comments = nil
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Matricula,Nombre\n2023001,\"Ana \"\"La\"\" Ruiz\"\n2023002,\"Luis, Jr.\"\n", string(out))
}

func TestRenderersRejectUnknownFormat(t *testing.T) {
	_, err := DefaultRenderers().Render(Format("docx"), sampleDataset())
	assert.Error(t, err)
}

func TestXLSXExporterWritesRows(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Matricula", "Nombre"}, rows[1])
	assert.Equal(t, "Luis, Jr.", rows[3][1])
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.True(t, FormatXLSX.Valid())
	assert.False(t, Format("txt").Valid())
}
