package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderStartsWithBOM(t *testing.T) {
	payload, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Student", "Status"},
		Rows: []map[string]string{
			{"Student": "Aiko Tanaka", "Status": "PRESENT"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, utf8BOM))

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(payload, utf8BOM)))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Student", "Status"}, records[0])
	assert.Equal(t, []string{"Aiko Tanaka", "PRESENT"}, records[1])
}

func TestCSVRenderKeepsHeaderOrderForSparseRows(t *testing.T) {
	payload, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Student", "Level", "Factors"},
		Rows: []map[string]string{
			{"Student": "Mateo Rossi", "Level": "YELLOW"},
		},
	})
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(payload, utf8BOM)))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Mateo Rossi", "YELLOW", ""}, records[1])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	payload, err := NewPDFExporter().Render(Dataset{
		Headers: []string{"Student", "Status"},
		Rows: []map[string]string{
			{"Student": "Lena Novak", "Status": "LATE"},
		},
	}, "Session Report 2026-03-02")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
