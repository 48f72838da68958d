package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

func generated(t *testing.T) *models.Report {
	t.Helper()
	report, err := newAggregator().Generate(greetingLog(), Request{Scope: models.AllParticipants()})
	require.NoError(t, err)
	return report
}

func TestWriteJSON(t *testing.T) {
	report := generated(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))
	assert.Contains(t, buf.String(), "\n  \"id\": ")

	var decoded models.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, *report.BasicStats, *decoded.BasicStats)
	assert.True(t, report.GeneratedAt.Equal(decoded.GeneratedAt))
}

func TestWriteCSV(t *testing.T) {
	t.Run("summary rows", func(t *testing.T) {
		report := &models.Report{BasicStats: &models.BasicStats{
			TotalMessages: 4,
			TotalWords:    9,
			MediaMessages: 1,
			LinksShared:   2,
		}}

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, report))
		assert.Equal(t, "Metric,Value\nTotal Messages,4\nTotal Words,9\nMedia Messages,1\nLinks Shared,2\n", buf.String())
	})

	t.Run("missing basic stats", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, WriteCSV(&buf, &models.Report{}), ErrNoSummary)
		assert.Zero(t, buf.Len())
	})
}

func TestWriteXLSX(t *testing.T) {
	report := generated(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Users", "Timeline", "Sentiment"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Total Messages", "4"}, rows[1])

	users, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Alice", users[1][0])

	timeline, err := f.GetRows("Timeline")
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, "2024", timeline[1][1])

	assert.ErrorIs(t, WriteXLSX(&bytes.Buffer{}, &models.Report{}), ErrNoSummary)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range append([]string{"id", "scope", "failures"}, AllSections()...) {
		assert.Contains(t, props, key)
	}
}
