package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/xuri/excelize/v2"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// ErrNoSummary is returned by the summary exporters when basic stats were not computed
var ErrNoSummary = errors.New("report has no basic_stats section")

// WriteJSON writes the full report with a two-space indent
func WriteJSON(w io.Writer, r *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// summaryRows are the four fixed rows of the summary export
func summaryRows(stats *models.BasicStats) [][2]string {
	return [][2]string{
		{"Total Messages", strconv.Itoa(stats.TotalMessages)},
		{"Total Words", strconv.Itoa(stats.TotalWords)},
		{"Media Messages", strconv.Itoa(stats.MediaMessages)},
		{"Links Shared", strconv.Itoa(stats.LinksShared)},
	}
}

// WriteCSV writes the Metric,Value summary
func WriteCSV(w io.Writer, r *models.Report) error {
	if r.BasicStats == nil {
		return ErrNoSummary
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	for _, row := range summaryRows(r.BasicStats) {
		if err := cw.Write(row[:]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with Summary, Users, Timeline and Sentiment sheets.
// Sheets for sections that are absent from the report only carry their header row.
func WriteXLSX(w io.Writer, r *models.Report) error {
	if r.BasicStats == nil {
		return ErrNoSummary
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Summary")
	if err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	summary := [][]interface{}{{"Metric", "Value"}}
	for _, row := range summaryRows(r.BasicStats) {
		n, _ := strconv.Atoi(row[1])
		summary = append(summary, []interface{}{row[0], n})
	}
	if err := fillSheet(f, "Summary", summary); err != nil {
		return err
	}

	users := [][]interface{}{{"User", "Messages", "Percent"}}
	if r.BusyUsers != nil {
		for _, u := range r.BusyUsers.Users {
			users = append(users, []interface{}{u.User, u.Messages, u.Percent})
		}
	}
	if err := addSheet(f, "Users", users); err != nil {
		return err
	}

	timeline := [][]interface{}{{"Period", "Year", "Month", "Messages"}}
	if r.Timeline != nil {
		for _, p := range r.Timeline.Monthly {
			timeline = append(timeline, []interface{}{p.Period, p.Year, p.Month, p.Messages})
		}
	}
	if err := addSheet(f, "Timeline", timeline); err != nil {
		return err
	}

	sentiment := [][]interface{}{{"Date", "Positive", "Neutral", "Negative", "Positive Ratio", "Negative Ratio"}}
	if r.Sentiment != nil {
		for _, d := range r.Sentiment.Timeline {
			sentiment = append(sentiment, []interface{}{d.Date, d.Positive, d.Neutral, d.Negative, d.PositiveRatio, d.NegativeRatio})
		}
	}
	if err := addSheet(f, "Sentiment", sentiment); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return fillSheet(f, name, rows)
}

func fillSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// Schema returns the JSON Schema describing models.Report
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&models.Report{})
	schema.Title = "WhatsApp chat analysis report"
	return schema.MarshalJSON()
}
