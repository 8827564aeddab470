package stats

import (
	"fmt"
	"io"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

const ResultsSheet = "Results"

// ExportFilename slugs title into an xlsx file name.
func ExportFilename(title string) string {
	name := slug.Make(title)
	if name == "" {
		name = "results"
	}
	return name + ".xlsx"
}

/*
ExportResultsXLSX 匯出名次矩陣
  - 第一列: Player + 每場賽事 (名稱 + 日期)
  - 之後每列一位玩家, 未參賽留白
  - FREE 賽事格式為 "名次 (積分)"
*/
func ExportResultsXLSX(w io.Writer, matrix *ResultsMatrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ResultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Player"}
	for _, t := range matrix.Tournaments {
		header = append(header, fmt.Sprintf("%s %s", t.Name, t.Date.Format("2006-01-02")))
	}

	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, player := range matrix.Players {
		row := []interface{}{player.PlayerName}
		for _, t := range matrix.Tournaments {
			row = append(row, formatResult(player.Results, t.ID))
		}

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(ResultsSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func formatResult(results map[string]Result, tournamentID string) interface{} {
	result, exist := results[tournamentID]
	if !exist || result.Place == nil {
		return ""
	}

	if result.Points != nil {
		return fmt.Sprintf("%d (%d)", *result.Place, *result.Points)
	}

	return *result.Place
}
