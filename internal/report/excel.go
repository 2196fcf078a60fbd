package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"rightscan/internal/analysis"
)

const (
	sheetCatalog = "Artist Catalog"
	sheetMatches = "Unclaimed Matches"
	sheetSummary = "Summary & Notes"
)

// WriteXLSX writes a three-sheet workbook: the full catalog, the unclaimed
// matches, and a run summary.
func WriteXLSX(result *analysis.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetCatalog)
	if _, err := f.NewSheet(sheetMatches); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}

	if err := writeCatalogSheet(f, result, headerStyle); err != nil {
		return err
	}
	if err := writeMatchesSheet(f, result, headerStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, result, headerStyle); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeHeaderRow(f *excelize.File, sheet string, style int, cols []string) error {
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	end, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// writeCatalogSheet lists every track, newest release first. The sort is
// purely presentational; the run result keeps fetch order.
func writeCatalogSheet(f *excelize.File, result *analysis.Result, style int) error {
	cols := []string{"Track", "Album", "Type", "Release Date", "#", "Duration (ms)", "ISRC", "Explicit", "Popularity"}
	if err := writeHeaderRow(f, sheetCatalog, style, cols); err != nil {
		return err
	}

	sorted := make(analysis.Catalog, len(result.Catalog))
	copy(sorted, result.Catalog)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ReleaseDate != sorted[j].ReleaseDate {
			return sorted[i].ReleaseDate > sorted[j].ReleaseDate
		}
		if sorted[i].AlbumName != sorted[j].AlbumName {
			return sorted[i].AlbumName < sorted[j].AlbumName
		}
		return sorted[i].TrackNumber < sorted[j].TrackNumber
	})

	for i, track := range sorted {
		err := writeRow(f, sheetCatalog, i+2, []any{
			track.TrackName, track.AlbumName, track.AlbumType, track.ReleaseDate,
			track.TrackNumber, track.DurationMS, track.ISRC, track.Explicit, track.Popularity,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeMatchesSheet(f *excelize.File, result *analysis.Result, style int) error {
	if len(result.Matches) == 0 {
		return f.SetCellValue(sheetMatches, "A1", "No unclaimed matches found for this catalog.")
	}

	cols := []string{"Track", "Album", "Release Date", "ISRC", "Row ID", "Track ID", "Code"}
	if err := writeHeaderRow(f, sheetMatches, style, cols); err != nil {
		return err
	}

	for i, m := range result.Matches {
		err := writeRow(f, sheetMatches, i+2, []any{
			m.TrackName, m.AlbumName, m.ReleaseDate, m.ISRC, m.RowID, m.TrackID, m.Code,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *analysis.Result, style int) error {
	if err := writeHeaderRow(f, sheetSummary, style, []string{"Field", "Value"}); err != nil {
		return err
	}

	artist := "unknown"
	if result.Artist != nil {
		artist = result.Artist.Name
	}

	rows := [][]any{
		{"Run ID", result.RunID},
		{"Generated", result.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Artist", artist},
		{"Reference dataset", result.DatasetPath},
		{"Total tracks", result.Stats.TotalTracks},
		{"Tracks with ISRC", result.Stats.TracksWithISRC},
		{"Unclaimed matches", result.Stats.MatchCount},
		{"Match rate", fmt.Sprintf("%.2f%%", result.Stats.MatchRate)},
	}
	if result.Dataset != nil {
		rows = append(rows,
			[]any{"Dataset rows scanned", result.Dataset.TotalRows},
			[]any{"Dataset rows indexed", result.Dataset.IndexedRows},
			[]any{"Dataset rows skipped", result.Dataset.Skips.Total()},
		)
	}

	for i, row := range rows {
		if err := writeRow(f, sheetSummary, i+2, row); err != nil {
			return err
		}
	}
	return nil
}
