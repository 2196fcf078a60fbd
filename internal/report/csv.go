package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"rightscan/internal/analysis"
)

var csvHeader = []string{
	"track_name", "album_name", "album_type", "release_date",
	"track_number", "duration_ms", "explicit", "popularity",
	"row_id", "track_id", "code1", "isrc",
}

// WriteCSV writes the match list as CSV, one merged record per row.
func WriteCSV(result *analysis.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, m := range result.Matches {
		row := []string{
			m.TrackName, m.AlbumName, m.AlbumType, m.ReleaseDate,
			strconv.Itoa(m.TrackNumber), strconv.Itoa(m.DurationMS),
			strconv.FormatBool(m.Explicit), strconv.Itoa(m.Popularity),
			m.RowID, m.TrackID, m.Code, m.ISRC,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
