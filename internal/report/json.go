package report

import (
	"encoding/json"
	"os"
	"time"

	"rightscan/internal/analysis"
)

// jsonReport is the on-disk JSON shape. Catalog and matches are embedded
// whole so the file is a self-contained record of the run.
type jsonReport struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Dataset     jsonDataset            `json:"dataset"`
	Artist      *analysis.ArtistInfo   `json:"artist"`
	Stats       analysis.RunStats      `json:"stats"`
	Catalog     analysis.Catalog       `json:"catalog"`
	Matches     []analysis.MatchRecord `json:"matches"`
}

type jsonDataset struct {
	Path        string `json:"path"`
	TotalRows   int    `json:"total_rows"`
	IndexedRows int    `json:"indexed_rows"`
	SkippedRows int    `json:"skipped_rows"`
}

// WriteJSON writes the full run result as an indented JSON document.
func WriteJSON(result *analysis.Result, path string) error {
	doc := jsonReport{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Artist:      result.Artist,
		Stats:       result.Stats,
		Catalog:     result.Catalog,
		Matches:     result.Matches,
	}
	if result.Dataset != nil {
		doc.Dataset = jsonDataset{
			Path:        result.DatasetPath,
			TotalRows:   result.Dataset.TotalRows,
			IndexedRows: result.Dataset.IndexedRows,
			SkippedRows: result.Dataset.Skips.Total(),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
