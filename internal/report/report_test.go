package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"rightscan/internal/analysis"
	"rightscan/internal/dataset"
	"rightscan/internal/shared"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		RunID:       "run-1234",
		GeneratedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		DatasetPath: "rights.tsv",
		Artist: &analysis.ArtistInfo{
			ID: "artist1", Name: "Linkin Park", Followers: 25000000, Popularity: 88,
		},
		Catalog: analysis.Catalog{
			{TrackID: "t1", TrackName: "Papercut", AlbumName: "Hybrid Theory", AlbumType: "album", ReleaseDate: "2000-10-24", TrackNumber: 1, DurationMS: 184000, ISRC: "USRC17607839"},
			{TrackID: "t2", TrackName: "Numb", AlbumName: "Meteora", AlbumType: "album", ReleaseDate: "2003-03-25", TrackNumber: 1, DurationMS: 185000, ISRC: analysis.ISRCSentinel},
		},
		Matches: []analysis.MatchRecord{{
			TrackName: "Papercut", AlbumName: "Hybrid Theory", ReleaseDate: "2000-10-24",
			RowID: "r1", TrackID: "ref-t1", Code: "c1", ISRC: "USRC17607839",
		}},
		Stats: analysis.RunStats{TotalTracks: 2, TracksWithISRC: 1, MatchCount: 1, MatchRate: 50},
		Dataset: &dataset.BuildResult{
			Index:       dataset.Index{"USRC17607839": {}},
			TotalRows:   10,
			IndexedRows: 8,
		},
	}
}

func TestWrite(t *testing.T) {
	t.Run("Unknown Format Fails Before Writing", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Write(sampleResult(), dir, []string{"json", "pdf"}, nil)
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Fatalf("expected ErrInvalidFlag, got %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Error("expected no files written when a format is invalid")
		}
	})

	t.Run("Writes Each Requested Format", func(t *testing.T) {
		dir := t.TempDir()
		written, err := Write(sampleResult(), dir, []string{"json", "csv"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(written) != 2 {
			t.Fatalf("expected 2 paths, got %d", len(written))
		}
		for _, path := range written {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected %s to exist: %v", path, err)
			}
		}
		if !strings.HasPrefix(filepath.Base(written[0]), "linkin_park_unclaimed_2026-08-25") {
			t.Errorf("unexpected file base: %s", written[0])
		}
	})
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	for _, key := range []string{"run_id", "generated_at", "dataset", "artist", "stats", "catalog", "matches"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected top-level key %q", key)
		}
	}

	var stats struct {
		MatchRate float64 `json:"match_rate"`
	}
	if err := json.Unmarshal(doc["stats"], &stats); err != nil || stats.MatchRate != 50 {
		t.Errorf("expected match_rate 50, got %v (err %v)", stats.MatchRate, err)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := WriteCSV(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 match, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "track_name,album_name") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "USRC17607839") || !strings.Contains(lines[1], "ref-t1") {
		t.Errorf("expected reference-side values in the row: %s", lines[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("expected 3 sheets, got %v", sheets)
	}

	// Newest release first on the catalog sheet.
	name, err := f.GetCellValue(sheetCatalog, "A2")
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if name != "Numb" {
		t.Errorf("expected newest release first, got %q", name)
	}

	matchISRC, _ := f.GetCellValue(sheetMatches, "D2")
	if matchISRC != "USRC17607839" {
		t.Errorf("expected match ISRC on matches sheet, got %q", matchISRC)
	}
}

func TestWriteXLSXNoMatches(t *testing.T) {
	result := sampleResult()
	result.Matches = nil

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(result, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	placeholder, _ := f.GetCellValue(sheetMatches, "A1")
	if !strings.Contains(placeholder, "No unclaimed matches") {
		t.Errorf("expected placeholder message, got %q", placeholder)
	}
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	if err := WriteSQLite(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	var artist string
	var matches int
	err = db.QueryRow("SELECT artist_name, unclaimed_matches FROM runs WHERE run_id = ?", "run-1234").Scan(&artist, &matches)
	if err != nil {
		t.Fatalf("failed to query run row: %v", err)
	}
	if artist != "Linkin Park" || matches != 1 {
		t.Errorf("unexpected run row: %s / %d", artist, matches)
	}

	var catalogRows int
	if err := db.QueryRow("SELECT COUNT(*) FROM catalog_tracks").Scan(&catalogRows); err != nil {
		t.Fatalf("failed to count catalog rows: %v", err)
	}
	if catalogRows != 2 {
		t.Errorf("expected 2 catalog rows, got %d", catalogRows)
	}

	var isrc string
	if err := db.QueryRow("SELECT isrc FROM matches WHERE run_id = ? AND position = 0", "run-1234").Scan(&isrc); err != nil {
		t.Fatalf("failed to query match row: %v", err)
	}
	if isrc != "USRC17607839" {
		t.Errorf("unexpected match isrc: %s", isrc)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Linkin Park": "linkin_park",
		"AC/DC":       "acdc",
		"blink-182":   "blink_182",
		"!!!":         "unknown_artist",
		"Sigur Rós":   "sigur_rós",
		"東京事変":        "東京事変",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	var buf strings.Builder
	RenderSummary(&buf, sampleResult())

	out := buf.String()
	for _, want := range []string{"Linkin Park", "Papercut", "USRC17607839", "Match rate"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q", want)
		}
	}
}
