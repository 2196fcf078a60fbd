package report

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"rightscan/internal/analysis"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	artist_id TEXT,
	artist_name TEXT,
	dataset_path TEXT,
	total_tracks INTEGER NOT NULL,
	tracks_with_isrc INTEGER NOT NULL,
	unclaimed_matches INTEGER NOT NULL,
	match_rate REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_tracks (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	track_id TEXT,
	track_name TEXT,
	album_name TEXT,
	album_type TEXT,
	release_date TEXT,
	track_number INTEGER,
	duration_ms INTEGER,
	isrc TEXT,
	explicit INTEGER,
	popularity INTEGER,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS matches (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	track_name TEXT,
	album_name TEXT,
	release_date TEXT,
	isrc TEXT,
	row_id TEXT,
	track_id TEXT,
	code1 TEXT,
	PRIMARY KEY (run_id, position)
);`

// WriteSQLite renders the run into a SQLite file. The database is a report
// artifact like the other formats, written once per run and never read back
// by the pipeline.
func WriteSQLite(result *analysis.Result, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open report database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create report schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var artistID, artistName string
	if result.Artist != nil {
		artistID = result.Artist.ID
		artistName = result.Artist.Name
	}

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, generated_at, artist_id, artist_name, dataset_path,
			total_tracks, tracks_with_isrc, unclaimed_matches, match_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.GeneratedAt.Format("2006-01-02T15:04:05Z"),
		artistID, artistName, result.DatasetPath,
		result.Stats.TotalTracks, result.Stats.TracksWithISRC,
		result.Stats.MatchCount, result.Stats.MatchRate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run row: %w", err)
	}

	trackStmt, err := tx.Prepare(
		`INSERT INTO catalog_tracks (run_id, position, track_id, track_name, album_name,
			album_type, release_date, track_number, duration_ms, isrc, explicit, popularity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer trackStmt.Close()

	for i, track := range result.Catalog {
		_, err := trackStmt.Exec(result.RunID, i, track.TrackID, track.TrackName,
			track.AlbumName, track.AlbumType, track.ReleaseDate, track.TrackNumber,
			track.DurationMS, track.ISRC, track.Explicit, track.Popularity)
		if err != nil {
			return fmt.Errorf("failed to insert catalog track %d: %w", i, err)
		}
	}

	matchStmt, err := tx.Prepare(
		`INSERT INTO matches (run_id, position, track_name, album_name, release_date,
			isrc, row_id, track_id, code1)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer matchStmt.Close()

	for i, m := range result.Matches {
		_, err := matchStmt.Exec(result.RunID, i, m.TrackName, m.AlbumName,
			m.ReleaseDate, m.ISRC, m.RowID, m.TrackID, m.Code)
		if err != nil {
			return fmt.Errorf("failed to insert match %d: %w", i, err)
		}
	}

	return tx.Commit()
}
