package analysis

import "rightscan/internal/dataset"

// MatchRecord is the merge of a catalog track with its reference row.
// Colliding keys (track_id, isrc) carry the reference values: the rights
// dataset is authoritative for the rows it contributed.
type MatchRecord struct {
	TrackName   string `json:"track_name"`
	AlbumName   string `json:"album_name"`
	AlbumType   string `json:"album_type"`
	ReleaseDate string `json:"release_date"`
	TrackNumber int    `json:"track_number"`
	DurationMS  int    `json:"duration_ms"`
	Explicit    bool   `json:"explicit"`
	Popularity  int    `json:"popularity"`
	RowID       string `json:"row_id"`
	TrackID     string `json:"track_id"`
	Code        string `json:"code1"`
	ISRC        string `json:"isrc"`
}

// RunStats summarizes one analysis run.
type RunStats struct {
	TotalTracks    int     `json:"total_tracks"`
	TracksWithISRC int     `json:"tracks_with_isrc"`
	MatchCount     int     `json:"unclaimed_matches"`
	MatchRate      float64 `json:"match_rate"`
}

// Match cross-references a catalog against the reference index.
//
// Results are in catalog order. Tracks without a real ISRC are skipped.
// Catalog tracks are not deduplicated: if two physical tracks share an ISRC
// that appears in the index, both produce a match.
func Match(catalog Catalog, index dataset.Index) []MatchRecord {
	matches := []MatchRecord{}

	for _, track := range catalog {
		if !track.HasISRC() {
			continue
		}
		ref, ok := index[track.ISRC]
		if !ok {
			continue
		}
		matches = append(matches, mergeRecord(track, ref))
	}

	return matches
}

func mergeRecord(track CatalogTrack, ref dataset.Record) MatchRecord {
	return MatchRecord{
		TrackName:   track.TrackName,
		AlbumName:   track.AlbumName,
		AlbumType:   track.AlbumType,
		ReleaseDate: track.ReleaseDate,
		TrackNumber: track.TrackNumber,
		DurationMS:  track.DurationMS,
		Explicit:    track.Explicit,
		Popularity:  track.Popularity,
		RowID:       ref.RowID,
		TrackID:     ref.TrackID,
		Code:        ref.Code,
		ISRC:        ref.ISRC,
	}
}

// ComputeStats derives run statistics from a catalog and its matches.
// An empty catalog yields a zero rate rather than a division error.
func ComputeStats(catalog Catalog, matches []MatchRecord) RunStats {
	stats := RunStats{
		TotalTracks: len(catalog),
		MatchCount:  len(matches),
	}

	for _, track := range catalog {
		if track.HasISRC() {
			stats.TracksWithISRC++
		}
	}

	if stats.TotalTracks > 0 {
		stats.MatchRate = float64(stats.MatchCount) / float64(stats.TotalTracks) * 100
	}

	return stats
}
