package analysis

import "fmt"

// Phase identifies which stage of a run a progress update belongs to.
type Phase int

const (
	PhaseIndexDataset Phase = iota
	PhaseResolveArtist
	PhaseFetchAlbums
	PhaseFetchTracks
	PhaseEnrichTracks
	PhaseCrossReference
)

func (p Phase) String() string {
	switch p {
	case PhaseIndexDataset:
		return "index dataset"
	case PhaseResolveArtist:
		return "resolve artist"
	case PhaseFetchAlbums:
		return "fetch albums"
	case PhaseFetchTracks:
		return "fetch tracks"
	case PhaseEnrichTracks:
		return "enrich tracks"
	case PhaseCrossReference:
		return "cross-reference"
	default:
		return ""
	}
}

// ProgressUpdate is one advisory status message emitted during a run.
type ProgressUpdate struct {
	Phase   Phase
	Message string
	Current int
	Total   int
}

// sendProgress delivers an update without blocking. A nil or full channel
// drops the update; progress is advisory and must never stall the run.
func sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}

func indexDatasetUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseIndexDataset,
		Message: fmt.Sprintf("Indexing reference dataset %s", path),
	}
}

func resolveArtistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseResolveArtist,
		Message: fmt.Sprintf("Resolving artist %q", name),
	}
}

func fetchAlbumsUpdate(artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchAlbums,
		Message: fmt.Sprintf("Fetching albums for %s", artist),
	}
}

func fetchTracksUpdate(current, total int, album string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchTracks,
		Message: fmt.Sprintf("Fetching tracks for %s", album),
		Current: current,
		Total:   total,
	}
}

func enrichTracksUpdate(current, total, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseEnrichTracks,
		Message: fmt.Sprintf("Enriching %d tracks with detail data", tracks),
		Current: current,
		Total:   total,
	}
}

func crossReferenceUpdate(tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseCrossReference,
		Message: fmt.Sprintf("Cross-referencing %d tracks against the index", tracks),
	}
}
