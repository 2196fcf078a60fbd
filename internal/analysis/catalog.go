package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"rightscan/internal/shared"
	"rightscan/internal/spotify"
)

// ISRCSentinel marks a catalog track whose ISRC is unavailable.
const ISRCSentinel = "N/A"

// ArtistInfo is the resolved artist an analysis run is scoped to.
type ArtistInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Followers  int      `json:"followers"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// CatalogTrack is one track of the assembled artist catalog.
//
// A track is created during album/track pagination and enriched exactly once
// with ISRC, explicit flag, and popularity from the detail fetch.
type CatalogTrack struct {
	TrackID     string `json:"track_id"`
	TrackName   string `json:"track_name"`
	AlbumName   string `json:"album_name"`
	AlbumType   string `json:"album_type"`
	ReleaseDate string `json:"release_date"`
	TrackNumber int    `json:"track_number"`
	DurationMS  int    `json:"duration_ms"`
	ISRC        string `json:"isrc"`
	Explicit    bool   `json:"explicit"`
	Popularity  int    `json:"popularity"`
}

// HasISRC reports whether the track carries a real ISRC rather than the sentinel.
func (t CatalogTrack) HasISRC() bool {
	return t.ISRC != "" && t.ISRC != ISRCSentinel
}

// Catalog is the ordered track sequence for one artist. Order is fetch order:
// album iteration order, then track order within each album.
type Catalog []CatalogTrack

// Fetcher assembles a complete, enriched artist catalog from the remote API.
type Fetcher struct {
	client  *spotify.Client
	workers int
	logger  *log.Logger
}

// FetcherOpts contains optional configuration for creating a Fetcher.
type FetcherOpts struct {
	// Workers bounds concurrent per-album track pagination. Values <= 1 fetch
	// albums sequentially.
	Workers int
	Logger  *log.Logger
}

// NewFetcher creates a Fetcher over the given API client.
func NewFetcher(client *spotify.Client, opts FetcherOpts) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Fetcher{
		client:  client,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
}

// FetchCatalog resolves the artist by name and assembles its enriched catalog.
//
// An artist search with zero hits returns (nil, nil, nil): the caller decides
// whether to retry with a fallback name. Any failing remote call aborts the
// fetch with a propagating error.
func (f *Fetcher) FetchCatalog(ctx context.Context, progress chan<- ProgressUpdate, name string) (*ArtistInfo, Catalog, error) {
	sendProgress(progress, resolveArtistUpdate(name))

	artist, err := f.client.SearchArtist(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if artist == nil {
		return nil, nil, nil
	}

	info := &ArtistInfo{
		ID:         artist.ID,
		Name:       artist.Name,
		Followers:  artist.Followers.Total,
		Genres:     artist.Genres,
		Popularity: artist.Popularity,
	}
	f.logger.Info("resolved artist", "name", info.Name, "followers", info.Followers, "popularity", info.Popularity)

	sendProgress(progress, fetchAlbumsUpdate(info.Name))
	albums, err := f.client.AllAlbums(ctx, artist.ID)
	if err != nil {
		return info, nil, err
	}
	f.logger.Info("fetched album listing", "albums", len(albums))

	catalog, err := f.fetchTracks(ctx, progress, albums)
	if err != nil {
		return info, nil, err
	}

	if err := f.enrich(ctx, progress, catalog); err != nil {
		return info, nil, err
	}

	return info, catalog, nil
}

// fetchTracks paginates every album's tracks, carrying forward the owning
// album's name, type, and release date.
func (f *Fetcher) fetchTracks(ctx context.Context, progress chan<- ProgressUpdate, albums []spotify.Album) (Catalog, error) {
	if f.workers <= 1 {
		return f.fetchTracksSequential(ctx, progress, albums)
	}
	return f.fetchTracksConcurrent(ctx, progress, albums)
}

func (f *Fetcher) fetchTracksSequential(ctx context.Context, progress chan<- ProgressUpdate, albums []spotify.Album) (Catalog, error) {
	var catalog Catalog
	for i, album := range albums {
		sendProgress(progress, fetchTracksUpdate(i+1, len(albums), album.Name))

		tracks, err := f.client.AllTracks(ctx, album.ID)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, albumCatalogTracks(album, tracks)...)
	}
	return catalog, nil
}

// albumJob pairs an album with its position so concurrent completion order
// can be mapped back to album iteration order.
type albumJob struct {
	position int
	album    spotify.Album
}

type albumResult struct {
	position int
	tracks   []spotify.AlbumTrack
	err      error
}

// fetchTracksConcurrent runs per-album track pagination on a bounded worker
// pool. The shared client limiter still spaces individual requests; results
// are reassembled by album position, so the catalog is identical to a
// sequential fetch.
func (f *Fetcher) fetchTracksConcurrent(ctx context.Context, progress chan<- ProgressUpdate, albums []spotify.Album) (Catalog, error) {
	jobs := make(chan albumJob, len(albums))
	results := make(chan albumResult, len(albums))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				tracks, err := f.client.AllTracks(ctx, job.album.ID)
				results <- albumResult{position: job.position, tracks: tracks, err: err}
			}
		}()
	}

	for i, album := range albums {
		jobs <- albumJob{position: i, album: album}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	perAlbum := make([][]spotify.AlbumTrack, len(albums))
	var firstErr error
	done := 0
	for res := range results {
		done++
		sendProgress(progress, fetchTracksUpdate(done, len(albums), albums[res.position].Name))
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			continue
		}
		perAlbum[res.position] = res.tracks
	}

	if firstErr != nil {
		return nil, firstErr
	}

	var catalog Catalog
	for i, album := range albums {
		catalog = append(catalog, albumCatalogTracks(album, perAlbum[i])...)
	}
	return catalog, nil
}

func albumCatalogTracks(album spotify.Album, tracks []spotify.AlbumTrack) []CatalogTrack {
	out := make([]CatalogTrack, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, CatalogTrack{
			TrackID:     track.ID,
			TrackName:   track.Name,
			AlbumName:   album.Name,
			AlbumType:   album.AlbumType,
			ReleaseDate: album.ReleaseDate,
			TrackNumber: track.TrackNumber,
			DurationMS:  track.DurationMS,
		})
	}
	return out
}

// enrichmentBatch pairs catalog positions with the detail request ids at
// construction time. Because position i of ids corresponds to positions[i],
// a null detail lands on exactly the track that produced the unresolved id.
type enrichmentBatch struct {
	positions []int
	ids       []string
}

func buildBatches(catalog Catalog, size int) []enrichmentBatch {
	var batches []enrichmentBatch
	current := enrichmentBatch{}

	for pos, track := range catalog {
		current.positions = append(current.positions, pos)
		current.ids = append(current.ids, track.TrackID)
		if len(current.ids) == size {
			batches = append(batches, current)
			current = enrichmentBatch{}
		}
	}
	if len(current.ids) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// enrich attaches ISRC, explicit flag, and popularity to every catalog track,
// batching detail lookups at the API's maximum batch size.
func (f *Fetcher) enrich(ctx context.Context, progress chan<- ProgressUpdate, catalog Catalog) error {
	batches := buildBatches(catalog, spotify.MaxBatchSize)

	for i, batch := range batches {
		sendProgress(progress, enrichTracksUpdate(i+1, len(batches), len(catalog)))

		details, err := f.client.TrackDetails(ctx, batch.ids)
		if err != nil {
			return err
		}
		if len(details) != len(batch.positions) {
			return fmt.Errorf("%w: batch %d", shared.ErrAlignment, i+1)
		}

		for j, pos := range batch.positions {
			detail := details[j]
			if detail == nil || detail.ISRC() == "" {
				catalog[pos].ISRC = ISRCSentinel
			} else {
				catalog[pos].ISRC = detail.ISRC()
			}
			if detail != nil {
				catalog[pos].Explicit = detail.Explicit
				catalog[pos].Popularity = detail.Popularity
			}
		}
	}

	return nil
}
