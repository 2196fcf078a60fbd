// package analysis orchestrates a full rights-matching run: index the
// reference dataset, assemble the artist catalog, and cross-reference the two.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"rightscan/internal/dataset"
	"rightscan/internal/shared"
)

// RunOpts configures a single analysis run.
type RunOpts struct {
	DatasetPath    string
	Artist         string
	FallbackArtist string
}

// Result is the complete outcome of one run, ready for rendering.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	DatasetPath string
	Artist      *ArtistInfo
	Catalog     Catalog
	Matches     []MatchRecord
	Stats       RunStats
	Dataset     *dataset.BuildResult
}

// Engine wires the indexer and catalog fetcher into one pipeline.
type Engine struct {
	indexer *dataset.Indexer
	fetcher *Fetcher
	logger  *log.Logger
}

// NewEngine creates an Engine from its two stages.
func NewEngine(indexer *dataset.Indexer, fetcher *Fetcher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{indexer: indexer, fetcher: fetcher, logger: logger}
}

// Run executes the pipeline end to end.
//
// An unreadable or empty reference dataset aborts the run before any remote
// call. An artist with no search hit is retried once under the fallback name;
// if that also misses, the run fails without attempting a match.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*Result, error) {
	sendProgress(progress, indexDatasetUpdate(opts.DatasetPath))

	built, err := e.indexer.Build(opts.DatasetPath)
	if err != nil {
		return nil, err
	}
	if len(built.Index) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %s", shared.ErrDatasetUnavailable, opts.DatasetPath)
	}

	artist, catalog, err := e.fetcher.FetchCatalog(ctx, progress, opts.Artist)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		if opts.FallbackArtist == "" || opts.FallbackArtist == opts.Artist {
			return nil, fmt.Errorf("%w: artist %q not found", shared.ErrInvalidInput, opts.Artist)
		}
		e.logger.Warn("artist not found, retrying with fallback", "artist", opts.Artist, "fallback", opts.FallbackArtist)

		artist, catalog, err = e.fetcher.FetchCatalog(ctx, progress, opts.FallbackArtist)
		if err != nil {
			return nil, err
		}
		if artist == nil {
			return nil, fmt.Errorf("%w: neither %q nor fallback %q found", shared.ErrInvalidInput, opts.Artist, opts.FallbackArtist)
		}
	}

	sendProgress(progress, crossReferenceUpdate(len(catalog)))
	matches := Match(catalog, built.Index)
	stats := ComputeStats(catalog, matches)

	e.logger.Info("analysis complete",
		"artist", artist.Name,
		"tracks", stats.TotalTracks,
		"with_isrc", stats.TracksWithISRC,
		"matches", stats.MatchCount)

	return &Result{
		RunID:       shared.GenerateID(),
		GeneratedAt: time.Now().UTC(),
		DatasetPath: opts.DatasetPath,
		Artist:      artist,
		Catalog:     catalog,
		Matches:     matches,
		Stats:       stats,
		Dataset:     built,
	}, nil
}
