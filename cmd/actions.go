package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"rightscan/internal/analysis"
	"rightscan/internal/dataset"
	"rightscan/internal/report"
	"rightscan/internal/shared"
)

// Analyze runs the full pipeline and writes the configured reports.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if artist := cmd.String("artist"); artist != "" {
		config.Fetch.Artist = artist
	}
	if fallback := cmd.String("fallback"); fallback != "" {
		config.Fetch.FallbackArtist = fallback
	}
	if path := cmd.String("dataset"); path != "" {
		config.Dataset.Path = path
	}
	if dir := cmd.String("out"); dir != "" {
		config.Output.Dir = dir
	}
	if formats := cmd.StringSlice("format"); len(formats) > 0 {
		config.Output.Formats = formats
	}
	if workers := cmd.Int("workers"); workers > 0 {
		config.Fetch.Workers = workers
	}

	if err := shared.ValidateCredentials(config); err != nil {
		return err
	}

	client, err := r.newClient(config)
	if err != nil {
		return err
	}

	engine := analysis.NewEngine(
		dataset.NewIndexer(config.Dataset.ChunkSize, r.logger),
		analysis.NewFetcher(client, analysis.FetcherOpts{Workers: config.Fetch.Workers, Logger: r.logger}),
		r.logger,
	)

	progress := make(chan analysis.ProgressUpdate, 32)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progress {
			if update.Total > 0 {
				r.logger.Info(update.Message, "phase", update.Phase.String(), "progress", fmt.Sprintf("%d/%d", update.Current, update.Total))
			} else {
				r.logger.Info(update.Message, "phase", update.Phase.String())
			}
		}
	}()

	result, err := engine.Run(ctx, progress, analysis.RunOpts{
		DatasetPath:    config.Dataset.Path,
		Artist:         config.Fetch.Artist,
		FallbackArtist: config.Fetch.FallbackArtist,
	})
	close(progress)
	<-drained
	if err != nil {
		return err
	}

	written, err := report.Write(result, config.Output.Dir, config.Output.Formats, r.logger)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Matches, true)
	}

	report.RenderSummary(r.output, result)
	for _, path := range written {
		r.writePlain("wrote %s\n", path)
	}
	return nil
}

// datasetInspection is the printable outcome of a dataset-only indexing pass.
type datasetInspection struct {
	Path        string `json:"path"`
	TotalRows   int    `json:"total_rows"`
	IndexedRows int    `json:"indexed_rows"`
	UniqueISRCs int    `json:"unique_isrcs"`
	Chunks      int    `json:"chunks"`
	Malformed   int    `json:"skipped_malformed"`
	Sentinel    int    `json:"skipped_sentinel"`
	Length      int    `json:"skipped_length"`
	Duplicate   int    `json:"skipped_duplicate"`
}

// DatasetInspect indexes the reference dataset and prints row accounting.
func (r *Runner) DatasetInspect(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	path := config.Dataset.Path
	if flagPath := cmd.String("dataset"); flagPath != "" {
		path = flagPath
	}
	chunkSize := config.Dataset.ChunkSize
	if flagChunk := cmd.Int("chunk-size"); flagChunk > 0 {
		chunkSize = flagChunk
	}

	result, err := dataset.NewIndexer(chunkSize, r.logger).Build(path)
	if err != nil {
		return err
	}

	inspection := datasetInspection{
		Path:        path,
		TotalRows:   result.TotalRows,
		IndexedRows: result.IndexedRows,
		UniqueISRCs: len(result.Index),
		Chunks:      result.Chunks,
		Malformed:   result.Skips.Malformed,
		Sentinel:    result.Skips.Sentinel,
		Length:      result.Skips.Length,
		Duplicate:   result.Skips.Duplicate,
	}

	if cmd.Bool("json") {
		return r.writeJSON(inspection, true)
	}

	r.writePlain("dataset: %s\n", inspection.Path)
	r.writePlain("rows scanned: %d\n", inspection.TotalRows)
	r.writePlain("rows indexed: %d (%d unique ISRCs, %d chunks)\n", inspection.IndexedRows, inspection.UniqueISRCs, inspection.Chunks)
	r.writePlain("skipped: %d malformed, %d sentinel, %d bad length, %d duplicate\n",
		inspection.Malformed, inspection.Sentinel, inspection.Length, inspection.Duplicate)
	return nil
}

// ArtistLookup resolves a single artist by name and prints its profile.
func (r *Runner) ArtistLookup(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := shared.ValidateCredentials(config); err != nil {
		return err
	}

	client, err := r.newClient(config)
	if err != nil {
		return err
	}

	artist, err := client.SearchArtist(ctx, name)
	if err != nil {
		return err
	}
	if artist == nil {
		return r.writePlain("no artist found for %q\n", name)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artist, true)
	}

	r.writePlain("%s (%s)\n", artist.Name, artist.ID)
	r.writePlain("followers: %d\n", artist.Followers.Total)
	r.writePlain("popularity: %d\n", artist.Popularity)
	if len(artist.Genres) > 0 {
		r.writePlain("genres: %v\n", artist.Genres)
	}
	return nil
}

// ConfigInit writes the example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlain("created %s; fill in credentials.spotify before running an analysis\n", path)
}
