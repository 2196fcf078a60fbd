// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// analyzeCommand runs the full pipeline: index, fetch, match, report.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"run"},
		Usage:   "Cross-reference an artist's catalog against the unclaimed rights dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist to analyze (overrides config)",
			},
			&cli.StringFlag{
				Name:  "fallback",
				Usage: "Artist to retry with when the primary has no search hit",
			},
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Path to the unclaimed works TSV",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory for written reports",
			},
			&cli.StringSliceFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report formats to write (json, csv, xlsx, sqlite)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent album track fetches (1 = sequential)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the match list as JSON instead of the styled summary",
			},
		},
		Action: r.Analyze,
	}
}

// datasetCommand handles reference dataset operations.
func datasetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Reference dataset operations",
		Commands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "Index the dataset and report row accounting without any API calls",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "dataset",
						Aliases: []string{"d"},
						Usage:   "Path to the unclaimed works TSV",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Rows per indexing window",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DatasetInspect,
			},
		},
	}
}

// artistCommand handles artist lookups against the remote API.
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Artist operations",
		Commands: []*cli.Command{
			{
				Name:  "lookup",
				Usage: "Resolve an artist by name and print its profile",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ArtistLookup,
			},
		},
	}
}

// configCommand handles configuration scaffolding.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml to get started",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}
