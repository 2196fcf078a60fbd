package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"rightscan/internal/shared"
	"rightscan/internal/spotify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger    *log.Logger
	output    io.Writer
	newClient func(cfg *shared.Config) (*spotify.Client, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
	// NewClient overrides API client construction, used by tests to point at
	// a local server.
	NewClient func(cfg *shared.Config) (*spotify.Client, error)
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewClient == nil {
		opts.NewClient = defaultClient
	}

	return &Runner{
		logger:    opts.Logger,
		output:    opts.Output,
		newClient: opts.NewClient,
	}
}

func defaultClient(cfg *shared.Config) (*spotify.Client, error) {
	provider, err := spotify.NewTokenProvider(
		cfg.Credentials.Spotify.ClientID,
		cfg.Credentials.Spotify.ClientSecret,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return spotify.NewClient(provider, spotify.ClientOpts{
		Market:          cfg.Fetch.Market,
		RequestInterval: cfg.RequestInterval(),
		Burst:           cfg.Fetch.Workers,
	}), nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		analyzeCommand, datasetCommand, artistCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective configuration for a command: embedded
// defaults, then the config file if present, then environment overrides.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	shared.ApplyEnv(config)
	return config, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
