package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"rightscan/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "rightscan",
		Usage:    "Find artist catalog tracks listed in the unclaimed musical work right shares dataset",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
