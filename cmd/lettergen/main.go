package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "lettergen",
		Usage:   "Fill FATCA erasure-request templates offline",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"FATCA_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			renderCommand(),
			batchCommand(),
			placeholdersCommand(),
			countCommand(),
		},
	}
}
