package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kubinv/kubinv/pkg/version"
)

// New builds the kubinv root command.
func New() *cli.Command {
	return &cli.Command{
		Name:                  "kubinv",
		Usage:                 "Kubernetes namespace inventory and component reporting",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Emit log records as JSON",
			},
		},
		Commands: []*cli.Command{
			reportCmd(),
		},
	}
}

// Run executes the CLI with the process arguments.
func Run(ctx context.Context) error {
	return New().Run(ctx, os.Args)
}
