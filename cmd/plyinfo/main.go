package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyload/internal/logger"
	"github.com/samcharles93/plyload/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "plyinfo",
		Usage:   "Inspect and dump PLY geometry files",
		Version: version.String(),
		Flags:   loggingFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			applyLoggingConfig(cmd, LoadConfig())
			level := logLevel
			if debug {
				level = "debug"
			}
			log := logger.NewFromFormat(os.Stderr, logFormat, logger.ParseLevel(level))
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			dumpCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
