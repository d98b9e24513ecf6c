package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/metrics"
	"github.com/desertthunder/linkreel/internal/shared"
)

const version = "0.3.0"

const defaultConfigPath = "~/.linkreel/config.toml"

func main() {
	logger := shared.NewLogger(nil)
	metrics.SetAppInfo(version, runtime.Version())

	runner := NewRunner(RunnerOpts{
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := runner.app().Run(ctx, os.Args)
	stop()
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}
	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// app builds the root command. The config flag is inherited by every subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "linkreel",
		Usage:   "Collect video links into playlists and hand them off between sessions",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: " + defaultConfigPath + ")",
				Sources: cli.EnvVars("LINKREEL_CONFIG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, r.configure(cmd.String("config"))
		},
		Commands: r.register(),
	}
}
