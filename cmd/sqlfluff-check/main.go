// Package main is the entry point for the sqlfluff-check CLI.
//
// sqlfluff-check is meant to run as a pre-commit hook: it receives the
// staged file names as arguments and checks the SQL files among them with
// sqlfluff. All functionality lives in the internal/cli package.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/shinji-kodama/sqlfluff-check/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Interrupting the hook stops the running sqlfluff process or container.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand(viper.New(), afero.NewOsFs())
	cli.Execute(ctx, rootCmd)
}
