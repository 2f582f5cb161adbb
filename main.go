package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func newApp() *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Suggest:               true,
		Name:                  "sqlite-layout",
		Version:               Version,
		Usage:                 "sqlite-layout [command]",
		Description:           `Renders typed SQLite schema layouts to DDL and checks them against live databases`,
		DefaultCommand:        "help",
		Flags:                 globalFlags(),
		Before:                setupLogging,
		Commands:              commands(),
	}
}

func main() {
	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, newApp(), os.Args)
	stop()
	os.Exit(code)
}

// execute runs app and maps its outcome to a process exit code. Failures go
// through the logger installed by setupLogging.
func execute(ctx context.Context, app *cli.Command, args []string) int {
	if err := app.Run(ctx, args); err != nil {
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}
