package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
	_ "modernc.org/sqlite"

	"github.com/mizuchilabs/sqlite-layout/internal/logging"
	"github.com/mizuchilabs/sqlite-layout/pkg/apply"
	"github.com/mizuchilabs/sqlite-layout/pkg/catalog"
	"github.com/mizuchilabs/sqlite-layout/pkg/document"
	"github.com/mizuchilabs/sqlite-layout/pkg/schema"
	"github.com/mizuchilabs/sqlite-layout/pkg/verify"
)

var errDiscrepancies = errors.New("database does not match layout")

func commands() []*cli.Command {
	return []*cli.Command{buildCMD(), checkCMD(), applyCMD(), verifyCMD(), convertCMD()}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("SQLITE_LAYOUT_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.EnvVars("SQLITE_LAYOUT_LOG_FORMAT"),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := logging.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	format, err := logging.ParseFormat(cmd.String("log-format"))
	if err != nil {
		return ctx, err
	}
	logging.Init(errWriter(cmd), level, format)
	return ctx, nil
}

func layoutFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "layout",
		Aliases:  []string{"l"},
		Usage:    "Path to the layout document (.xml, .yaml, .msgpack)",
		Required: true,
		Sources:  cli.EnvVars("SQLITE_LAYOUT_LAYOUT"),
	}
}

func databaseFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "database",
		Aliases:  []string{"db"},
		Usage:    "Path to SQLite database file",
		Required: required,
		Sources:  cli.EnvVars("SQLITE_LAYOUT_DATABASE"),
	}
}

func ifNotExistsFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "if-not-exists",
		Usage:   "Guard every CREATE with IF NOT EXISTS",
		Sources: cli.EnvVars("SQLITE_LAYOUT_IF_NOT_EXISTS"),
	}
}

func buildCMD() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render a layout to SQL",
		Flags: []cli.Flag{
			layoutFlag(),
			ifNotExistsFlag(),
			&cli.BoolFlag{
				Name:    "transaction",
				Aliases: []string{"t"},
				Usage:   "Wrap the script in BEGIN; ... END;",
				Sources: cli.EnvVars("SQLITE_LAYOUT_TRANSACTION"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the script to this file instead of stdout",
				Sources: cli.EnvVars("SQLITE_LAYOUT_OUTPUT"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Render again whenever the layout file changes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			layoutPath := cmd.String("layout")
			outputPath := cmd.String("output")
			opts := schema.Options{
				Transaction: cmd.Bool("transaction"),
				IfNotExists: cmd.Bool("if-not-exists"),
			}
			render := func() error {
				return renderLayout(writer(cmd), layoutPath, outputPath, opts)
			}

			if !cmd.Bool("watch") {
				return render()
			}

			if err := render(); err != nil {
				slog.Error("render failed", "layout", layoutPath, "error", err)
			}
			w, err := newLayoutWatcher(layoutPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = w.Close()
			}()
			slog.Info("watching layout", "layout", layoutPath)
			return w.run(ctx, render)
		},
	}
}

func renderLayout(w io.Writer, layoutPath, outputPath string, opts schema.Options) error {
	s, err := document.Load(layoutPath)
	if err != nil {
		return err
	}
	script, err := schema.Build(s, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", layoutPath, err)
	}

	if outputPath == "" {
		if _, err := fmt.Fprintln(w, script); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputPath, []byte(script+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	slog.Info("rendered layout",
		"layout", layoutPath,
		"tables", len(s.Tables()),
		"views", len(s.Views()),
		"size", humanize.Bytes(uint64(len(script))),
	)
	return nil
}

// layoutWatcher watches the directory holding a layout file, since editors
// often replace the file instead of writing it in place.
type layoutWatcher struct {
	*fsnotify.Watcher
	path string
}

func newLayoutWatcher(path string) (*layoutWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &layoutWatcher{Watcher: w, path: path}, nil
}

func (w *layoutWatcher) run(ctx context.Context, render func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("layout changed", "layout", w.path, "op", event.Op.String())
			if err := render(); err != nil {
				slog.Error("render failed", "layout", w.path, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func checkCMD() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Render a layout and run it against an empty in-memory database",
		Flags: []cli.Flag{layoutFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			layoutPath := cmd.String("layout")
			s, err := document.Load(layoutPath)
			if err != nil {
				return err
			}
			report, err := checkLayout(ctx, s)
			if err != nil {
				return err
			}
			if !report.OK() {
				_, _ = fmt.Fprintln(writer(cmd), report)
				return fmt.Errorf("%w: %d discrepancies", errDiscrepancies, len(report.Discrepancies))
			}
			_, _ = fmt.Fprintf(writer(cmd), "%s: ok\n", layoutPath)
			return nil
		},
	}
}

// checkLayout executes the rendered layout in a scratch database and reads
// the result back, so both SQLite's acceptance and the stored definitions
// are checked.
func checkLayout(ctx context.Context, s schema.Schema) (*verify.Report, error) {
	script, err := schema.Build(s, schema.Options{})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.FromSQL(ctx, script)
	if err != nil {
		return nil, err
	}
	found, err := verify.Compare(cat, s)
	if err != nil {
		return nil, err
	}
	return &verify.Report{Discrepancies: found}, nil
}

func applyCMD() *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Create the layout's tables and views in a database",
		Flags: []cli.Flag{
			databaseFlag(true),
			layoutFlag(),
			ifNotExistsFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the script without executing it",
			},
			&cli.StringFlag{
				Name:    "backup",
				Usage:   "Copy the database to this path before applying",
				Sources: cli.EnvVars("SQLITE_LAYOUT_BACKUP"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dbPath := cmd.String("database")
			s, err := document.Load(cmd.String("layout"))
			if err != nil {
				return err
			}

			db, err := sql.Open("sqlite", dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			opts := apply.Options{
				IfNotExists: cmd.Bool("if-not-exists"),
				DryRun:      cmd.Bool("dry-run"),
				BackupPath:  cmd.String("backup"),
			}
			script, err := apply.Apply(ctx, db, s, opts)
			if err != nil {
				return err
			}

			if opts.DryRun {
				_, _ = fmt.Fprintln(writer(cmd), script)
				return nil
			}
			slog.Info("applied layout",
				"database", dbPath,
				"tables", len(s.Tables()),
				"views", len(s.Views()),
				"backup", opts.BackupPath,
			)
			return nil
		},
	}
}

func verifyCMD() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Compare a database, or a migrations directory, with a layout",
		Flags: []cli.Flag{
			databaseFlag(false),
			&cli.StringFlag{
				Name:    "migrations",
				Aliases: []string{"m"},
				Usage:   "Directory of .sql migrations to run in memory instead of opening a database",
				Sources: cli.EnvVars("SQLITE_LAYOUT_MIGRATIONS"),
			},
			layoutFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dbPath := cmd.String("database")
			migrations := cmd.String("migrations")
			if (dbPath == "") == (migrations == "") {
				return errors.New("exactly one of --database and --migrations is required")
			}

			s, err := document.Load(cmd.String("layout"))
			if err != nil {
				return err
			}

			var report *verify.Report
			if dbPath != "" {
				report, err = verifyDatabase(ctx, dbPath, s)
			} else {
				report, err = verifyMigrations(ctx, migrations, s)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(writer(cmd), report)
			if !report.OK() {
				return fmt.Errorf("%w: %d discrepancies", errDiscrepancies, len(report.Discrepancies))
			}
			return nil
		},
	}
}

func verifyDatabase(ctx context.Context, dbPath string, s schema.Schema) (*verify.Report, error) {
	// sql.Open would create a missing file.
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	return verify.Verify(ctx, db, s)
}

func verifyMigrations(ctx context.Context, dir string, s schema.Schema) (*verify.Report, error) {
	cat, err := catalog.FromDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	found, err := verify.Compare(cat, s)
	if err != nil {
		return nil, err
	}
	return &verify.Report{Discrepancies: found}, nil
}

func convertCMD() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Re-encode a layout document in another format",
		Flags: []cli.Flag{
			layoutFlag(),
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Destination document; the extension picks the format",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			from, to := cmd.String("layout"), cmd.String("output")
			s, err := document.Load(from)
			if err != nil {
				return err
			}
			if err := document.Save(to, s); err != nil {
				return err
			}
			slog.Info("converted layout", "from", from, "to", to)
			return nil
		},
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
