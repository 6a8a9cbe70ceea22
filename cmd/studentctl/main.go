// Command studentctl manages student records from the command line. Every
// subcommand goes through the core service; the configured snapshot driver is
// loaded on start and rewritten after each successful change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"studentrecords/internal/config"
	"studentrecords/internal/core"
	"studentrecords/internal/logger"
	"studentrecords/pkg/domain"
)

var exitFunc = os.Exit

const usageText = `usage: studentctl [-config file] [-env file] [-trace] <command> [args]

commands:
  list                          list all students
  show <id>                     show one student
  search <keyword>              search ids, names, courses, fields and minors/domains
  add [flags]                   register a student (see add -h)
  update <id> [flags]           change fields of a student (see update -h)
  delete <id>                   delete a student
  add-course <id> <course>      enroll a student in a course
  remove-course <id> <course>   drop a course (the last course is kept)
  generate-id -name N -age A    suggest an unused id
  catalog [field|minors|domains] show reference lists
  backup                        write a backup of all students
  backups                       list backups
  restore <key>                 replace all students with a backup
`

// errUsage marks command line mistakes, reported with exit code 2.
var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	cfg     *config.Config
	svc     *core.Service
	store   core.SnapshotStore
	metrics core.MetricsRecorder
	stdout  io.Writer
	stderr  io.Writer
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("studentctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(stderr, usageText) }
	configPath := fs.String("config", "", "path to a YAML config file")
	envFile := fs.String("env", ".env", "path to a dotenv file")
	trace := fs.Bool("trace", false, "write JSON trace spans to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	if !cmd.storage {
		return report(stderr, cmd.run(ctx, &app{stdout: stdout, stderr: stderr}, rest))
	}

	a, err := open(ctx, *configPath, *envFile, *trace, cmd.backups, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()
	return report(stderr, cmd.run(ctx, a, rest))
}

func open(ctx context.Context, configPath, envFile string, trace, backups bool, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: stderr})

	store, err := core.OpenSnapshotStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	metrics, err := core.OpenMetricsRecorder(cfg.Metrics)
	if err != nil {
		_ = core.CloseSnapshotStore(store)
		return nil, err
	}
	opts := []core.ServiceOption{
		core.WithLogger(logger.NewAdapter(log)),
		core.WithMetricsRecorder(metrics),
		core.WithBackupPrefix(cfg.Backup.Prefix),
	}
	if trace {
		opts = append(opts, core.WithTracer(core.NewSpanLog(stderr)))
	}
	if backups {
		bs, err := core.OpenBackupStore(ctx, cfg.Backup)
		if err != nil {
			_ = core.CloseSnapshotStore(store)
			return nil, fmt.Errorf("open backup store: %w", err)
		}
		opts = append(opts, core.WithBackupStore(bs))
	}
	a := &app{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		stdout:  stdout,
		stderr:  stderr,
	}
	a.svc = core.NewPersistentService(store, opts...)
	if err := a.svc.Initialize(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if prom, ok := a.metrics.(*core.PrometheusMetricsRecorder); ok && a.cfg.Metrics.Textfile != "" {
		if err := prom.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			_, _ = fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	if err := core.CloseSnapshotStore(a.store); err != nil {
		_, _ = fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
}

// report prints err and maps it to an exit code.
func report(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	var de domain.DomainError
	if errors.As(err, &de) {
		_, _ = fmt.Fprintln(stderr, de.Error())
		return 1
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
