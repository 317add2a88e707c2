// Package app wires configuration, logging and the command tree of the
// ragcompare binary.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/config"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/ui"
)

// BackendFactory builds the API client used by every command.
type BackendFactory func(cfg config.AppConfig, logger logging.Logger) api.Backend

// Application represents the ragcompare application instance.
type Application struct {
	Out       io.Writer
	ErrWriter io.Writer
	In        io.Reader
	// NewBackend builds the API client; tests replace it.
	NewBackend BackendFactory
	// IsTerminal reports whether a stream is an interactive terminal.
	IsTerminal func(v any) bool

	exitCode int
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithBackendFactory sets a custom backend factory.
func WithBackendFactory(f BackendFactory) AppOption {
	return func(a *Application) { a.NewBackend = f }
}

// WithInput sets the reader used by interactive commands.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// WithTerminalDetector overrides terminal detection.
func WithTerminalDetector(f func(v any) bool) AppOption {
	return func(a *Application) { a.IsTerminal = f }
}

// New creates a new Application writing to out and errWriter.
func New(out, errWriter io.Writer, opts ...AppOption) *Application {
	a := &Application{
		Out:        out,
		ErrWriter:  errWriter,
		In:         os.Stdin,
		NewBackend: defaultBackend,
		IsTerminal: isTerminal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func defaultBackend(cfg config.AppConfig, logger logging.Logger) api.Backend {
	return api.NewClient(cfg.BaseURL, cfg.Timeout, api.WithLogger(logger))
}

// Run parses args, executes the selected command and returns the process
// exit code. SIGINT and SIGTERM cancel the running command.
func (a *Application) Run(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.exitCode = apperrors.ExitSuccess
	if err := a.Command().Run(ctx, args); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	return a.exitCode
}

// Command builds the command tree.
func (a *Application) Command() *cli.Command {
	return &cli.Command{
		Name:      "ragcompare",
		Usage:     "Compare RAG and Graph RAG answers side by side",
		Version:   Version,
		Writer:    a.Out,
		ErrWriter: a.ErrWriter,
		Reader:    a.In,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			a.tuiCommand(),
			a.askCommand(),
			a.replCommand(),
			a.uploadCommand(),
			a.serveCommand(),
			a.versionCommand(),
		},
		OnUsageError: usageError,
		Action:       a.runDefault,
	}
}

// usageError turns flag parsing failures into configuration errors.
func usageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return apperrors.NewConfigError("%v", err)
}

// runDefault starts the dashboard on a terminal and the line-mode REPL
// when input or output is redirected.
func (a *Application) runDefault(ctx context.Context, cmd *cli.Command) error {
	if a.IsTerminal(a.In) && a.IsTerminal(a.Out) {
		return a.runTUI(ctx, cmd)
	}
	return a.runREPL(ctx, cmd)
}

// setup resolves the configuration, applies the colour theme and builds
// the logger. Logs go to the configured log file, or to fallback when
// none is set. The returned function releases the log file.
func (a *Application) setup(cmd *cli.Command, fallback io.Writer) (config.AppConfig, logging.Logger, func(), error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return cfg, nil, nil, err
	}
	ui.InitTheme(cfg.NoColor)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, apperrors.NewConfigError("invalid log level %q", cfg.LogLevel)
	}

	w, closeLog := fallback, func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return cfg, nil, nil, apperrors.NewConfigError("opening log file %s: %v", cfg.LogFile, err)
		}
		w, closeLog = f, func() { _ = f.Close() }
	}
	return cfg, logging.NewLogger(w, "ragcompare").WithLevel(level), closeLog, nil
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w when it is a terminal, or zero.
func terminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
