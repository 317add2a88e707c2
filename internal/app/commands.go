package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	termui "github.com/agbru/ragcompare/internal/cli"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/server"
	"github.com/agbru/ragcompare/internal/tui"
	"github.com/agbru/ragcompare/internal/ui"
	"github.com/agbru/ragcompare/internal/upload"
)

func (a *Application) tuiCommand() *cli.Command {
	return &cli.Command{
		Name:         "tui",
		Usage:        "Open the interactive dashboard",
		OnUsageError: usageError,
		Action:       a.runTUI,
	}
}

func (a *Application) askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask both systems one question and print the two answers",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "save the comparison to a .md or .xlsx file",
			},
		},
		OnUsageError: usageError,
		Action:       a.runAsk,
	}
}

func (a *Application) replCommand() *cli.Command {
	return &cli.Command{
		Name:         "repl",
		Usage:        "Start a line-oriented session",
		OnUsageError: usageError,
		Action:       a.runREPL,
	}
}

func (a *Application) uploadCommand() *cli.Command {
	return &cli.Command{
		Name:         "upload",
		Usage:        "Upload a PDF document and print its preview",
		ArgsUsage:    "<file.pdf>",
		OnUsageError: usageError,
		Action:       a.runUpload,
	}
}

func (a *Application) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local demo backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":8080",
			},
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "answer queries with chunked text streams",
			},
		},
		OnUsageError: usageError,
		Action:       a.runServe,
	}
}

func (a *Application) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(context.Context, *cli.Command) error {
			PrintVersion(a.Out)
			return nil
		},
	}
}

// runTUI launches the dashboard. Logs are discarded unless a log file is
// configured, so they cannot corrupt the alternate screen.
func (a *Application) runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, closeLog, err := a.setup(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	a.exitCode = tui.Run(ctx, a.NewBackend(cfg, logger), cfg, logger, Version)
	return nil
}

// runAsk submits one question, waits for both channels and presents the
// comparison. The exit code reflects how many backends really answered.
func (a *Application) runAsk(ctx context.Context, cmd *cli.Command) error {
	question := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return apperrors.ValidationError{Field: "question", Message: "must not be empty"}
	}
	cfg, logger, closeLog, err := a.setup(cmd, a.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	reporter := termui.NewSpinnerReporter(a.ErrWriter)
	orch := orchestration.New(a.NewBackend(cfg, logger), orchestration.SettingsFromConfig(cfg), reporter, logger)

	reporter.Begin()
	cmp, err := orch.Ask(ctx, question)
	reporter.End()
	if err != nil {
		return err
	}

	a.exitCode = orchestration.AnalyzeComparison(cmp, a.presenter(), a.Out)

	if path := cmd.String("output"); path != "" {
		if err := termui.WriteComparisonToFile(cmp, path); err != nil {
			return apperrors.WrapError(err, "saving comparison")
		}
		th := ui.GetCurrentTheme()
		fmt.Fprintf(a.Out, "Comparison saved to %s\n", th.Paint(th.Primary, path))
	}
	return nil
}

// runREPL runs the line-mode session on the application's input.
func (a *Application) runREPL(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, closeLog, err := a.setup(cmd, a.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	backend := a.NewBackend(cfg, logger)
	reporter := termui.NewSpinnerReporter(a.ErrWriter)
	orch := orchestration.New(backend, orchestration.SettingsFromConfig(cfg), reporter, logger)
	flow := upload.NewFlow(backend, upload.DefaultTick, cfg.DocumentID, logger)

	repl := termui.NewREPL(orch, reporter, flow, a.presenter(), termui.REPLConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	repl.SetInput(a.In)
	repl.SetOutput(a.Out)
	repl.Start(ctx)

	if ctx.Err() != nil {
		a.exitCode = apperrors.ExitErrorCanceled
	}
	return nil
}

// runUpload uploads one document. A failed request still succeeds with
// the default document id; only an invalid file is an error.
func (a *Application) runUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return apperrors.ValidationError{Field: "file", Message: "a PDF file path is required"}
	}
	cfg, logger, closeLog, err := a.setup(cmd, a.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	flow := upload.NewFlow(a.NewBackend(cfg, logger), upload.DefaultTick, cfg.DocumentID, logger)
	res, err := flow.Run(ctx, path, termui.UploadProgressHandlers(a.Out))
	if err != nil {
		return err
	}
	termui.DisplayUploadResult(a.Out, res)
	fmt.Fprintf(a.Out, "\nAsk about it with: ragcompare ask --document-id %s <question>\n", res.DocumentID)
	return nil
}

// runServe runs the demo backend until the context is canceled.
func (a *Application) runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, closeLog, err := a.setup(cmd, a.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	srv := server.NewServer(server.OptionsFromConfig(cfg), logger)
	mode := "complete text"
	if cfg.ServeStream {
		mode = "text streams"
	}
	fmt.Fprintf(a.Out, "Demo backend on %s answering with %s (Ctrl+C to stop)\n", cfg.ServeAddr, mode)
	return srv.Start(ctx)
}

// presenter renders markdown only when writing to a terminal.
func (a *Application) presenter() termui.TerminalPresenter {
	return termui.TerminalPresenter{
		Markdown: a.IsTerminal(a.Out),
		Width:    terminalWidth(a.Out),
	}
}
