package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/ragcompare/internal/document"
	"github.com/agbru/ragcompare/internal/format"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/ui"
	"github.com/agbru/ragcompare/internal/upload"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// BaseURL is shown by the status command.
	BaseURL string
	// Timeout bounds each network call; shown by the status command.
	Timeout time.Duration
}

// REPL is an interactive question-answering session that compares both
// backends one question at a time.
type REPL struct {
	config    REPLConfig
	orch      *orchestration.Orchestrator
	reporter  *SpinnerReporter
	uploads   *upload.Flow
	presenter orchestration.ComparisonPresenter
	graph     document.GraphStats

	doc     *document.Info
	last    *orchestration.Comparison
	answers int
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a REPL. The reporter must be the one the orchestrator
// reports to; its spinner is started for every question.
func NewREPL(orch *orchestration.Orchestrator, reporter *SpinnerReporter, uploads *upload.Flow,
	presenter orchestration.ComparisonPresenter, config REPLConfig) *REPL {
	return &REPL{
		config:    config,
		orch:      orch,
		reporter:  reporter,
		uploads:   uploads,
		presenter: presenter,
		graph:     document.PlaceholderGraphStats(),
		in:        os.Stdin,
		out:       os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start runs the session until exit, EOF or ctx cancellation.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	th := ui.GetCurrentTheme()
	reader := bufio.NewReader(r.in)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(r.out, th.Paint(th.Success, "rag> "))

		input, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && input != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%s\n", th.Paint(th.Error, "Read error: "+err.Error()))
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(ctx, input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	th := ui.GetCurrentTheme()
	fmt.Fprintf(r.out, "\n%s\n", th.Paint(th.Primary, "╔══════════════════════════════════════════════════════════╗"))
	fmt.Fprintf(r.out, "%s   %s   %s\n", th.Paint(th.Primary, "║"),
		th.Paint(th.Bold, "RAG vs Graph RAG - Interactive Comparison"), th.Paint(th.Primary, "            ║"))
	fmt.Fprintf(r.out, "%s\n\n", th.Paint(th.Primary, "╚══════════════════════════════════════════════════════════╝"))
}

func (r *REPL) printHelp() {
	th := ui.GetCurrentTheme()
	cmd := func(s string) string { return th.Paint(th.Warning, s) }
	fmt.Fprintf(r.out, "%s\n", th.Paint(th.Bold, "Available commands:"))
	fmt.Fprintf(r.out, "  %s  - Ask both systems (bare text works too)\n", cmd("ask <question>"))
	fmt.Fprintf(r.out, "  %s   - Upload a PDF document\n", cmd("upload <file>"))
	fmt.Fprintf(r.out, "  %s             - Show the uploaded document\n", cmd("doc"))
	fmt.Fprintf(r.out, "  %s           - Show the knowledge graph summary\n", cmd("graph"))
	fmt.Fprintf(r.out, "  %s   - Save the last comparison (.md or .xlsx)\n", cmd("export <file>"))
	fmt.Fprintf(r.out, "  %s          - Display the session status\n", cmd("status"))
	fmt.Fprintf(r.out, "  %s            - Display this help\n", cmd("help"))
	fmt.Fprintf(r.out, "  %s     - Exit interactive mode\n", cmd("exit / quit"))
}

// processCommand runs one input line. It returns false when the REPL
// should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "ask", "a":
		r.cmdAsk(ctx, rest)
	case "upload", "up":
		r.cmdUpload(ctx, rest)
	case "doc", "d":
		r.cmdDoc()
	case "graph", "g":
		DisplayGraphStats(r.out, r.graph)
	case "export", "x":
		r.cmdExport(rest)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		th := ui.GetCurrentTheme()
		fmt.Fprintln(r.out, th.Paint(th.Success, "Goodbye!"))
		return false
	default:
		r.cmdAsk(ctx, input)
	}
	return true
}

func (r *REPL) cmdAsk(ctx context.Context, question string) {
	th := ui.GetCurrentTheme()
	if strings.TrimSpace(question) == "" {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Usage: ask <question>"))
		return
	}

	r.reporter.Begin()
	cmp, err := r.orch.Ask(ctx, question)
	r.reporter.End()
	if err != nil {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Error: "+err.Error()))
		return
	}

	r.last = &cmp
	r.answers++
	if err := r.presenter.PresentComparison(cmp, r.out); err != nil {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Error presenting results: "+err.Error()))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdUpload(ctx context.Context, path string) {
	th := ui.GetCurrentTheme()
	if path == "" {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Usage: upload <file.pdf>"))
		return
	}
	res, err := r.uploads.Run(ctx, path, UploadProgressHandlers(r.out))
	if err != nil {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Error: "+err.Error()))
		return
	}
	r.orch.SetDocumentID(res.DocumentID)
	r.doc = &res.Document
	DisplayUploadResult(r.out, res)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdDoc() {
	if r.doc == nil {
		fmt.Fprintln(r.out, "No document uploaded yet. Use upload <file.pdf>.")
		return
	}
	DisplayDocument(r.out, *r.doc)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdExport(path string) {
	th := ui.GetCurrentTheme()
	switch {
	case path == "":
		fmt.Fprintln(r.out, th.Paint(th.Error, "Usage: export <file.md|file.xlsx>"))
		return
	case r.last == nil:
		fmt.Fprintln(r.out, "Nothing to export yet. Ask a question first.")
		return
	}
	if err := WriteComparisonToFile(*r.last, path); err != nil {
		fmt.Fprintln(r.out, th.Paint(th.Error, "Error: "+err.Error()))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", th.Paint(th.Success, "✓ Comparison saved to:"), path)
}

func (r *REPL) cmdStatus() {
	th := ui.GetCurrentTheme()
	value := func(s string) string { return th.Paint(th.Primary, s) }
	docName := "none"
	if r.doc != nil {
		docName = r.doc.Name
	}
	fmt.Fprintf(r.out, "\n%s\n", th.Paint(th.Bold, "Session status:"))
	fmt.Fprintf(r.out, "  Backend:      %s\n", value(r.config.BaseURL))
	fmt.Fprintf(r.out, "  Timeout:      %s\n", value(r.config.Timeout.String()))
	fmt.Fprintf(r.out, "  Document:     %s\n", value(docName))
	fmt.Fprintf(r.out, "  Document ID:  %s\n", value(r.orch.DocumentID()))
	fmt.Fprintf(r.out, "  Questions:    %s\n", value(fmt.Sprint(r.answers)))
	if r.last != nil {
		for _, res := range r.last.Results {
			fmt.Fprintf(r.out, "  %-17s%s (%s)\n", res.Name+":", value(sourceLabel(res)), format.FormatExecutionDuration(res.Duration))
		}
	}
	fmt.Fprintln(r.out)
}
