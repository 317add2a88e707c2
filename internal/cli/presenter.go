package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/format"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/ui"
)

// DefaultWrapWidth is the markdown word-wrap width when the terminal width
// is unknown.
const DefaultWrapWidth = 80

// TerminalPresenter implements orchestration.ComparisonPresenter for the
// terminal. With Markdown set the comparison is rendered through glamour;
// otherwise it is printed as plain text, which is what pipes and files get.
type TerminalPresenter struct {
	Markdown bool
	// Width is the word-wrap width for markdown rendering. Zero uses
	// DefaultWrapWidth.
	Width int
}

// Verify interface compliance.
var _ orchestration.ComparisonPresenter = TerminalPresenter{}

// PresentComparison writes both answers of cmp to out.
func (p TerminalPresenter) PresentComparison(cmp orchestration.Comparison, out io.Writer) error {
	if p.Markdown {
		rendered, err := p.render(FormatComparisonMarkdown(cmp))
		if err == nil {
			_, err = io.WriteString(out, rendered)
			return err
		}
		// Rendering failed: fall through to plain output.
	}
	DisplayComparison(out, cmp)
	return nil
}

func (p TerminalPresenter) render(md string) (string, error) {
	width := p.Width
	if width <= 0 {
		width = DefaultWrapWidth
	}
	style := "dark"
	if ui.GetCurrentTheme().Name == ui.NoColorTheme.Name {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// DisplayComparison prints cmp as coloured plain text.
func DisplayComparison(out io.Writer, cmp orchestration.Comparison) {
	th := ui.GetCurrentTheme()
	fmt.Fprintf(out, "\n%s %s\n", th.Paint(th.Bold, "Question:"), cmp.Question)
	fmt.Fprintf(out, "%s %s\n", th.Paint(th.Secondary, "Document:"), cmp.DocumentID)

	for _, res := range cmp.Results {
		accent := th.RAG
		if res.Channel == orchestration.ChannelGraphRAG {
			accent = th.Graph
		}
		fmt.Fprintf(out, "\n%s %s\n",
			th.Paint(accent, "── "+res.Name+" ──"),
			th.Paint(th.Secondary, "("+format.FormatExecutionDuration(res.Duration)+")"))
		fmt.Fprintln(out, res.Outcome.Text)
		if note := resultNote(res); note != "" {
			fmt.Fprintln(out, th.Paint(th.Warning, note))
		}
	}
}

// FormatComparisonMarkdown returns cmp as a markdown document.
func FormatComparisonMarkdown(cmp orchestration.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cmp.Question)
	fmt.Fprintf(&b, "Document `%s`, question #%d", cmp.DocumentID, cmp.Round)
	if !cmp.StartedAt.IsZero() {
		fmt.Fprintf(&b, ", asked %s", cmp.StartedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
	for _, res := range cmp.Results {
		fmt.Fprintf(&b, "\n## %s\n\n", res.Name)
		text := strings.TrimSpace(res.Outcome.Text)
		if text == "" {
			text = "_No answer._"
		}
		b.WriteString(text)
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "_Answered in %s._", format.FormatExecutionDuration(res.Duration))
		if note := resultNote(res); note != "" {
			fmt.Fprintf(&b, " _%s_", note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// resultNote explains a non-nominal outcome, or returns "".
func resultNote(res orchestration.ChannelResult) string {
	switch {
	case res.Outcome.Canceled:
		return "Interrupted."
	case res.Outcome.UsedFallback:
		return "Demo response: " + describeError(res.Outcome.Err) + "."
	case res.Outcome.Err != nil:
		return "Failed: " + describeError(res.Outcome.Err) + "."
	}
	return ""
}

// describeError strips the channel prefix of a QueryError, which is already
// shown in the section title.
func describeError(err error) string {
	if err == nil {
		return "no answer"
	}
	var qe apperrors.QueryError
	if errors.As(err, &qe) && qe.Cause != nil {
		return qe.Cause.Error()
	}
	return err.Error()
}
