package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/agbru/ragcompare/internal/document"
	"github.com/agbru/ragcompare/internal/ui"
	"github.com/agbru/ragcompare/internal/upload"
)

// UploadProgressHandlers returns handlers that redraw a progress bar on a
// single line of out and print the failure notice on its own line.
func UploadProgressHandlers(out io.Writer) upload.Handlers {
	var mu sync.Mutex
	return upload.Handlers{
		OnProgress: func(p upload.Progress) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "\r%s %5.1f%%", progressBar(p.Percent/100, ProgressBarWidth), p.Percent)
			if p.Phase == upload.PhaseDone {
				fmt.Fprintln(out)
			}
		},
		OnNotice: func(msg string) {
			mu.Lock()
			defer mu.Unlock()
			DisplayNotice(out, "Upload", msg)
		},
	}
}

// DisplayUploadResult prints the preview of an uploaded document.
func DisplayUploadResult(out io.Writer, res upload.Result) {
	th := ui.GetCurrentTheme()
	status := th.Paint(th.Success, "✓ Uploaded")
	if res.Masked() {
		status = th.Paint(th.Warning, "✓ Uploaded (offline)")
	}
	fmt.Fprintf(out, "%s %s as %s\n", status, res.Document.Name, th.Paint(th.Primary, res.DocumentID))
	DisplayDocument(out, res.Document)
}

// DisplayDocument prints the document viewer pane.
func DisplayDocument(out io.Writer, info document.Info) {
	th := ui.GetCurrentTheme()
	fmt.Fprintf(out, "\n%s\n", th.Paint(th.Bold, "Document Viewer"))
	fmt.Fprintf(out, "  File:  %s\n", info.Name)
	fmt.Fprintf(out, "  Size:  %s\n", info.SizeMB())
	if !info.Readable {
		fmt.Fprintf(out, "  %s\n", th.Paint(th.Secondary, "Preview unavailable for this file."))
		return
	}
	fmt.Fprintf(out, "  Pages: %d\n", info.Pages)
	if info.Excerpt != "" {
		fmt.Fprintf(out, "\n  %s\n", th.Paint(th.Secondary, info.Excerpt))
	}
}

// DisplayGraphStats prints the knowledge graph tab.
func DisplayGraphStats(out io.Writer, g document.GraphStats) {
	th := ui.GetCurrentTheme()
	fmt.Fprintf(out, "\n%s\n", th.Paint(th.Bold, "Knowledge Graph"))
	for _, card := range g.Cards() {
		fmt.Fprintf(out, "  %-14s %s\n", card[0]+":", th.Paint(th.Graph, card[1]))
	}
	fmt.Fprintf(out, "  %s\n", th.Paint(th.Secondary, document.GraphLoadingNotice))
}
