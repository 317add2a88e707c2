package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/api/mocks"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
	"github.com/agbru/ragcompare/internal/ui"
	"github.com/agbru/ragcompare/internal/upload"
)

type replFixture struct {
	querier  *mocks.MockQuerier
	uploader *mocks.MockUploader
	repl     *REPL
	out      *bytes.Buffer
}

func newREPLFixture(t *testing.T) *replFixture {
	t.Helper()
	useMockSpinner(t)
	prev := ui.GetCurrentTheme()
	t.Cleanup(func() { ui.SetCurrentTheme(prev) })
	ui.InitTheme(true)

	ctrl := gomock.NewController(t)
	querier := mocks.NewMockQuerier(ctrl)
	uploader := mocks.NewMockUploader(ctrl)

	out := &bytes.Buffer{}
	reporter := NewSpinnerReporter(out)
	orch := orchestration.New(querier, orchestration.Settings{
		Interval:    time.Millisecond,
		SettleDelay: time.Millisecond,
		Simulate:    true,
		DocumentID:  "uploaded_doc",
	}, reporter, nil)
	flow := upload.NewFlow(uploader, time.Millisecond, "uploaded_doc", nil)

	r := NewREPL(orch, reporter, flow, TerminalPresenter{}, REPLConfig{BaseURL: "http://backend/api", Timeout: 30 * time.Second})
	r.SetOutput(out)
	return &replFixture{querier: querier, uploader: uploader, repl: r, out: out}
}

func (f *replFixture) run(input string) string {
	f.repl.SetInput(strings.NewReader(input))
	f.repl.Start(context.Background())
	return f.out.String()
}

func TestREPL_AskAndBareQuestion(t *testing.T) {
	f := newREPLFixture(t)
	f.querier.EXPECT().QueryRAG(gomock.Any(), "What is X?", "uploaded_doc").
		Return(stream.CompleteText("X is a thing"), nil).Times(2)
	f.querier.EXPECT().QueryGraphRAG(gomock.Any(), "What is X?", "uploaded_doc").
		Return(stream.CompleteText("X relates to Y"), nil).Times(2)

	out := f.run("ask What is X?\nWhat is X?\nexit\n")

	if n := strings.Count(out, "X is a thing"); n != 2 {
		t.Errorf("RAG answer printed %d times, want 2:\n%s", n, out)
	}
	if n := strings.Count(out, "X relates to Y"); n != 2 {
		t.Errorf("Graph RAG answer printed %d times, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("exit should say goodbye")
	}
}

func TestREPL_FailureShowsNoticeAndDemoAnswer(t *testing.T) {
	f := newREPLFixture(t)
	f.querier.EXPECT().QueryRAG(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(stream.Source{}, apperrors.HTTPStatusError{StatusCode: 500})
	f.querier.EXPECT().QueryGraphRAG(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(stream.CompleteText("graph ok"), nil)

	out := f.run("Why?\n")

	if !strings.Contains(out, "Traditional RAG API failed. Using demo response.") {
		t.Errorf("missing failure notice:\n%s", out)
	}
	if !strings.Contains(out, orchestration.FallbackAnswer(orchestration.ChannelRAG, "Why?")) {
		t.Errorf("missing demo answer:\n%s", out)
	}
	if !strings.Contains(out, "graph ok") {
		t.Errorf("missing graph answer:\n%s", out)
	}
}

func TestREPL_UploadSetsDocumentID(t *testing.T) {
	f := newREPLFixture(t)
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f.uploader.EXPECT().Upload(gomock.Any(), "paper.pdf", gomock.Any()).
		Return(api.UploadAck{DocumentID: "doc-9"}, nil)
	f.querier.EXPECT().QueryRAG(gomock.Any(), "q", "doc-9").Return(stream.CompleteText("a"), nil)
	f.querier.EXPECT().QueryGraphRAG(gomock.Any(), "q", "doc-9").Return(stream.CompleteText("b"), nil)

	out := f.run("upload " + path + "\ndoc\nask q\nstatus\n")

	for _, want := range []string{"✓ Uploaded paper.pdf as doc-9", "Document Viewer", "Document ID:  doc-9", "Questions:    1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestREPL_Commands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"help", "help\n", []string{"Available commands:", "upload <file>"}},
		{"graph", "graph\n", []string{"Knowledge Graph", "1,432", "89%", "Graph Visualization Loading..."}},
		{"doc without upload", "doc\n", []string{"No document uploaded yet."}},
		{"export without answer", "export out.md\n", []string{"Nothing to export yet."}},
		{"ask usage", "ask\n", []string{"Usage: ask <question>"}},
		{"upload usage", "upload\n", []string{"Usage: upload <file.pdf>"}},
		{"upload non pdf", "upload /definitely/missing.pdf\n", []string{`Error: validation error for "file"`}},
		{"eof", "", []string{"Goodbye!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newREPLFixture(t)
			out := f.run(tt.input)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestREPL_Export(t *testing.T) {
	f := newREPLFixture(t)
	f.querier.EXPECT().QueryRAG(gomock.Any(), gomock.Any(), gomock.Any()).Return(stream.CompleteText("a"), nil)
	f.querier.EXPECT().QueryGraphRAG(gomock.Any(), gomock.Any(), gomock.Any()).Return(stream.CompleteText("b"), nil)

	path := filepath.Join(t.TempDir(), "last.md")
	out := f.run("ask q\nexport " + path + "\n")
	if !strings.Contains(out, "✓ Comparison saved to: "+path) {
		t.Errorf("output = %s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export not written: %v", err)
	}
}
