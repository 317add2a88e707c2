package app

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/urfave/cli/v3"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/api/mocks"
	"github.com/agbru/ragcompare/internal/config"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/server"
	"github.com/agbru/ragcompare/internal/stream"
)

// demoBackend starts an in-process demo backend and returns its base URL.
func demoBackend(t *testing.T) string {
	t.Helper()
	srv := server.NewServer(server.Options{Security: server.DefaultSecurityConfig()}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

// deadBackend returns a base URL on which nothing listens.
func deadBackend(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(nil)
	url := ts.URL + "/api"
	ts.Close()
	return url
}

func newTestApp(in string) (*Application, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	a := New(&out, &errOut,
		WithInput(strings.NewReader(in)),
		WithTerminalDetector(func(any) bool { return false }),
	)
	return a, &out, &errOut
}

// fastArgs keeps reveal and fallback delays short.
func fastArgs(baseURL string) []string {
	return []string{
		"ragcompare",
		"--base-url", baseURL,
		"--reveal-interval", "1ms",
		"--settle-delay", "0s",
		"--timeout", "2s",
		"--no-color",
	}
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\nbody\n%%EOF\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplication_Ask(t *testing.T) {
	t.Parallel()
	a, out, errOut := newTestApp("")

	code := a.Run(context.Background(), append(fastArgs(demoBackend(t)), "ask", "What", "is", "X?"))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{
		"What is X?",
		"vector index of " + config.DefaultDocumentID,
		"knowledge graph of " + config.DefaultDocumentID,
		"Global Status: Success",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplication_AskDegraded(t *testing.T) {
	t.Parallel()
	a, out, _ := newTestApp("")

	code := a.Run(context.Background(), append(fastArgs(deadBackend(t)), "ask", "anyone there?"))
	if code != apperrors.ExitErrorDegraded {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorDegraded)
	}
	if !strings.Contains(out.String(), "Global Status: Degraded") {
		t.Errorf("output:\n%s", out)
	}
}

func TestApplication_AskExport(t *testing.T) {
	t.Parallel()
	a, out, errOut := newTestApp("")
	path := filepath.Join(t.TempDir(), "cmp.md")

	code := a.Run(context.Background(), append(fastArgs(demoBackend(t)), "ask", "--output", path, "Who?"))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), "Who?") {
		t.Errorf("export does not contain the question:\n%s", data)
	}
	if !strings.Contains(out.String(), "Comparison saved to") || !strings.Contains(out.String(), path) {
		t.Errorf("output:\n%s", out)
	}
}

func TestApplication_ConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"zero timeout", []string{"--timeout", "0s", "ask", "q"}},
		{"bad base url", []string{"--base-url", "localhost", "ask", "q"}},
		{"bad log level", []string{"--log-level", "loud", "ask", "q"}},
		{"blank question", []string{"ask", "   "}},
		{"missing question", []string{"ask"}},
		{"missing upload path", []string{"upload"}},
		{"upload of a non pdf", []string{"upload", filepath.Join(os.TempDir(), "does-not-exist.pdf")}},
		{"missing config file", []string{"--config", filepath.Join(os.TempDir(), "nope-ragcompare.yaml"), "ask", "q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _, errOut := newTestApp("")
			code := a.Run(context.Background(), append([]string{"ragcompare"}, tt.args...))
			if code != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, apperrors.ExitErrorConfig, errOut)
			}
			if !strings.Contains(errOut.String(), "Error:") {
				t.Errorf("no error printed: %q", errOut)
			}
		})
	}
}

func TestApplication_Upload(t *testing.T) {
	t.Parallel()
	a, out, errOut := newTestApp("")

	code := a.Run(context.Background(), append(fastArgs(demoBackend(t)), "upload", writePDF(t, "report.pdf")))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"report.pdf", "Document Viewer", "ragcompare ask --document-id"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplication_UploadOffline(t *testing.T) {
	t.Parallel()
	a, out, _ := newTestApp("")

	code := a.Run(context.Background(), append(fastArgs(deadBackend(t)), "upload", writePDF(t, "a.pdf")))
	if code != apperrors.ExitSuccess {
		t.Fatalf("a failed upload must still succeed, exit code = %d", code)
	}
	if !strings.Contains(out.String(), "--document-id "+config.DefaultDocumentID) {
		t.Errorf("offline upload should fall back to the default document id:\n%s", out)
	}
}

func TestApplication_DefaultsToREPLWithoutTerminal(t *testing.T) {
	t.Parallel()
	a, out, errOut := newTestApp("status\nexit\n")

	code := a.Run(context.Background(), fastArgs(demoBackend(t)))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("REPL did not run to exit:\n%s", out)
	}
}

func TestApplication_Version(t *testing.T) {
	t.Parallel()
	a, out, _ := newTestApp("")

	if code := a.Run(context.Background(), []string{"ragcompare", "version"}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(out.String(), "ragcompare "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestApplication_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	a, out, errOut := newTestApp("")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code := a.Run(ctx, []string{"ragcompare", "--no-color", "serve", "--addr", "127.0.0.1:0", "--stream"})
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out.String(), "127.0.0.1:0 answering with text streams") {
		t.Errorf("output = %q", out)
	}
}

// resolveWith runs a bare command carrying the global flags and returns the
// configuration resolved from args.
func resolveWith(t *testing.T, args ...string) config.AppConfig {
	t.Helper()
	var got config.AppConfig
	cmd := &cli.Command{
		Name:  "test",
		Flags: globalFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			got, err = resolveConfig(cmd)
			return err
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	return got
}

func TestResolveConfig_Defaults(t *testing.T) {
	t.Parallel()
	got := resolveWith(t)
	want := config.Default()
	if got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}

// Not parallel: uses t.Setenv.
func TestResolveConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragcompare.yaml")
	yaml := "base_url: http://file.example/api\ntimeout: 10s\ndocument_id: from-file\nsimulate: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvPrefix+"TIMEOUT", "20s")
	t.Setenv(config.EnvPrefix+"DOCUMENT_ID", "from-env")

	got := resolveWith(t, "--config", path, "--document-id", "from-flag")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file over default", got.BaseURL, "http://file.example/api"},
		{"env over file", got.Timeout, 20 * time.Second},
		{"flag over env", got.DocumentID, "from-flag"},
		{"file bool", got.Simulate, false},
		{"default kept", got.RevealInterval, config.DefaultRevealInterval},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestApplication_AskPartialWithMockBackend(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().QueryRAG(gomock.Any(), "Why?", "doc-7").
		Return(stream.CompleteText("Because of the vectors."), nil)
	backend.EXPECT().QueryGraphRAG(gomock.Any(), "Why?", "doc-7").
		Return(stream.Source{}, apperrors.HTTPStatusError{StatusCode: 500})

	var out, errOut bytes.Buffer
	a := New(&out, &errOut,
		WithInput(strings.NewReader("")),
		WithTerminalDetector(func(any) bool { return false }),
		WithBackendFactory(func(config.AppConfig, logging.Logger) api.Backend { return backend }),
	)

	args := append(fastArgs("http://unused.invalid/api"), "--document-id", "doc-7", "ask", "Why?")
	if code := a.Run(context.Background(), args); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Because of the vectors.") {
		t.Errorf("RAG answer missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Global Status: Partial. 1 of 2 backends answered.") {
		t.Errorf("status line missing:\n%s", out.String())
	}
}
