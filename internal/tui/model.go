package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/config"
	"github.com/agbru/ragcompare/internal/document"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/notify"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/upload"
)

// Session holds the services a dashboard drives.
type Session struct {
	Orchestrator *orchestration.Orchestrator
	Uploads      *upload.Flow
	Notices      *notify.Center

	ref *programRef
}

// NewSession wires the services to a program reference that is set once the
// program exists.
func NewSession(backend api.Backend, cfg config.AppConfig, logger logging.Logger) Session {
	ref := &programRef{}
	center := notify.NewCenter(cfg.NoticeDuration, noticeSink(ref))
	reporter := &TUIReporter{ref: ref, notices: center}
	return Session{
		Orchestrator: orchestration.New(backend, orchestration.SettingsFromConfig(cfg), reporter, logger),
		Uploads:      upload.NewFlow(backend, upload.DefaultTick, cfg.DocumentID, logger),
		Notices:      center,
		ref:          ref,
	}
}

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	submitting bool
	resetting  bool
	busy       bool
	answered   bool
	round      uint64
	// lastAnswered is the newest round reported answered, which may arrive
	// before the submit result of that round.
	lastAnswered uint64
	exitCode     int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// Layout constants for the TUI dashboard.
const (
	headerHeight   = 3
	footerHeight   = 1
	questionHeight = 5
	statusHeight   = 1
	metricsHeight  = 2
	minPaneHeight  = 5
)

// bodyHeight returns the available height below the header.
func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, 0)
}

// paneWidth returns the width of one answer pane.
func (l LayoutManager) paneWidth() int {
	return l.width / orchestration.NumChannels
}

// paneHeight returns the height of the answer panes.
func (l LayoutManager) paneHeight() int {
	return max(l.bodyHeight()-questionHeight-statusHeight-metricsHeight, minPaneHeight)
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	metrics MetricsModel
	help    help.Model
	spinner spinner.Model
	keymap  KeyMap

	tab      Tab
	typing   bool
	uploads  UploadPane
	question QuestionInput
	panes    [orchestration.NumChannels]AnswerPane
	document *document.Info
	graph    document.GraphStats
	notice   *notify.Notice

	ExecutionState
	LayoutManager

	session Session
}

// NewModel creates a dashboard opened on the Q&A tab.
func NewModel(parentCtx context.Context, s Session, version string) Model {
	if s.ref == nil {
		s.ref = &programRef{}
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = bannerStyle

	m := Model{
		header:   NewHeaderModel(version),
		metrics:  NewMetricsModel(),
		help:     help.New(),
		spinner:  sp,
		keymap:   DefaultKeyMap(),
		uploads:  NewUploadPane(),
		question: NewQuestionInput(),
		graph:    document.PlaceholderGraphStats(),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		session: s,
	}
	for _, ch := range orchestration.AllChannels {
		m.panes[ch] = NewAnswerPane(ch)
	}
	m.switchTab(TabQA)
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.question.Focus(),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ChannelStateMsg:
		if m.panes[msg.Channel].Apply(msg.State) {
			m.metrics.UpdateWords(msg.Channel, m.panes[msg.Channel].Words(), time.Now())
		}
		return m, nil

	case ChannelFailedMsg:
		m.panes[msg.Channel].MarkFailed(msg.Generation)
		return m, nil

	case SubmitResultMsg:
		m.submitting = false
		if msg.Accepted {
			m.round = msg.Round
			m.answered = m.lastAnswered == msg.Round
			m.busy = !m.answered
			m.metrics.Reset()
		}
		return m, nil

	case RoundAnsweredMsg:
		m.lastAnswered = max(m.lastAnswered, msg.Comparison.Round)
		if msg.Comparison.Round != m.round || !m.busy {
			return m, nil // stale round, or answered before its submit result
		}
		m.busy = false
		m.answered = true
		return m, nil

	case ResetDoneMsg:
		m.resetting = false
		m.busy = false
		m.answered = false
		m.round = 0
		m.metrics.Reset()
		return m, nil

	case NoticeMsg:
		if msg.Visible {
			n := msg.Notice
			m.notice = &n
		} else if m.notice != nil && m.notice.ID == msg.Notice.ID {
			m.notice = nil
		}
		return m, nil

	case UploadProgressMsg:
		m.uploads.ApplyProgress(msg)
		return m, nil

	case UploadDoneMsg:
		if !m.uploads.Finish(msg) || msg.Err != nil {
			return m, nil
		}
		info := msg.Result.Document
		m.document = &info
		m.session.Orchestrator.SetDocumentID(msg.Result.DocumentID)
		return m, nil

	case ContextCanceledMsg:
		m.exitCode = apperrors.ExitErrorCanceled
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC,
		!m.typing && key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NextTab):
		return m, m.switchTab(m.tab.next(1))

	case key.Matches(msg, m.keymap.PrevTab):
		return m, m.switchTab(m.tab.next(-1))

	case key.Matches(msg, m.keymap.Dismiss):
		if m.notice != nil {
			id := m.notice.ID
			m.notice = nil
			return m, dismissCmd(m.session.Notices, id)
		}
		m.blur()
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		if m.resetting {
			return m, nil
		}
		m.resetting = true
		return m, resetCmd(m.session.Orchestrator)

	case key.Matches(msg, m.keymap.PageUp):
		for i := range m.panes {
			m.panes[i].ScrollUp()
		}
		return m, nil

	case key.Matches(msg, m.keymap.PageDown):
		for i := range m.panes {
			m.panes[i].ScrollDown()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		return m.submit()
	}

	if m.tab == TabQA {
		for i, b := range m.keymap.Samples {
			if key.Matches(msg, b) {
				m.question.SetValue(orchestration.SampleQuestions[i])
				return m, m.focus()
			}
		}
	}

	if !m.typing {
		for i, b := range m.keymap.GoTab {
			if key.Matches(msg, b) {
				return m, m.switchTab(Tab(i))
			}
		}
		if key.Matches(msg, m.keymap.Focus) {
			return m, m.focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabQA:
		m.question, cmd = m.question.Update(msg)
	case TabUpload:
		m.uploads, cmd = m.uploads.Update(msg)
	}
	return m, cmd
}

// submit handles enter on the active tab.
func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabQA:
		if !m.typing {
			return m, m.focus()
		}
		q := strings.TrimSpace(m.question.Value())
		if q == "" || m.submitting || m.busy || m.session.Orchestrator.IsBusy() {
			return m, nil
		}
		m.submitting = true
		return m, submitCmd(m.ctx, m.session.Orchestrator, q)

	case TabUpload:
		if !m.typing {
			return m, m.focus()
		}
		path := m.uploads.Path()
		if path == "" || m.uploads.Uploading() {
			return m, nil
		}
		gen := m.uploads.Begin()
		return m, uploadCmd(m.ctx, m.session, path, gen)
	}
	return m, nil
}

// switchTab activates t and focuses its input, if any.
func (m *Model) switchTab(t Tab) tea.Cmd {
	m.blur()
	m.tab = t
	return m.focus()
}

func (m *Model) focus() tea.Cmd {
	switch m.tab {
	case TabQA:
		m.typing = true
		return m.question.Focus()
	case TabUpload:
		m.typing = true
		return m.uploads.Focus()
	}
	return nil
}

func (m *Model) blur() {
	m.typing = false
	m.question.Blur()
	m.uploads.Blur()
}

// hasText reports whether any pane shows text.
func (m Model) hasText() bool {
	for _, p := range m.panes {
		if p.State().Text != "" {
			return true
		}
	}
	return false
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := m.header.View(m.tab, m.session.Orchestrator.DocumentID())
	footer := m.help.View(m.keymap)

	var body string
	switch m.tab {
	case TabUpload:
		body = m.uploads.View()
	case TabGraph:
		body = renderGraph(m.graph, m.width)
	case TabViewer:
		body = renderViewer(m.document, m.width)
	default:
		body = m.qaView()
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	if m.notice != nil {
		body = overlayNotice(body, renderNotice(*m.notice, m.width/2), m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// qaView renders the Q&A tab.
func (m Model) qaView() string {
	var status string
	switch {
	case (m.busy || m.submitting) && !m.answered:
		status = m.spinner.View() + " " + bannerStyle.Render(WaitingBanner)
	case !m.answered && !m.hasText():
		return lipgloss.JoinVertical(lipgloss.Left, m.question.View(), renderSampleQuestions())
	default:
		status = dimStyle.Render("enter to ask again · ctrl+r to clear")
	}

	panes := make([]string, 0, orchestration.NumChannels)
	for _, p := range m.panes {
		panes = append(panes, p.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.question.View(),
		status,
		lipgloss.JoinHorizontal(lipgloss.Top, panes...),
		m.metrics.View(),
	)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.help.Width = m.width
	m.metrics.SetWidth(m.paneWidth())
	m.question.SetWidth(m.width)
	m.uploads.SetWidth(m.width)
	for i := range m.panes {
		m.panes[i].SetSize(m.paneWidth(), m.paneHeight())
	}
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, backend api.Backend, cfg config.AppConfig, logger logging.Logger, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	s := NewSession(backend, cfg, logger)
	defer s.Notices.Close()

	model := NewModel(ctx, s, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	s.ref.SetProgram(p)
	defer s.ref.SetProgram(nil)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("dashboard stopped", err)
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// submitCmd submits q outside the event loop: the orchestrator reports
// through the program, and Send blocks while Update runs.
func submitCmd(ctx context.Context, orch *orchestration.Orchestrator, q string) tea.Cmd {
	return func() tea.Msg {
		ok := orch.Submit(ctx, q)
		return SubmitResultMsg{Accepted: ok, Round: orch.Round()}
	}
}

// resetCmd clears both channels outside the event loop.
func resetCmd(orch *orchestration.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		orch.Reset()
		return ResetDoneMsg{}
	}
}

// dismissCmd hides notice id.
func dismissCmd(center *notify.Center, id uint64) tea.Cmd {
	if center == nil {
		return nil
	}
	return func() tea.Msg {
		center.Dismiss(id)
		return nil
	}
}

// uploadCmd runs an upload and streams its progress to the program.
func uploadCmd(ctx context.Context, s Session, path string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Uploads.Run(ctx, path, upload.Handlers{
			OnProgress: func(p upload.Progress) {
				s.ref.Send(UploadProgressMsg{Progress: p, Generation: gen})
			},
			OnNotice: func(msg string) {
				if s.Notices != nil {
					s.Notices.Error(msg)
				}
			},
		})
		return UploadDoneMsg{Result: res, Err: err, Generation: gen}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCanceledMsg{Err: ctx.Err()}
	}
}
