package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vidu-cli/internal/config"
	"vidu-cli/internal/model"
	"vidu-cli/internal/vidu"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	watchMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	watchPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	taskID := fs.String("task-id", "", "task id from the submit response (required)")
	interval := fs.Duration("interval", vidu.DefaultPollInterval, "polling interval")
	timeout := fs.Duration("timeout", vidu.DefaultPollTimeout, "polling timeout")
	download := fs.String("download", "", "download the video to this path when available")
	urlTemplate := fs.String("url", "", "override endpoint URL template; use a {task_id} placeholder")
	method := fs.String("method", http.MethodGet, "HTTP method when using --url: GET|POST")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*taskID) == "" {
		return errors.New("--task-id is required")
	}
	if !stdinIsTTY() {
		return errors.New("watch requires an interactive terminal (TTY); use status --wait instead")
	}
	override, err := endpointOverride(*urlTemplate, *method)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := vidu.NewClient(cfg)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	m := watchModel{
		client:   client,
		taskID:   strings.TrimSpace(*taskID),
		interval: *interval,
		timeout:  *timeout,
		override: override,
		spinner:  sp,
		started:  time.Now(),
	}
	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	fm, ok := finalModel.(watchModel)
	if !ok {
		return nil
	}

	switch {
	case fm.queryErr != nil:
		return fm.queryErr
	case fm.timedOut:
		return exitWithCode(2, vidu.ErrPollTimeout)
	case fm.canceled:
		fmt.Printf("stopped watching task %s (last state: %s)\n", fm.taskID, orNone(fm.state))
		return nil
	default:
		return reportOutcome(client, fm.taskID, fm.outcome(), *download, false)
	}
}

type watchQueryMsg struct {
	status vidu.TaskStatus
	err    error
}

type watchPollTickMsg struct{}

type watchModel struct {
	client   *vidu.Client
	taskID   string
	interval time.Duration
	timeout  time.Duration
	override *vidu.EndpointOverride

	spinner spinner.Model
	started time.Time

	state   string
	viaURL  string
	body    map[string]any
	queries int

	done     bool
	canceled bool
	timedOut bool
	queryErr error
}

func (m watchModel) outcome() vidu.PollOutcome {
	return vidu.PollOutcome{
		Body:    m.body,
		State:   m.state,
		ViaURL:  m.viaURL,
		Queries: m.queries,
	}
}

func (m watchModel) queryCmd() tea.Cmd {
	client, taskID, override := m.client, m.taskID, m.override
	return func() tea.Msg {
		status, err := client.QueryTask(context.Background(), taskID, override)
		return watchQueryMsg{status: status, err: err}
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.queryCmd())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case watchQueryMsg:
		if msg.err != nil {
			m.queryErr = msg.err
			return m, tea.Quit
		}
		m.queries++
		m.body = msg.status.Body
		m.state = model.StateOf(msg.status.Body)
		m.viaURL = msg.status.ViaURL

		if model.IsTerminal(m.state) {
			m.done = true
			return m, tea.Quit
		}
		if time.Since(m.started) > m.timeout {
			m.timedOut = true
			return m, tea.Quit
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return watchPollTickMsg{}
		})

	case watchPollTickMsg:
		return m, m.queryCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.done || m.canceled || m.timedOut || m.queryErr != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("watching task "+m.taskID) + "\n")

	stateLine := fmt.Sprintf("%s state: %s", m.spinner.View(), renderState(m.state))
	b.WriteString(stateLine + "\n")
	b.WriteString(watchMutedStyle.Render(fmt.Sprintf("elapsed %s | %d queries | every %s",
		time.Since(m.started).Round(time.Second), m.queries, m.interval)) + "\n")
	if m.viaURL != "" {
		b.WriteString(watchMutedStyle.Render("via "+m.viaURL) + "\n")
	}
	b.WriteString(watchMutedStyle.Render("press q to stop watching") + "\n")

	return watchPanelStyle.Render(b.String())
}

func renderState(state string) string {
	switch state {
	case model.StateSuccess:
		return watchOKStyle.Render(state)
	case model.StateFailed:
		return watchErrStyle.Render(state)
	case "":
		return watchMutedStyle.Render("(none)")
	default:
		return state
	}
}

func orNone(state string) string {
	if state == "" {
		return "(none)"
	}
	return state
}
