package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	keys  keyMap
	help  help.Model
	input textinput.Model

	// adding is true while the quick-add prompt has focus.
	adding bool

	width  int
	height int

	economy  engine.EconomyState
	progress float64
	tasks    []engine.Task
	now      time.Time

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	economy  engine.EconomyState
	progress float64
	tasks    []engine.Task
	now      time.Time
}

// actionMsg reports the outcome of a task action; the board reloads after it.
type actionMsg struct {
	text string
	err  error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	input := textinput.New()
	input.Placeholder = "Task name [reward]"
	input.CharLimit = 200
	input.Cursor.SetMode(cursor.CursorStatic)

	return boardModel{
		ctx:     ctx,
		svc:     svc,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{
			economy:  m.svc.Economy(),
			progress: m.svc.LevelProgress(),
			tasks:    m.svc.Tasks(),
			now:      m.svc.Now(),
		}
	}
}

// reloadCmd rereads the database so changes made by other processes show up.
func (m boardModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.Reload(m.ctx); err != nil {
			return actionMsg{err: err}
		}
		return m.loadCmd()()
	}
}

func (m boardModel) claimCmd(t engine.Task) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ClaimTask(m.ctx, t.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		text := fmt.Sprintf("Claimed %q", t.Name)
		if res.CostPaid.IsPositive() {
			text += fmt.Sprintf(" (paid %s)", res.CostPaid)
		}
		return actionMsg{text: text}
	}
}

func (m boardModel) completeCmd(t engine.Task) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, t.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: describeCompletion(t.Name, res)}
	}
}

func (m boardModel) toggleCmd(t engine.Task) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ToggleCompletion(m.ctx, t.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		if res.Completion != nil {
			return actionMsg{text: describeCompletion(t.Name, res.Completion)}
		}
		return actionMsg{text: fmt.Sprintf("Reopened %q", t.Name)}
	}
}

func (m boardModel) simpleCmd(verb string, t engine.Task, fn func(context.Context, string) (engine.Task, error)) tea.Cmd {
	return func() tea.Msg {
		if _, err := fn(m.ctx, t.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("%s %q", verb, t.Name)}
	}
}

// addCmd posts a standard task from the quick-add line. A trailing number
// is taken as the reward: "Water plants 5".
func (m boardModel) addCmd(line string) tea.Cmd {
	return func() tea.Msg {
		name, reward := splitReward(line)
		t, err := m.svc.AddTask(m.ctx, engine.TaskInput{Name: name, RewardPoints: reward})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Posted %q for %s", t.Name, t.RewardPoints)}
	}
}

func splitReward(line string) (string, decimal.Decimal) {
	line = strings.TrimSpace(line)
	i := strings.LastIndexByte(line, ' ')
	if i < 0 {
		return line, decimal.Zero
	}
	reward, err := engine.ParsePoints(line[i+1:])
	if err != nil {
		return line, decimal.Zero
	}
	return strings.TrimSpace(line[:i]), reward
}

func describeCompletion(name string, res *engine.CompleteResult) string {
	s := fmt.Sprintf("Completed %q: +%s", name, res.PointsAwarded)
	if res.Bonus.IsPositive() {
		s += fmt.Sprintf(" (bonus %s for %dd overdue)", res.Bonus, res.ExceedDays)
	}
	if res.LevelUp {
		s += fmt.Sprintf(" %s %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
	}
	return s
}

func (m boardModel) current() (engine.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return engine.Task{}, false
	}
	return m.tasks[m.selected], true
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		m.loading = false
		m.economy = msg.economy
		m.progress = msg.progress
		m.tasks = msg.tasks
		m.now = msg.now
		if m.selected >= len(m.tasks) {
			m.selected = len(m.tasks) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.loading = false
			m.lastLog = msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.text
		return m, m.loadCmd()
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.New):
			m.adding = true
			m.input.Reset()
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
			return m, m.reloadCmd()
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		}

		t, ok := m.current()
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Claim):
			return m, m.claimCmd(t)
		case key.Matches(msg, m.keys.Complete):
			return m, m.completeCmd(t)
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggleCmd(t)
		case key.Matches(msg, m.keys.Unclaim):
			return m, m.simpleCmd("Unclaimed", t, m.svc.UnclaimTask)
		case key.Matches(msg, m.keys.Cancel):
			return m, m.simpleCmd("Cancelled", t, m.svc.CancelTask)
		}
	}
	return m, nil
}

func (m boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.adding = false
		m.input.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		line := m.input.Value()
		m.adding = false
		m.input.Blur()
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		return m, m.addCmd(line)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTasks())
	b.WriteString("\n\n")
	if m.adding {
		b.WriteString(ui.Key.Render("Add: ") + m.input.View())
	} else {
		b.WriteString(m.lastLog)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m boardModel) renderHeader() string {
	if m.loading && m.tasks == nil {
		return ui.Heading(ui.IconBoard, "Bounty board") + " " + ui.Muted.Render("loading…")
	}
	return fmt.Sprintf("%s  Level %d %s %3.0f%%  %s %s  %s %s",
		ui.Heading(ui.IconBoard, "Bounty board"),
		m.economy.Level,
		ui.ProgressBar(m.progress, 20),
		m.progress,
		ui.IconCoin, ui.Points(m.economy.TotalPoints),
		ui.IconSparkle, m.economy.Experience,
	)
}

func (m boardModel) renderTasks() string {
	if len(m.tasks) == 0 {
		return ui.Muted.Render("(no tasks; add one with `bounty add`)")
	}
	var lines []string
	for i, t := range m.tasks {
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		row := fmt.Sprintf("%s%s %-24s %6s  %s", marker, ui.KindIcon(t.Kind), truncate(t.Name, 24), t.RewardPoints, ui.StateText(t, m.now))
		if t.IsPaid() {
			row += ui.Dim.Render(fmt.Sprintf("  cost %s", t.Cost()))
		}
		if d := ui.Deadline(t); d != "" {
			row += "  " + ui.Dim.Render(d)
		}
		if t.IsRepeatable {
			row += " " + ui.IconLoop
		}
		if i == m.selected {
			row = ui.SelectedRow.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
