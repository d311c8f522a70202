package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/zhang-san-er/task-tools/internal/engine"
)

// Bounty theme (CLI + TUI).

const (
	IconBoard   = "🗺️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconCoin    = "🪙"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconGift    = "🎁"
	IconLoop    = "🔁"
	IconScroll  = "📜"
	IconDemon   = "😈"
	IconClock   = "⏳"
	IconFire    = "🔥"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Points renders a balance; negative balances are red.
func Points(p decimal.Decimal) string {
	s := p.String()
	if p.IsNegative() {
		return Bad.Render(s)
	}
	return Gold.Render(s)
}

// StateText renders a task's lifecycle state.
func StateText(t engine.Task, now time.Time) string {
	switch {
	case t.IsCompleted:
		return Good.Render("done")
	case t.IsExpired(now):
		return Bad.Render(fmt.Sprintf("overdue %dd", engine.ExceedDays(t.ExpiresAt, now)))
	case t.IsStarted:
		return Gold.Render("started")
	case t.IsClaimed:
		return H2.Render("claimed")
	default:
		return Muted.Render("open")
	}
}

func KindIcon(kind engine.TaskKind) string {
	if kind == engine.KindPaidChallenge {
		return IconDemon
	}
	return IconBoard
}

// Deadline renders a task's deadline or duration, or "" when it has neither.
func Deadline(t engine.Task) string {
	switch {
	case t.ExpiresAt != nil:
		return IconClock + " " + t.ExpiresAt.Format("2006-01-02")
	case t.DurationDays != nil:
		return fmt.Sprintf("%s %dd after claim", IconClock, *t.DurationDays)
	}
	return ""
}

// ProgressBar draws pct (0..100) as a bar of the given width.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return Good.Render(strings.Repeat("█", filled)) + Dim.Render(strings.Repeat("░", width-filled))
}
