package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/storage"
)

func newTestBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := engine.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local) }
	svc, err := engine.NewService(ctx, db, opts)
	require.NoError(t, err)
	return newBoardModel(ctx, svc), svc
}

// drive feeds msg to m and runs any follow-up commands until none remain.
func drive(m boardModel, msg tea.Msg) boardModel {
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(boardModel)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardClaimAndComplete(t *testing.T) {
	m, svc := newTestBoard(t)
	ctx := context.Background()

	cost := decimal.NewFromInt(5)
	task, err := svc.AddTask(ctx, engine.TaskInput{
		Name:         "Dare",
		Kind:         engine.KindPaidChallenge,
		RewardPoints: decimal.NewFromInt(20),
		EntryCost:    &cost,
	})
	require.NoError(t, err)

	m = drive(m, m.Init()())
	require.Len(t, m.tasks, 1)

	m = drive(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.lastLog, "claimed first")

	m = drive(m, keyRunes("c"))
	assert.Contains(t, m.lastLog, "Claimed")
	assert.True(t, m.tasks[0].IsClaimed)

	m = drive(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.lastLog, "Completed")
	assert.True(t, m.economy.TotalPoints.Equal(decimal.NewFromInt(15)))

	assert.Len(t, svc.RecordsForTask(task.Ref()), 1)
	assert.Contains(t, m.View(), "Dare")
}

func TestBoardSelectionStaysInRange(t *testing.T) {
	m, svc := newTestBoard(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		_, err := svc.AddTask(ctx, engine.TaskInput{Name: name})
		require.NoError(t, err)
	}
	m = drive(m, m.Init()())

	m = drive(m, tea.KeyMsg{Type: tea.KeyDown})
	m = drive(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)
	m = drive(m, tea.KeyMsg{Type: tea.KeyUp})
	m = drive(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.selected)
}

func TestBoardQuickAdd(t *testing.T) {
	m, svc := newTestBoard(t)
	m = drive(m, m.Init()())

	m = drive(m, keyRunes("a"))
	require.True(t, m.adding)
	// Hotkeys are plain text while the prompt has focus.
	m = drive(m, keyRunes("Water plants 5"))
	assert.True(t, m.adding)
	m = drive(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.adding)

	tasks := svc.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Water plants", tasks[0].Name)
	assert.True(t, tasks[0].RewardPoints.Equal(decimal.NewFromInt(5)))
	assert.Contains(t, m.lastLog, "Posted")

	m = drive(m, keyRunes("a"))
	m = drive(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.adding)
	assert.Len(t, svc.Tasks(), 1)
}

func TestSplitReward(t *testing.T) {
	name, reward := splitReward("Read 12.5")
	assert.Equal(t, "Read", name)
	assert.True(t, reward.Equal(decimal.RequireFromString("12.5")))

	name, reward = splitReward("Call mum")
	assert.Equal(t, "Call mum", name)
	assert.True(t, reward.IsZero())
}

func TestBoardRefreshPicksUpOutsideChanges(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := engine.DefaultOptions()
	boardSvc, err := engine.NewService(ctx, db, opts)
	require.NoError(t, err)
	m := newBoardModel(ctx, boardSvc)
	m = drive(m, m.Init()())
	require.Empty(t, m.tasks)

	other, err := engine.NewService(ctx, db, opts)
	require.NoError(t, err)
	_, err = other.AddTask(ctx, engine.TaskInput{Name: "From the CLI", RewardPoints: decimal.NewFromInt(3)})
	require.NoError(t, err)

	m = drive(m, keyRunes("r"))
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "From the CLI", m.tasks[0].Name)
	assert.False(t, m.loading)
	assert.Contains(t, m.lastLog, "Refreshed")
}
