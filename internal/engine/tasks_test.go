package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)

func intPtr(v int) *int { return &v }

func orders(b *TaskBoard) map[string]int {
	out := map[string]int{}
	for _, t := range b.List() {
		if t.Order != nil {
			out[t.ID] = *t.Order
		}
	}
	return out
}

func assertContiguous(t *testing.T, b *TaskBoard) {
	t.Helper()
	seen := map[int]bool{}
	for _, task := range b.List() {
		require.NotNil(t, task.Order, "task %s has no order", task.ID)
		require.False(t, seen[*task.Order], "order %d used twice", *task.Order)
		seen[*task.Order] = true
	}
	for i := 1; i <= b.Len(); i++ {
		require.True(t, seen[i], "order %d missing", i)
	}
}

func boardOf(ids ...string) *TaskBoard {
	b := NewTaskBoard(nil)
	for i, id := range ids {
		b.insert(Task{ID: id, Name: id, CreatedAt: day0.Add(time.Duration(i) * time.Minute)})
	}
	return b
}

func TestBoardInsertAppendsAndShifts(t *testing.T) {
	b := boardOf("a", "b", "c")
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, orders(b))

	b.insert(Task{ID: "x", Order: intPtr(2)})
	assert.Equal(t, map[string]int{"a": 1, "x": 2, "b": 3, "c": 4}, orders(b))

	b.insert(Task{ID: "y", Order: intPtr(99)})
	assert.Equal(t, 5, orders(b)["y"], "positions past the end clamp to last")

	b.insert(Task{ID: "z", Order: intPtr(-3)})
	assert.Equal(t, 1, orders(b)["z"])
	assertContiguous(t, b)
}

func TestBoardRemoveClosesGap(t *testing.T) {
	b := boardOf("a", "b", "c", "d", "e")
	_, ok := b.remove("b")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"a": 1, "c": 2, "d": 3, "e": 4}, orders(b))
	assertContiguous(t, b)

	_, ok = b.remove("missing")
	assert.False(t, ok)
}

func TestBoardMove(t *testing.T) {
	b := boardOf("a", "b", "c", "d")

	_, ok := b.move("d", 1)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"d": 1, "a": 2, "b": 3, "c": 4}, orders(b))

	_, ok = b.move("d", 4)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}, orders(b))

	_, ok = b.move("a", 3)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3, "d": 4}, orders(b))
	assertContiguous(t, b)
}

func TestEnsureAllTasksHaveOrder(t *testing.T) {
	done1 := day0.Add(5 * time.Hour)
	done2 := day0.Add(2 * time.Hour)
	b := NewTaskBoard([]Task{
		{ID: "ordered", Order: intPtr(1), CreatedAt: day0},
		{ID: "doneLate", IsCompleted: true, CompletedAt: &done1, CreatedAt: day0},
		{ID: "open2", CreatedAt: day0.Add(2 * time.Minute)},
		{ID: "doneEarly", IsCompleted: true, CompletedAt: &done2, CreatedAt: day0.Add(time.Hour)},
		{ID: "open1", CreatedAt: day0.Add(time.Minute)},
	})

	assert.Equal(t, 4, b.EnsureAllTasksHaveOrder())
	assert.Equal(t, map[string]int{
		"ordered":   1,
		"open1":     2,
		"open2":     3,
		"doneEarly": 4,
		"doneLate":  5,
	}, orders(b))

	assert.Equal(t, 0, b.EnsureAllTasksHaveOrder(), "second pass is a no-op")
}

func TestBoardQueries(t *testing.T) {
	now := day0.AddDate(0, 0, 3)
	yesterday := EndOfDay(now.AddDate(0, 0, -1))
	today := EndOfDay(now)

	b := NewTaskBoard([]Task{
		{ID: "claimed", IsClaimed: true, Kind: KindStandard},
		{ID: "claimedDone", IsClaimed: true, IsCompleted: true, Kind: KindStandard},
		{ID: "overdue", ExpiresAt: &yesterday, Kind: KindPaidChallenge},
		{ID: "overdueDone", ExpiresAt: &yesterday, IsCompleted: true, Kind: KindStandard},
		{ID: "dueToday", ExpiresAt: &today, Kind: KindPaidChallenge},
	})
	b.EnsureAllTasksHaveOrder()

	ids := func(ts []Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"claimed"}, ids(b.Active()))
	assert.Equal(t, []string{"overdue"}, ids(b.Expired(now)))
	assert.Equal(t, []string{"dueToday"}, ids(b.DueToday(now)))
	assert.ElementsMatch(t, []string{"overdue", "dueToday"}, ids(b.ByKind(KindPaidChallenge)))
}
