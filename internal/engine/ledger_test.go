package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRefMatchesTwoPhase(t *testing.T) {
	ref := TaskRef{ID: "t1", Name: "Run"}

	assert.True(t, ref.Matches(CompletionRecord{TaskID: "t1", TaskName: "Renamed"}))
	// A record carrying a different id never falls back to its name.
	assert.False(t, ref.Matches(CompletionRecord{TaskID: "t2", TaskName: "Run"}))
	// Legacy records without an id match by name.
	assert.True(t, ref.Matches(CompletionRecord{TaskName: "Run"}))
	assert.False(t, ref.Matches(CompletionRecord{TaskName: "Swim"}))

	assert.False(t, TaskRef{ID: "t1"}.Matches(CompletionRecord{TaskName: ""}))
}

func TestLedgerNewestFirst(t *testing.T) {
	l := NewLedger([]CompletionRecord{
		{ID: "old", CompletedAt: day0},
		{ID: "new", CompletedAt: day0.Add(2 * time.Hour)},
	})
	l.Append(CompletionRecord{ID: "newest", CompletedAt: day0.Add(3 * time.Hour)})
	l.Insert(CompletionRecord{ID: "middle", CompletedAt: day0.Add(time.Hour)})

	var ids []string
	for _, r := range l.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"newest", "new", "middle", "old"}, ids)
}

func TestLedgerQueries(t *testing.T) {
	next := day0.AddDate(0, 0, 1)
	l := NewLedger([]CompletionRecord{
		{ID: "r1", TaskID: "t1", TaskName: "Run", PointsAwarded: pts(10), CompletedAt: day0},
		{ID: "r2", TaskID: "t1", TaskName: "Run", PointsAwarded: pts(10), CompletedAt: day0.Add(time.Hour)},
		{ID: "r3", TaskName: "Run", PointsAwarded: pts(5), CompletedAt: next},
		{ID: "r4", TaskID: "t2", TaskName: "Read", PointsAwarded: pts(7), CompletedAt: next},
	})

	assert.Len(t, l.RecordsOnDate(day0), 2)
	assert.Len(t, l.RecordsOnDate(next), 2)
	assert.Len(t, l.RecordsForTask(TaskRef{ID: "t1", Name: "Run"}), 3)
	assert.Equal(t, 2, l.CountForTaskOn(TaskRef{ID: "t1", Name: "Run"}, day0))

	totals := l.DailyTotals(day0.AddDate(0, 0, -1), next)
	require.Len(t, totals, 3)
	assert.Equal(t, 0, totals[0].Count)
	assert.Equal(t, 2, totals[1].Count)
	assertPoints(t, 20, totals[1].Points)
	assertPoints(t, 12, totals[2].Points)

	rec, ok := l.Delete("r2")
	require.True(t, ok)
	assert.Equal(t, "r2", rec.ID)
	_, ok = l.Delete("r2")
	assert.False(t, ok)

	removed := l.DeleteForTask(TaskRef{ID: "t1", Name: "Run"})
	assert.Len(t, removed, 2)
	assert.Len(t, l.Records(), 1)
}

func TestLedgerStreak(t *testing.T) {
	run := TaskRef{ID: "t1", Name: "Run"}
	at := func(daysAgo int) time.Time { return day0.AddDate(0, 0, -daysAgo) }
	l := NewLedger([]CompletionRecord{
		{ID: "a", TaskID: "t1", TaskName: "Run", CompletedAt: at(1)},
		{ID: "b", TaskID: "t1", TaskName: "Run", CompletedAt: at(2)},
		{ID: "c", TaskID: "t1", TaskName: "Run", CompletedAt: at(2).Add(time.Hour)},
		{ID: "d", TaskID: "t1", TaskName: "Run", CompletedAt: at(4)},
		{ID: "e", TaskID: "t2", TaskName: "Read", CompletedAt: at(0)},
	})

	// Not done today yet: the streak still counts from yesterday.
	assert.Equal(t, 2, l.Streak(day0, run.Matches))
	assert.Equal(t, 3, l.Streak(day0, nil))

	l.Append(CompletionRecord{ID: "f", TaskID: "t1", TaskName: "Run", CompletedAt: day0})
	assert.Equal(t, 3, l.Streak(day0, run.Matches))

	// Two days without a completion break it.
	assert.Equal(t, 0, l.Streak(day0.AddDate(0, 0, 2), run.Matches))
}
