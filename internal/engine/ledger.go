package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CompletionRecord is one entry of completion history. TaskID is empty for
// legacy and manually added records, which are matched by TaskName instead.
type CompletionRecord struct {
	ID            string           `json:"id"`
	TaskID        string           `json:"taskId,omitempty"`
	TaskName      string           `json:"taskName"`
	PointsAwarded decimal.Decimal  `json:"pointsAwarded"`
	CostPaid      *decimal.Decimal `json:"costPaid,omitempty"`
	CompletedAt   time.Time        `json:"completedAt"`
	TaskKind      TaskKind         `json:"taskKind"`
}

// TaskRef identifies a task for history lookups.
type TaskRef struct {
	ID   string
	Name string
}

// Matches is the two-phase lookup: a record that carries a task id is matched
// by id only; a record without one falls back to its task name.
func (r TaskRef) Matches(rec CompletionRecord) bool {
	if rec.TaskID != "" {
		return r.ID != "" && rec.TaskID == r.ID
	}
	return r.Name != "" && rec.TaskName == r.Name
}

// Ledger is the completion history, newest first. It never touches the
// economy: whoever deletes a record is responsible for compensating.
type Ledger struct {
	records []CompletionRecord
}

func NewLedger(records []CompletionRecord) *Ledger {
	l := &Ledger{records: append([]CompletionRecord(nil), records...)}
	sort.SliceStable(l.records, func(i, j int) bool {
		return l.records[i].CompletedAt.After(l.records[j].CompletedAt)
	})
	return l
}

func (l *Ledger) Append(rec CompletionRecord) {
	l.records = append([]CompletionRecord{rec}, l.records...)
}

// Insert places rec by completion time, ahead of records at the same instant.
func (l *Ledger) Insert(rec CompletionRecord) {
	i := sort.Search(len(l.records), func(i int) bool {
		return !l.records[i].CompletedAt.After(rec.CompletedAt)
	})
	l.records = append(l.records, CompletionRecord{})
	copy(l.records[i+1:], l.records[i:])
	l.records[i] = rec
}

func (l *Ledger) Records() []CompletionRecord {
	return append([]CompletionRecord(nil), l.records...)
}

func (l *Ledger) Get(id string) (CompletionRecord, bool) {
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return CompletionRecord{}, false
}

// RecordsOnDate returns the records completed on day's calendar date.
func (l *Ledger) RecordsOnDate(day time.Time) []CompletionRecord {
	var out []CompletionRecord
	for _, r := range l.records {
		if SameDay(r.CompletedAt, day) {
			out = append(out, r)
		}
	}
	return out
}

func (l *Ledger) RecordsForTask(ref TaskRef) []CompletionRecord {
	var out []CompletionRecord
	for _, r := range l.records {
		if ref.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// CountForTaskOn counts a task's completions on day's calendar date.
func (l *Ledger) CountForTaskOn(ref TaskRef, day time.Time) int {
	n := 0
	for _, r := range l.records {
		if ref.Matches(r) && SameDay(r.CompletedAt, day) {
			n++
		}
	}
	return n
}

func (l *Ledger) Delete(id string) (CompletionRecord, bool) {
	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return r, true
		}
	}
	return CompletionRecord{}, false
}

// DeleteForTask removes every record matching ref and returns them.
func (l *Ledger) DeleteForTask(ref TaskRef) []CompletionRecord {
	var removed []CompletionRecord
	kept := make([]CompletionRecord, 0, len(l.records))
	for _, r := range l.records {
		if ref.Matches(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	l.records = kept
	return removed
}

// DayTotal aggregates one calendar day of history.
type DayTotal struct {
	Day    time.Time
	Points decimal.Decimal
	Count  int
}

// DailyTotals returns one entry per calendar day from..to inclusive, in
// from's location, including days without records.
func (l *Ledger) DailyTotals(from, to time.Time) []DayTotal {
	start := StartOfDay(from)
	days := DaysBetween(start, to.In(start.Location()))
	if days < 0 {
		return nil
	}
	out := make([]DayTotal, days+1)
	for i := range out {
		out[i] = DayTotal{Day: start.AddDate(0, 0, i), Points: decimal.Zero}
	}
	for _, r := range l.records {
		i := DaysBetween(start, r.CompletedAt.In(start.Location()))
		if i < 0 || i > days {
			continue
		}
		out[i].Points = out[i].Points.Add(r.PointsAwarded)
		out[i].Count++
	}
	return out
}

func (l *Ledger) snapshot() []CompletionRecord { return l.Records() }

func (l *Ledger) restore(records []CompletionRecord) { l.records = records }
