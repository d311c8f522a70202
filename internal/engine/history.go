package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

func (s *Service) Records() []CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Records()
}

func (s *Service) RecordsOnDate(day time.Time) []CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RecordsOnDate(day)
}

// RecordsForTask returns a task's history. Pass the name as well so legacy
// records without a task id are found.
func (s *Service) RecordsForTask(ref TaskRef) []CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RecordsForTask(ref)
}

func (s *Service) DailyTotals(from, to time.Time) []DayTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.DailyTotals(from, to)
}

// DeleteRecord removes a completion record and takes back the points and
// experience it awarded, in one transaction. Entry costs are not refunded.
func (s *Service) DeleteRecord(ctx context.Context, id string) (CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed CompletionRecord
	err := s.mutate(ctx, storeLedger|storeEconomy, func(time.Time) error {
		rec, ok := s.ledger.Delete(id)
		if !ok {
			return reject("delete record", ReasonNotFound, "record %s", id)
		}
		s.compensate(rec.PointsAwarded)
		removed = rec
		return nil
	})
	if err != nil {
		return CompletionRecord{}, err
	}
	s.log.Printf("record deleted id=%s points=%s", id, removed.PointsAwarded)
	return removed, nil
}

// DeleteTaskHistory removes every record of a task (by id, or by name for
// legacy records) and compensates the economy for all of them.
func (s *Service) DeleteTaskHistory(ctx context.Context, ref TaskRef) ([]CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []CompletionRecord
	err := s.mutate(ctx, storeLedger|storeEconomy, func(time.Time) error {
		if ref.ID == "" && ref.Name == "" {
			return reject("delete history", ReasonInvalidInput, "a task id or name is required")
		}
		removed = s.ledger.DeleteForTask(ref)
		total := decimal.Zero
		for _, r := range removed {
			total = total.Add(r.PointsAwarded)
		}
		s.compensate(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("history deleted task=%s name=%q records=%d", ref.ID, ref.Name, len(removed))
	return removed, nil
}

func (s *Service) compensate(points decimal.Decimal) {
	s.economy.RemovePoints(points)
	s.economy.RemoveExperience(points)
}

// AddManualRecord books a completion that did not come from a task on the
// board. It credits points and experience like a normal completion.
func (s *Service) AddManualRecord(ctx context.Context, name string, points decimal.Decimal, kind TaskKind, at *time.Time) (CompletionRecord, error) {
	const op = "add record"

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec CompletionRecord
	err := s.mutate(ctx, storeLedger|storeEconomy, func(now time.Time) error {
		n, err := normalizeName(name)
		if err != nil {
			return reject(op, ReasonInvalidInput, "%v", err)
		}
		if points.IsNegative() {
			return reject(op, ReasonInvalidInput, "points must not be negative")
		}
		if kind == "" {
			kind = KindStandard
		}
		if !kind.IsValid() {
			return reject(op, ReasonInvalidInput, "unknown task kind %q", kind)
		}
		when := now
		if at != nil {
			when = *at
		}
		rec = CompletionRecord{
			ID:            newID(),
			TaskName:      n,
			PointsAwarded: points.Round(1),
			CompletedAt:   when,
			TaskKind:      kind,
		}
		s.ledger.Insert(rec)
		s.economy.HandleTaskCompletion(rec.PointsAwarded)
		return nil
	})
	if err != nil {
		return CompletionRecord{}, err
	}
	s.log.Printf("record added id=%s name=%q points=%s", rec.ID, rec.TaskName, rec.PointsAwarded)
	return rec, nil
}
