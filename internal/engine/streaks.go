package engine

import "time"

// Streak counts consecutive calendar days, ending today or yesterday, on
// which match accepted at least one record. A day missed breaks the streak;
// today not being done yet does not.
func (l *Ledger) Streak(now time.Time, match func(CompletionRecord) bool) int {
	days := make(map[int]bool)
	for _, r := range l.records {
		if match == nil || match(r) {
			if d := DaysBetween(r.CompletedAt, now); d >= 0 {
				days[d] = true
			}
		}
	}
	start := 0
	if !days[0] {
		start = 1
	}
	n := 0
	for days[start+n] {
		n++
	}
	return n
}

// TaskStreak is the current daily streak of one task.
func (s *Service) TaskStreak(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks.Get(id)
	if !ok {
		return 0
	}
	return s.ledger.Streak(s.now(), t.Ref().Matches)
}

// DayStreak is the number of consecutive days with any completion.
func (s *Service) DayStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Streak(s.now(), nil)
}
