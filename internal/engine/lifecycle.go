package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AddTask validates in and appends a new unclaimed task.
func (s *Service) AddTask(ctx context.Context, in TaskInput) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created Task
	err := s.mutate(ctx, storeTasks, func(now time.Time) error {
		t, err := s.newTask(in, now)
		if err != nil {
			return err
		}
		created = s.tasks.insert(t)
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task added id=%s name=%q kind=%s order=%d", created.ID, created.Name, created.Kind, *created.Order)
	return created, nil
}

func (s *Service) newTask(in TaskInput, now time.Time) (Task, error) {
	const op = "add task"

	name, err := normalizeName(in.Name)
	if err != nil {
		return Task{}, reject(op, ReasonInvalidInput, "%v", err)
	}
	kind := in.Kind
	if kind == "" {
		kind = KindStandard
	}
	if !kind.IsValid() {
		return Task{}, reject(op, ReasonInvalidInput, "unknown task kind %q", kind)
	}
	if in.RewardPoints.IsNegative() {
		return Task{}, reject(op, ReasonInvalidInput, "reward points must not be negative")
	}
	if in.ExpiresAt != nil && in.DurationDays != nil {
		return Task{}, reject(op, ReasonInvalidInput, "a task has either a deadline or a duration, not both")
	}
	if in.DurationDays != nil && *in.DurationDays < 1 {
		return Task{}, reject(op, ReasonInvalidInput, "duration must be at least one day")
	}
	if in.DailyLimit < 0 {
		return Task{}, reject(op, ReasonInvalidInput, "daily limit must not be negative")
	}
	if err := checkFormula(op, in.ExceedDaysRewardFormula); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:                      newID(),
		Name:                    name,
		Kind:                    kind,
		RewardPoints:            in.RewardPoints.Round(1),
		IsRepeatable:            s.opts.DefaultRepeatable,
		CreatedAt:               now,
		ExpiresAt:               clonePtr(in.ExpiresAt),
		DurationDays:            clonePtr(in.DurationDays),
		DailyLimit:              in.DailyLimit,
		ExceedDaysRewardFormula: in.ExceedDaysRewardFormula,
		Order:                   clonePtr(in.Order),
	}
	if in.IsRepeatable != nil {
		t.IsRepeatable = *in.IsRepeatable
	}
	if t.DailyLimit == 0 {
		t.DailyLimit = s.opts.DefaultDailyLimit
	}
	if kind == KindPaidChallenge {
		cost := decimal.Zero
		if in.EntryCost != nil {
			if in.EntryCost.IsNegative() {
				return Task{}, reject(op, ReasonInvalidInput, "entry cost must not be negative")
			}
			cost = in.EntryCost.Round(1)
		}
		t.EntryCost = &cost
	}
	return t, nil
}

func checkFormula(op, src string) error {
	if src == "" {
		return nil
	}
	if _, err := ParseFormula(src); err != nil {
		return reject(op, ReasonInvalidFormula, "%v", err)
	}
	return nil
}

// UpdateTask applies a partial edit. A changed order moves the task with the
// same renumbering as an insert.
func (s *Service) UpdateTask(ctx context.Context, id string, p TaskPatch) (Task, error) {
	const op = "update task"

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject(op, ReasonNotFound, "task %s", id)
		}
		hadDuration := t.DurationDays != nil
		if p.Name != nil {
			name, err := normalizeName(*p.Name)
			if err != nil {
				return reject(op, ReasonInvalidInput, "%v", err)
			}
			t.Name = name
		}
		if p.RewardPoints != nil {
			if p.RewardPoints.IsNegative() {
				return reject(op, ReasonInvalidInput, "reward points must not be negative")
			}
			t.RewardPoints = p.RewardPoints.Round(1)
		}
		if p.EntryCost != nil {
			if !t.IsPaid() {
				return reject(op, ReasonInvalidInput, "only paid challenges have an entry cost")
			}
			if p.EntryCost.IsNegative() {
				return reject(op, ReasonInvalidInput, "entry cost must not be negative")
			}
			c := p.EntryCost.Round(1)
			t.EntryCost = &c
		}
		if p.IsRepeatable != nil {
			t.IsRepeatable = *p.IsRepeatable
		}
		if p.ClearExpiresAt {
			t.ExpiresAt = nil
		}
		if p.ExpiresAt != nil {
			t.ExpiresAt = clonePtr(p.ExpiresAt)
		}
		if p.ClearDurationDays {
			t.DurationDays = nil
		}
		if p.DurationDays != nil {
			if *p.DurationDays < 1 {
				return reject(op, ReasonInvalidInput, "duration must be at least one day")
			}
			t.DurationDays = clonePtr(p.DurationDays)
		}
		// A duration task may already carry a deadline derived from a claim;
		// only a patch that introduces both is rejected.
		if t.ExpiresAt != nil && t.DurationDays != nil && (p.ExpiresAt != nil || (p.DurationDays != nil && !hadDuration)) {
			return reject(op, ReasonInvalidInput, "a task has either a deadline or a duration, not both")
		}
		if p.DailyLimit != nil {
			if *p.DailyLimit < 1 {
				return reject(op, ReasonInvalidInput, "daily limit must be at least 1")
			}
			t.DailyLimit = *p.DailyLimit
		}
		if p.ExceedDaysRewardFormula != nil {
			if err := checkFormula(op, *p.ExceedDaysRewardFormula); err != nil {
				return err
			}
			t.ExceedDaysRewardFormula = *p.ExceedDaysRewardFormula
		}

		s.tasks.replace(t)
		if p.Order != nil && (t.Order == nil || *t.Order != *p.Order) {
			t, _ = s.tasks.move(id, *p.Order)
		}
		updated = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task updated id=%s", id)
	return updated, nil
}

// MoveTask places a task at the 1-based position `to`.
func (s *Service) MoveTask(ctx context.Context, id string, to int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moved Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.move(id, to)
		if !ok {
			return reject("move task", ReasonNotFound, "task %s", id)
		}
		moved = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task moved id=%s order=%d", id, *moved.Order)
	return moved, nil
}

type ClaimResult struct {
	Task     Task
	CostPaid decimal.Decimal
}

// ClaimTask claims a task. A paid challenge is charged its entry cost and
// started in the same step; a duration task gets its deadline now.
func (s *Service) ClaimTask(ctx context.Context, id string) (*ClaimResult, error) {
	const op = "claim task"

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &ClaimResult{CostPaid: decimal.Zero}
	err := s.mutate(ctx, storeTasks|storeEconomy, func(now time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject(op, ReasonNotFound, "task %s", id)
		}
		if t.IsClaimed {
			return reject(op, ReasonAlreadyClaimed, "")
		}
		if t.IsCompleted && !t.IsRepeatable {
			return reject(op, ReasonAlreadyCompleted, "")
		}

		if t.IsPaid() {
			cost := t.Cost()
			if !s.economy.HandleTaskStart(cost) {
				return reject(op, ReasonInsufficientFunds, "entry cost %s exceeds balance %s", cost, s.economy.TotalPoints())
			}
			t.IsStarted = true
			res.CostPaid = cost
		}
		t.IsClaimed = true
		t.ClaimedAt = &now
		if t.DurationDays != nil && t.ExpiresAt == nil {
			deadline := DeadlineFor(now, *t.DurationDays)
			t.ExpiresAt = &deadline
		}
		s.tasks.replace(t)
		res.Task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("task claimed id=%s cost=%s", id, res.CostPaid)
	return res, nil
}

// UnclaimTask releases a claim. claimedAt and the deadline are kept, and an
// entry cost already paid is not refunded.
func (s *Service) UnclaimTask(ctx context.Context, id string) (Task, error) {
	const op = "unclaim task"

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject(op, ReasonNotFound, "task %s", id)
		}
		if !t.IsClaimed {
			return reject(op, ReasonNotClaimed, "")
		}
		t.IsClaimed = false
		t.IsStarted = false
		t.IsCompleted = false
		t.CompletedAt = nil
		s.tasks.replace(t)
		out = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task unclaimed id=%s", id)
	return out, nil
}

// CancelTask abandons a started challenge but keeps the claim.
func (s *Service) CancelTask(ctx context.Context, id string) (Task, error) {
	const op = "cancel task"

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject(op, ReasonNotFound, "task %s", id)
		}
		if !t.IsStarted {
			return reject(op, ReasonNotStarted, "")
		}
		t.IsStarted = false
		s.tasks.replace(t)
		out = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task cancelled id=%s", id)
	return out, nil
}

// ResetTask clears completion and the started flag but keeps the claim.
func (s *Service) ResetTask(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject("reset task", ReasonNotFound, "task %s", id)
		}
		t.IsCompleted = false
		t.CompletedAt = nil
		t.IsStarted = false
		s.tasks.replace(t)
		out = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task reset id=%s", id)
	return out, nil
}

type CompleteResult struct {
	TaskID        string
	RecordID      string
	PointsAwarded decimal.Decimal // base reward plus bonus
	Bonus         decimal.Decimal
	ExceedDays    int
	CostPaid      *decimal.Decimal
	LevelBefore   int
	LevelAfter    int
	LevelUp       bool
	// Reset is true when a repeatable task went straight back to unclaimed.
	Reset bool
}

// completionPlan is what a completion would do, computed without mutating
// anything.
type completionPlan struct {
	task       Task
	exceedDays int
	bonus      decimal.Decimal
}

func (s *Service) planCompletion(op, id string, now time.Time) (completionPlan, error) {
	t, ok := s.tasks.Get(id)
	if !ok {
		return completionPlan{}, reject(op, ReasonNotFound, "task %s", id)
	}
	if t.IsCompleted && !t.IsRepeatable {
		return completionPlan{}, reject(op, ReasonAlreadyCompleted, "")
	}
	limit := t.DailyLimit
	if limit < 1 {
		limit = DefaultDailyLimit
	}
	if done := s.ledger.CountForTaskOn(t.Ref(), now); done >= limit {
		return completionPlan{}, reject(op, ReasonDailyLimitReached, "completed %d of %d times today", done, limit)
	}
	if t.RequiresClaim() && !t.IsClaimed {
		return completionPlan{}, reject(op, ReasonMustClaimFirst, "")
	}

	plan := completionPlan{task: t, bonus: decimal.Zero}
	if days := ExceedDays(t.ExpiresAt, now); days > 0 {
		plan.exceedDays = days
	}
	if plan.exceedDays > 0 && t.ExceedDaysRewardFormula != "" {
		plan.bonus = decimal.NewFromInt(int64(EvaluateExceedDaysReward(t.ExceedDaysRewardFormula, plan.exceedDays)))
	}
	return plan, nil
}

// PreviewCompletion reports what CompleteTask would award right now, or why
// it would be refused. Nothing changes.
func (s *Service) PreviewCompletion(id string) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.planCompletion("complete task", id, s.now())
	if err != nil {
		return nil, err
	}
	level := s.economy.Level()
	total := plan.task.RewardPoints.Add(plan.bonus)
	after := LevelForExperience(s.economy.Experience().Add(total).InexactFloat64())
	return &CompleteResult{
		TaskID:        id,
		PointsAwarded: total,
		Bonus:         plan.bonus,
		ExceedDays:    plan.exceedDays,
		CostPaid:      costPaid(plan.task),
		LevelBefore:   level,
		LevelAfter:    after,
		LevelUp:       after > level,
		Reset:         plan.task.IsRepeatable,
	}, nil
}

// CompleteTask credits the reward (plus any overdue bonus), writes a ledger
// record and advances the task's state.
func (s *Service) CompleteTask(ctx context.Context, id string) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res *CompleteResult
	err := s.mutate(ctx, storeTasks|storeEconomy|storeLedger, func(now time.Time) error {
		var err error
		res, err = s.complete("complete task", id, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("task completed id=%s points=%s bonus=%s exceed_days=%d level=%d", id, res.PointsAwarded, res.Bonus, res.ExceedDays, res.LevelAfter)
	return res, nil
}

func (s *Service) complete(op, id string, now time.Time) (*CompleteResult, error) {
	plan, err := s.planCompletion(op, id, now)
	if err != nil {
		return nil, err
	}
	t := plan.task
	res := &CompleteResult{
		TaskID:      id,
		Bonus:       plan.bonus,
		ExceedDays:  plan.exceedDays,
		CostPaid:    costPaid(t),
		LevelBefore: s.economy.Level(),
	}

	s.economy.HandleTaskCompletion(t.RewardPoints)
	if plan.bonus.IsPositive() {
		s.economy.HandleTaskCompletion(plan.bonus)
	}
	res.PointsAwarded = t.RewardPoints.Add(plan.bonus)
	res.LevelAfter = s.economy.Level()
	res.LevelUp = res.LevelAfter > res.LevelBefore

	rec := CompletionRecord{
		ID:            newID(),
		TaskID:        t.ID,
		TaskName:      t.Name,
		PointsAwarded: res.PointsAwarded,
		CostPaid:      res.CostPaid,
		CompletedAt:   now,
		TaskKind:      t.Kind,
	}
	s.ledger.Append(rec)
	res.RecordID = rec.ID

	if t.IsRepeatable {
		t.IsClaimed = false
		t.IsStarted = false
		t.IsCompleted = false
		t.CompletedAt = nil
		// A deadline derived from a duration belongs to the claim just
		// finished; the next claim derives a fresh one.
		if t.DurationDays != nil {
			t.ExpiresAt = nil
		}
		res.Reset = true
	} else {
		t.IsCompleted = true
		t.CompletedAt = &now
		if t.HasTimeLimit() {
			t.IsClaimed = false
			t.IsStarted = false
		}
	}
	s.tasks.replace(t)
	return res, nil
}

func costPaid(t Task) *decimal.Decimal {
	if !t.IsPaid() {
		return nil
	}
	c := t.Cost()
	return &c
}

type ToggleResult struct {
	Task      Task
	Completed bool
	// Completion is set when the toggle completed the task.
	Completion *CompleteResult
}

// ToggleCompletion flips an untimed, non-repeatable task. Completing runs the
// full completion; un-completing leaves points, experience and the ledger as
// they are.
func (s *Service) ToggleCompletion(ctx context.Context, id string) (*ToggleResult, error) {
	const op = "toggle task"

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &ToggleResult{}
	err := s.mutate(ctx, storeTasks|storeEconomy|storeLedger, func(now time.Time) error {
		t, ok := s.tasks.Get(id)
		if !ok {
			return reject(op, ReasonNotFound, "task %s", id)
		}
		if t.HasTimeLimit() || t.IsRepeatable {
			return reject(op, ReasonNotToggleable, "")
		}
		if t.IsCompleted {
			t.IsCompleted = false
			t.CompletedAt = nil
			s.tasks.replace(t)
			res.Task = t
			return nil
		}
		c, err := s.complete(op, id, now)
		if err != nil {
			return err
		}
		res.Completion = c
		res.Completed = true
		res.Task, _ = s.tasks.Get(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("task toggled id=%s completed=%t", id, res.Completed)
	return res, nil
}

// DeleteTask removes a task and closes its gap in the order. Its history is
// kept; see DeleteTaskHistory.
func (s *Service) DeleteTask(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed Task
	err := s.mutate(ctx, storeTasks, func(time.Time) error {
		t, ok := s.tasks.remove(id)
		if !ok {
			return reject("delete task", ReasonNotFound, "task %s", id)
		}
		removed = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	s.log.Printf("task deleted id=%s", id)
	return removed, nil
}

func (s *Service) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Get(id)
}

func (s *Service) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.List()
}

func (s *Service) ActiveTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Active()
}

func (s *Service) ExpiredTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Expired(s.now())
}

func (s *Service) TasksDueToday() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.DueToday(s.now())
}

func (s *Service) TasksByKind(kind TaskKind) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.ByKind(kind)
}

// CompletedToday counts today's completions of a task.
func (s *Service) CompletedToday(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks.Get(id)
	if !ok {
		return 0
	}
	return s.ledger.CountForTaskOn(t.Ref(), s.now())
}
