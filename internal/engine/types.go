package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskKind string

const (
	KindStandard      TaskKind = "standard"
	KindPaidChallenge TaskKind = "paid_challenge"
)

func (k TaskKind) IsValid() bool {
	switch k {
	case KindStandard, KindPaidChallenge:
		return true
	default:
		return false
	}
}

// DefaultDailyLimit is used when a task is created without a daily limit.
const DefaultDailyLimit = 1

// Task is a claimable unit of work. The three flags IsClaimed, IsStarted and
// IsCompleted together form its lifecycle state.
type Task struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Kind         TaskKind         `json:"taskKind"`
	RewardPoints decimal.Decimal  `json:"rewardPoints"`
	EntryCost    *decimal.Decimal `json:"entryCost,omitempty"`
	IsRepeatable bool             `json:"isRepeatable"`

	IsClaimed   bool `json:"isClaimed"`
	IsStarted   bool `json:"isStarted"`
	IsCompleted bool `json:"isCompleted"`

	CreatedAt   time.Time  `json:"createdAt"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	DurationDays *int       `json:"durationDays,omitempty"`

	DailyLimit              int    `json:"dailyLimit"`
	ExceedDaysRewardFormula string `json:"exceedDaysRewardFormula,omitempty"`

	Order *int `json:"order,omitempty"`
}

func (t Task) IsPaid() bool { return t.Kind == KindPaidChallenge }

// Cost is the entry cost charged at claim time; zero for standard tasks.
func (t Task) Cost() decimal.Decimal {
	if !t.IsPaid() || t.EntryCost == nil {
		return decimal.Zero
	}
	return *t.EntryCost
}

func (t Task) HasTimeLimit() bool {
	return t.ExpiresAt != nil || t.DurationDays != nil
}

// RequiresClaim reports whether the task must be claimed before completion.
func (t Task) RequiresClaim() bool {
	return t.HasTimeLimit() || t.IsPaid()
}

// IsExpired is evaluated lazily: the deadline day is strictly before today.
func (t Task) IsExpired(now time.Time) bool {
	if t.ExpiresAt == nil || t.IsCompleted {
		return false
	}
	return DaysBetween(*t.ExpiresAt, now) > 0
}

func (t Task) Ref() TaskRef {
	return TaskRef{ID: t.ID, Name: t.Name}
}

func (t Task) clone() Task {
	c := t
	c.EntryCost = clonePtr(t.EntryCost)
	c.ClaimedAt = clonePtr(t.ClaimedAt)
	c.CompletedAt = clonePtr(t.CompletedAt)
	c.ExpiresAt = clonePtr(t.ExpiresAt)
	c.DurationDays = clonePtr(t.DurationDays)
	c.Order = clonePtr(t.Order)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TaskInput carries everything the task-creation form can provide.
// ExpiresAt and DurationDays are mutually exclusive.
type TaskInput struct {
	Name                    string
	Kind                    TaskKind
	RewardPoints            decimal.Decimal
	EntryCost               *decimal.Decimal
	IsRepeatable            *bool
	ExpiresAt               *time.Time
	DurationDays            *int
	DailyLimit              int
	ExceedDaysRewardFormula string
	Order                   *int
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Name                    *string
	RewardPoints            *decimal.Decimal
	EntryCost               *decimal.Decimal
	IsRepeatable            *bool
	ExpiresAt               *time.Time
	ClearExpiresAt          bool
	DurationDays            *int
	ClearDurationDays       bool
	DailyLimit              *int
	ExceedDaysRewardFormula *string
	Order                   *int
}
