package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  RejectError
		want string
	}{
		{
			name: "reason only",
			err:  RejectError{Op: "claim task", Reason: ReasonAlreadyClaimed},
			want: "cannot claim task: the task is already claimed",
		},
		{
			name: "reason and detail",
			err:  reject("complete task", ReasonDailyLimitReached, "completed %d of %d times today", 1, 1),
			want: "cannot complete task: daily limit reached: completed 1 of 1 times today",
		},
		{
			name: "unknown reason",
			err:  RejectError{Reason: Reason("frozen"), Detail: "try later"},
			want: "frozen: try later",
		},
		{
			name: "no op",
			err:  RejectError{Reason: ReasonNotFound, Detail: "task x"},
			want: "not found: task x",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestRejectionsNameTheirReason(t *testing.T) {
	env := newTestService(t, withPoints(10))
	ctx := context.Background()

	task := env.addTask(t, TaskInput{Name: "Walk", RewardPoints: pts(1)})
	_, err := env.svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	_, err = env.svc.CompleteTask(ctx, task.ID)
	requireReason(t, err, ReasonDailyLimitReached)
	assert.Contains(t, err.Error(), "daily limit reached")
	assert.Contains(t, err.Error(), "1 of 1")

	dare := env.addTask(t, TaskInput{Name: "Dare", Kind: KindPaidChallenge, RewardPoints: pts(5), EntryCost: decPtr(50)})
	_, err = env.svc.ClaimTask(ctx, dare.ID)
	requireReason(t, err, ReasonInsufficientFunds)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Contains(t, err.Error(), "entry cost 50")
}
