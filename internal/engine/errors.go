package engine

import (
	"errors"
	"fmt"
)

// Reason classifies why an operation was not permitted.
type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonInvalidInput      Reason = "invalid_input"
	ReasonInvalidFormula    Reason = "invalid_formula"
	ReasonMustClaimFirst    Reason = "must_claim_first"
	ReasonDailyLimitReached Reason = "daily_limit_reached"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonAlreadyClaimed    Reason = "already_claimed"
	ReasonNotClaimed        Reason = "not_claimed"
	ReasonNotStarted        Reason = "not_started"
	ReasonAlreadyCompleted  Reason = "already_completed"
	ReasonNotToggleable     Reason = "not_toggleable"
	ReasonRewardInactive    Reason = "reward_inactive"
)

var reasonText = map[Reason]string{
	ReasonNotFound:          "not found",
	ReasonInvalidInput:      "invalid input",
	ReasonInvalidFormula:    "invalid reward formula",
	ReasonMustClaimFirst:    "the task must be claimed first",
	ReasonDailyLimitReached: "daily limit reached",
	ReasonInsufficientFunds: "insufficient funds",
	ReasonAlreadyClaimed:    "the task is already claimed",
	ReasonNotClaimed:        "the task is not claimed",
	ReasonNotStarted:        "the challenge has not been started",
	ReasonAlreadyCompleted:  "the task is already completed",
	ReasonNotToggleable:     "only untimed, non-repeatable tasks can be toggled",
	ReasonRewardInactive:    "the reward is not available",
}

// RejectError is returned when a precondition check refuses an operation.
// Nothing has been mutated when it is returned; Error() is meant for the user.
type RejectError struct {
	Op     string
	Reason Reason
	Detail string
}

func (e RejectError) Error() string {
	msg := reasonText[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("cannot %s: %s", e.Op, msg)
}

func reject(op string, reason Reason, format string, args ...any) RejectError {
	e := RejectError{Op: op, Reason: reason}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

// AsReject unwraps a RejectError from err.
func AsReject(err error) (RejectError, bool) {
	var re RejectError
	if errors.As(err, &re) {
		return re, true
	}
	return RejectError{}, false
}

// IsReason reports whether err is a rejection for the given reason.
func IsReason(err error, reason Reason) bool {
	re, ok := AsReject(err)
	return ok && re.Reason == reason
}
