// Package quota implements the free-tier allowance policy. It is pure:
// callers re-evaluate it on every decision point because both the plan
// count and the subscription flag can change between calls.
package quota

import (
	"bytes"
	"strconv"
)

// FreePlanLimit is the number of learning plans a non-subscribed user may create.
const FreePlanLimit = 15

// Allowance is the remaining free-tier budget. Subscribed users are unlimited.
type Allowance struct {
	Unlimited bool
	Plans     int
}

// MarshalJSON renders the allowance as "unlimited" or a plain number.
func (a Allowance) MarshalJSON() ([]byte, error) {
	if a.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(a.Plans)), nil
}

// UnmarshalJSON accepts the same two wire shapes MarshalJSON produces.
func (a *Allowance) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"unlimited"`)) {
		*a = Allowance{Unlimited: true}
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*a = Allowance{Plans: n}
	return nil
}

// Remaining returns the allowance left for a user with the given plan count.
func Remaining(subscribed bool, count int) Allowance {
	if subscribed {
		return Allowance{Unlimited: true}
	}
	left := FreePlanLimit - count
	if left < 0 {
		left = 0
	}
	return Allowance{Plans: left}
}

// LimitReached reports whether plan creation must be blocked.
func LimitReached(subscribed bool, count int) bool {
	if subscribed {
		return false
	}
	return count >= FreePlanLimit
}
