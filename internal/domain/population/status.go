package population

import (
	"fmt"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
)

// Status is the lifecycle state of a resident
type Status string

const (
	StatusActive    Status = "AKTIF"
	StatusRelocated Status = "PINDAH"
	StatusDeceased  Status = "MENINGGAL"
)

// transitions lists the statuses reachable from each status
var transitions = map[Status][]Status{
	StatusActive:    {StatusRelocated, StatusDeceased},
	StatusRelocated: {StatusActive, StatusDeceased},
	StatusDeceased:  {},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusDeceased
}

// CanTransitionTo reports whether to is directly reachable from s
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks that a resident may move from one status to another.
// Leaving the terminal status always fails, even toward itself. Any other
// same-status move is a no-op.
func ValidateTransition(from, to Status) error {
	if from.IsTerminal() {
		return ErrTerminalState
	}
	if from == to {
		return nil
	}
	if !from.CanTransitionTo(to) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Invalid status transition: %s -> %s", from, to))
	}
	return nil
}
