package job

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

var (
	// ErrIllegalTransition is the sentinel wrapped by IllegalTransitionError.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrMissingRequiredOption is the sentinel wrapped by MissingOptionError.
	ErrMissingRequiredOption = errors.New("missing required transition option")
)

// IllegalTransitionError reports a target state that is not reachable from the
// current one, together with the states that are.
type IllegalTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

// NewIllegalTransitionError builds the error with the legal targets of from.
func NewIllegalTransitionError(from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{
		From:    from,
		To:      to,
		Allowed: from.AllowedTransitions(),
	}
}

func (e *IllegalTransitionError) Error() string {
	names := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		names = append(names, s.String())
	}
	return fmt.Sprintf("cannot move from %s to %s; allowed: [%s]", e.From, e.To, strings.Join(names, ", "))
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// MissingOptionError reports a transition option that the target state needs
// but the caller did not supply, for example the courier id when accepting.
type MissingOptionError struct {
	Option string
	Target Status
}

func NewMissingOptionError(option string, target Status) *MissingOptionError {
	return &MissingOptionError{Option: option, Target: target}
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("%s: %s is required to move to %s", errs.ErrValueIsRequired, e.Option, e.Target)
}

func (e *MissingOptionError) Unwrap() []error {
	return []error{ErrMissingRequiredOption, errs.ErrValueIsRequired}
}
