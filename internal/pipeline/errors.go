package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPlan         = errors.New("invalid topping plan")
	ErrUnsatisfied         = errors.New("unsatisfied dependency")
	ErrCycle               = errors.New("dependency cycle")
	ErrOverlappingProvides = errors.New("overlapping provides")
)

// PlanError wraps deterministic plan validation failures.
type PlanError struct {
	Kind    error
	Topping string
	Msg     string
}

func (e *PlanError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Topping != "" {
		fmt.Fprintf(&b, " (%s)", e.Topping)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *PlanError) Unwrap() error { return e.Kind }

func planErrorf(kind error, topping, format string, args ...any) error {
	return &PlanError{Kind: kind, Topping: topping, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &PlanError{Kind: ErrCycle, Msg: msg}
}

// StageError reports a topping whose Act failed.
type StageError struct {
	Topping string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("topping %s: %v", e.Topping, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
