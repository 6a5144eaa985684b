package services

import (
	"context"
	"fmt"
)

// StepFunc runs one step and returns how many records it affected.
type StepFunc func(ctx context.Context) (int64, error)

type step struct {
	name string
	run  StepFunc
}

// Report describes how far a unit of work got.
type Report struct {
	Operation string           `json:"operation"`
	Completed []string         `json:"completed"`
	Failed    string           `json:"failed,omitempty"`
	Error     string           `json:"error,omitempty"`
	Skipped   []string         `json:"skipped"`
	Affected  map[string]int64 `json:"affected"`
}

// PartialFailure is returned when a step fails after zero or more steps
// already took effect. Completed steps are not rolled back.
type PartialFailure struct {
	Report *Report
	Err    error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: step %q failed after %d completed steps: %v",
		e.Report.Operation, e.Report.Failed, len(e.Report.Completed), e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// UnitOfWork runs named steps in order and stops at the first failure.
type UnitOfWork struct {
	operation string
	steps     []step
}

func NewUnitOfWork(operation string) *UnitOfWork {
	return &UnitOfWork{operation: operation}
}

func (u *UnitOfWork) Step(name string, run StepFunc) *UnitOfWork {
	u.steps = append(u.steps, step{name: name, run: run})
	return u
}

func (u *UnitOfWork) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Operation: u.operation,
		Completed: []string{},
		Skipped:   []string{},
		Affected:  make(map[string]int64, len(u.steps)),
	}
	for i, s := range u.steps {
		err := ctx.Err()
		if err == nil {
			var n int64
			n, err = s.run(ctx)
			if err == nil {
				report.Completed = append(report.Completed, s.name)
				report.Affected[s.name] = n
				continue
			}
		}
		report.Failed = s.name
		report.Error = err.Error()
		for _, rest := range u.steps[i+1:] {
			report.Skipped = append(report.Skipped, rest.name)
		}
		return report, &PartialFailure{Report: report, Err: err}
	}
	return report, nil
}
