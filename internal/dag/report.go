package dag

import (
	"errors"
	"fmt"
	"time"
)

// Result is the outcome of one task in a run.
type Result struct {
	Name     string
	State    State
	Err      error
	Duration time.Duration
}

// Report summarises a run. Results are sorted by task name.
type Report struct {
	Results []Result
}

func newReport(closure []*Node, runs map[string]*nodeRun) *Report {
	rep := &Report{Results: make([]Result, 0, len(closure))}
	for _, n := range closure {
		nr := runs[n.Name()]
		rep.Results = append(rep.Results, Result{
			Name:     n.Name(),
			State:    State(nr.state.Load()),
			Err:      nr.err,
			Duration: nr.duration,
		})
	}
	return rep
}

// Result returns the outcome recorded for the named task.
func (r *Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

// Succeeded reports whether every task of the run completed.
func (r *Report) Succeeded() bool {
	for _, res := range r.Results {
		if res.State != Done {
			return false
		}
	}
	return true
}

// Err joins the errors of all failed tasks, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.State == Failed {
			errs = append(errs, fmt.Errorf("task '%s': %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}
