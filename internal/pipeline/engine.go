package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrUnsupportedFlow = errors.New("unsupported flow")

// StepError reports the step that stopped a flow.
type StepError struct {
	Flow string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed, %s pipeline errored: %v", e.Step, e.Flow, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepObserver is told about every executed step.
type StepObserver func(flow, step string, elapsed time.Duration, err error)

type Engine[S any] struct {
	flows     map[string]*Flow[S]
	observers []StepObserver
}

func NewEngine[S any](flows ...*Flow[S]) *Engine[S] {
	m := map[string]*Flow[S]{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine[S]{flows: m}
}

func (e *Engine[S]) Observe(observer StepObserver) *Engine[S] {
	e.observers = append(e.observers, observer)
	return e
}

// Run executes the flow's steps in order and stops at the first failure.
// Finally steps always run; their errors are reported to observers only.
func (e *Engine[S]) Run(ctx context.Context, flowName string, state S) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnsupportedFlow, flowName)
	}

	var runErr error
	for _, step := range f.steps {
		if err := e.execute(ctx, f.name, step, state); err != nil {
			runErr = &StepError{Flow: f.name, Step: step.Name, Err: err}
			break
		}
	}

	for _, step := range f.finally {
		_ = e.execute(ctx, f.name, step, state)
	}
	return runErr
}

func (e *Engine[S]) execute(ctx context.Context, flow string, step *Step[S], state S) error {
	started := time.Now()
	err := step.Execute(ctx, state)
	for _, observe := range e.observers {
		observe(flow, step.Name, time.Since(started), err)
	}
	return err
}
