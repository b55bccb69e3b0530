// Package pipeline runs named flows of sequential steps over a shared state value.
package pipeline

import "context"

type Step[S any] struct {
	Name    string
	Execute func(ctx context.Context, state S) error
}

func NewStep[S any](name string, execute func(ctx context.Context, state S) error) *Step[S] {
	return &Step[S]{
		Name:    name,
		Execute: execute,
	}
}

// Flow is an ordered list of steps. Finally steps run after the main steps
// whether or not one of them failed.
type Flow[S any] struct {
	name    string
	steps   []*Step[S]
	finally []*Step[S]
}

func NewFlow[S any](name string, steps ...*Step[S]) *Flow[S] {
	return &Flow[S]{name: name, steps: steps}
}

func (f *Flow[S]) Finally(steps ...*Step[S]) *Flow[S] {
	f.finally = append(f.finally, steps...)
	return f
}

func (f *Flow[S]) Name() string {
	return f.name
}

func (f *Flow[S]) Steps() []*Step[S] {
	return f.steps
}
