package dashboard

import (
	"context"
	"errors"
)

// State is where a view is in its fetch cycle.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// View holds data fetched for a page along with its state. Transitions are
// idle -> loading -> loaded | error; anything else leaves the view unchanged.
type View[T any] struct {
	State State
	Data  T
	Err   string
}

func (v View[T]) Start() View[T] {
	if v.State != Idle {
		return v
	}
	return View[T]{State: Loading}
}

func (v View[T]) Finish(data T, err error) View[T] {
	if v.State != Loading {
		return v
	}
	if err != nil {
		return View[T]{State: Failed, Err: ErrorMessage(err)}
	}
	return View[T]{State: Loaded, Data: data}
}

func (v View[T]) IsLoading() bool { return v.State == Loading }
func (v View[T]) IsLoaded() bool  { return v.State == Loaded }
func (v View[T]) IsError() bool   { return v.State == Failed }

// Load runs fetch once and returns the settled view. There are no retries.
func Load[T any](ctx context.Context, fetch func(context.Context) (T, error)) View[T] {
	v := View[T]{}.Start()
	data, err := fetch(ctx)
	return v.Finish(data, err)
}

// ErrorMessage is the text shown to the user for err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "could not reach the records service"
}
