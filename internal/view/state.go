// Package view binds the list and detail pages to the post repository.
//
// A binding is one mounted view instance. It issues repository requests on
// its own goroutines and exposes the settled result as a state value the
// renderer turns into a page.
package view

import "errors"

// Status is where a binding's most recent request stands.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNotFound
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not-found"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Settled reports whether the status is final for its request.
func (s Status) Settled() bool {
	return s == StatusReady || s == StatusNotFound || s == StatusUnavailable
}

var (
	// ErrNotActive is returned by Wait before the binding issued any request.
	ErrNotActive = errors.New("view binding not active")
	// ErrClosed is returned by Wait once the binding is closed.
	ErrClosed = errors.New("view binding closed")
)

// publish hands v to a buffered channel, replacing an unread older value.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
