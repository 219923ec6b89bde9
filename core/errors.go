package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("roomcraft: not found")
	ErrMethodNotAllowed = errors.New("roomcraft: method not allowed")
)

// RenderingError reports a template that could not be parsed or executed.
type RenderingError struct {
	Template string
	Err      error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("roomcraft: render %s: %v", e.Template, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

// StartupError reports a failure to bind the listen address.
type StartupError struct {
	Addr string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("roomcraft: listen on %s: %v", e.Addr, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsRenderingError(err error) bool {
	var re *RenderingError
	return errors.As(err, &re)
}
