package store

import "fmt"

// ReadError reports that a collection file could not be read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports that a collection file could not be replaced.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
