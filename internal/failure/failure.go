// Package failure defines the error taxonomy shared by provider adapters,
// the governor and the pipeline. Per-item failures (one URL, one name, one
// lead) carry one of these types so callers can record what went wrong
// without aborting the batch.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failure for error-sentinel fields and logging.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindParse      Kind = "parse"
	KindGeneration Kind = "generation"
	KindFatal      Kind = "fatal"
	// KindUnknown covers errors that did not pass through an adapter.
	KindUnknown Kind = "unknown"
)

// NetworkError reports a timeout, connection failure or non-2xx status.
type NetworkError struct {
	URL    string
	Status int // zero when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("network: %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("network: %s: status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("network: %s: %v", e.URL, e.Err)
	}
	return "network: " + e.URL
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline or I/O timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ParseError reports that a fetched page lacks the expected structure.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s: %s", e.URL, e.Reason)
}

// GenerationError reports a text-generation provider error or an unusable
// (empty or malformed) completion.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation: " + e.Provider
	}
	return fmt.Sprintf("generation: %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrEmptyCompletion is wrapped by GenerationError when a provider answers
// with no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// PipelineFatalError aborts a run. It is raised for failures outside any
// per-item boundary, such as the discovery search.
type PipelineFatalError struct {
	Stage string
	Err   error
}

func (e *PipelineFatalError) Error() string {
	return fmt.Sprintf("pipeline aborted in stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineFatalError) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first taxonomy error found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var (
		fe *PipelineFatalError
		ne *NetworkError
		pe *ParseError
		ge *GenerationError
	)
	switch {
	case errors.As(err, &fe):
		return KindFatal
	case errors.As(err, &ne):
		return KindNetwork
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ge):
		return KindGeneration
	}
	return KindUnknown
}
