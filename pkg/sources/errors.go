package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind distinguishes the ways a remote fetch can fail.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindRemote
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network_failure"
	case KindRemote:
		return "remote_error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchError is returned by fetchers for every failed batch.
type FetchError struct {
	Kind     ErrorKind
	SourceID string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("source %s: %s (status %d): %v", e.SourceID, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("source %s: %s: %v", e.SourceID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Classify returns the kind of a fetch failure. Errors that did not come from a
// fetcher are classified by inspecting the transport error.
func Classify(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// transportError wraps an error raised before any response was received.
func transportError(sourceID string, err error) *FetchError {
	kind := KindNetwork
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, SourceID: sourceID, Err: err}
}

func remoteError(sourceID string, status int, err error) *FetchError {
	return &FetchError{Kind: KindRemote, SourceID: sourceID, Status: status, Err: err}
}
