package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of per-record failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingURL
	KindHTTP
	KindNetwork
	KindXMLParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingURL:
		return "missing_url"
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindXMLParse:
		return "xml_parse"
	default:
		return "unknown"
	}
}

// FeedError is a per-record failure. It never aborts a run.
type FeedError struct {
	Kind   ErrorKind
	Status int    // KindHTTP only
	Reason string // status text, transport reason, parse detail or raw message

	timeout bool
	err     error
}

func (e *FeedError) Error() string {
	switch e.Kind {
	case KindMissingURL:
		return "missing " + FieldRSSURL
	case KindHTTP:
		return fmt.Sprintf("HTTPError %d: %s", e.Status, e.Reason)
	case KindNetwork:
		return "URLError: " + e.Reason
	case KindXMLParse:
		return "XML ParseError: " + e.Reason
	default:
		return e.Reason
	}
}

func (e *FeedError) Unwrap() error { return e.err }

// Timeout reports whether the failure was the fetch deadline expiring.
func (e *FeedError) Timeout() bool { return e.timeout }

func MissingURLError() *FeedError { return &FeedError{Kind: KindMissingURL} }

func HTTPError(status int, reason string) *FeedError {
	return &FeedError{Kind: KindHTTP, Status: status, Reason: reason}
}

func NetworkError(reason string, err error) *FeedError {
	return &FeedError{Kind: KindNetwork, Reason: reason, err: err}
}

func TimeoutError(err error) *FeedError {
	return &FeedError{Kind: KindNetwork, Reason: "timed out", timeout: true, err: err}
}

// ReadTimeoutError is a deadline hit while reading the body. The connection
// was already up, so it is not reported as a network failure.
func ReadTimeoutError(err error) *FeedError {
	return &FeedError{Kind: KindUnknown, Reason: "timed out", timeout: true, err: err}
}

func ParseError(err error) *FeedError {
	return &FeedError{Kind: KindXMLParse, Reason: err.Error(), err: err}
}

// AsFeedError classifies any error. Errors that are not already a
// *FeedError become KindUnknown carrying their message.
func AsFeedError(err error) *FeedError {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe
	}
	return &FeedError{Kind: KindUnknown, Reason: err.Error(), err: err}
}
