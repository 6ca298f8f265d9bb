package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a summarization attempt failed.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindNetwork     Kind = "network"
	KindRateLimited Kind = "rate_limited"
	KindClientError Kind = "client_error"
	KindServerError Kind = "server_error"
	KindParse       Kind = "parse"
	KindEmpty       Kind = "empty"
)

// Failure is the only error type returned by Client.Summarize.
type Failure struct {
	Kind Kind

	// StatusCode is the provider's HTTP status, zero when no response was received.
	StatusCode int

	// Message is a short, client-safe description.
	Message string

	Err error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("summarizer %s (HTTP %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("summarizer %s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Transient reports whether a later attempt could plausibly succeed.
func (f *Failure) Transient() bool {
	switch f.Kind {
	case KindTimeout, KindNetwork, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// AsFailure extracts a *Failure from err, classifying foreign errors as network failures.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return classifyTransportError(err)
}

// classifyTransportError maps an error from http.Client.Do to a Failure.
func classifyTransportError(err error) *Failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: KindTimeout, Message: "provider did not answer before the deadline", Err: err}
	case errors.Is(err, context.Canceled):
		return &Failure{Kind: KindCanceled, Message: "request was canceled", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Kind: KindTimeout, Message: "provider did not answer before the deadline", Err: err}
	}

	return &Failure{Kind: KindNetwork, Message: "could not reach the provider", Err: err}
}

// classifyStatus maps a non-2xx provider status to a Failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindClientError
	}
}
