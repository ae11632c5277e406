package recommendation

import (
	"errors"
	"fmt"
)

// Kind classifies why a provider call could not be used
type Kind string

const (
	// KindEmptyResponse: the response text held no JSON object
	KindEmptyResponse Kind = "empty_response"
	// KindMalformedJSON: a JSON object was found but could not be decoded
	KindMalformedJSON Kind = "malformed_json"
	// KindMissingAllocation: the decoded object has no allocation field
	KindMissingAllocation Kind = "missing_allocation"
	// KindInvalidAllocation: a bucket is missing or the percentages do not add up to 100
	KindInvalidAllocation Kind = "invalid_allocation"
	// KindMissingRecommendations: advice text is absent for at least one bucket
	KindMissingRecommendations Kind = "missing_recommendations"
	// KindTransport: the outbound call failed or timed out
	KindTransport Kind = "transport"
	// KindUnexpected: the provider panicked or misbehaved in an unclassified way
	KindUnexpected Kind = "unexpected"
)

// ProviderError is the only error type returned by Provider.Fetch
type ProviderError struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, format string, args ...any) *ProviderError {
	return &ProviderError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "recommendation provider: " + string(e.Kind)
	}
	return fmt.Sprintf("recommendation provider: %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or KindUnexpected when err is not a ProviderError
func KindOf(err error) Kind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnexpected
}
