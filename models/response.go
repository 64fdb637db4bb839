package models

import (
	"github.com/stellar/go/support/errors"
)

var (
	// ErrNoResult is the cause of every Response that carries no decodable
	// value: the wallet service could not be reached, or it answered with
	// something that is not JSON.
	ErrNoResult = errors.New("no result from wallet service")

	// ErrPasswordTooShort is returned by wallet creation before any request
	// is made.
	ErrPasswordTooShort = errors.New("Password must be at least 10 characters")
)

// Response is the outcome of one wallet service call.
//
// A Response either holds the decoded JSON body (which may itself be an
// error object from the service; it is passed through untouched) or is the
// no-result sentinel, in which case Value is null and Err explains why.
type Response struct {
	Value      Value
	StatusCode int
	Err        error
}

// NoResult builds the sentinel response. cause may be nil.
func NoResult(statusCode int, cause error) Response {
	err := ErrNoResult
	if cause != nil {
		err = errors.Wrap(ErrNoResult, cause.Error())
	}
	return Response{StatusCode: statusCode, Err: err}
}

// ValidationFailed builds the error-shaped response for input rejected
// locally.
func ValidationFailed(cause error) Response {
	return Response{
		Value: Object(map[string]Value{"error": String(cause.Error())}),
		Err:   cause,
	}
}

// OK reports whether a decoded value arrived from the wallet service
func (r Response) OK() bool {
	return r.Err == nil && !r.Value.IsNull()
}

// IsNoResult reports whether r is the no-result sentinel
func (r Response) IsNoResult() bool {
	return r.Value.IsNull()
}

// IsValidationError reports whether r was produced by local validation
func (r Response) IsValidationError() bool {
	return r.Err != nil && errors.Cause(r.Err) == ErrPasswordTooShort
}

// ErrorMessage returns the "error" field of an error-shaped value, if any
func (r Response) ErrorMessage() (string, bool) {
	if !r.Value.Has("error") {
		return "", false
	}
	msg, ok := r.Value.Get("error").AsString()
	if !ok {
		b, err := r.Value.Get("error").MarshalJSON()
		if err != nil {
			return "", false
		}
		msg = string(b)
	}
	return msg, true
}
