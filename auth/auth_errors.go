package auth

import (
	"errors"
	"fmt"
)

var (
	// InvalidStateErr means the callback's state parameter did not match the
	// session identifier. Nothing beyond this message is leaked.
	InvalidStateErr = errors.New("the 'state' parameter is invalid")

	// MissingSessionValueErr means a session value required by the flow was
	// absent, e.g. a callback arrived without a preceding login.
	MissingSessionValueErr = errors.New("missing required session value")

	// UnauthenticatedErr means the session has never completed a login; the
	// guard refuses to attempt a renewal for it.
	UnauthenticatedErr = errors.New("session is not authenticated")
)

// ValidationError reports a missing or malformed request parameter. The
// message always names the offending parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("the '%s' %s", e.Param, e.Reason)
}

// ProviderError carries an error the identity provider reported on the
// callback redirect.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("identity provider returned error '%s': %s", e.Code, e.Description)
	}
	return fmt.Sprintf("identity provider returned error '%s'", e.Code)
}

func missingParamErr(param string) *ValidationError {
	return &ValidationError{Param: param, Reason: "is a required query parameter"}
}

func notAbsoluteURIErr(param string) *ValidationError {
	return &ValidationError{Param: param, Reason: "must be an absolute URI"}
}
