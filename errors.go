package main

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError means no bearer token could be acquired silently; the user has
// to sign in again.
type AuthError struct {
	Account string
	Reason  string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth required for %s: %s: %v", e.Account, e.Reason, e.Cause)
	}
	return fmt.Sprintf("auth required for %s: %s", e.Account, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteError is an unexpected HTTP status from Graph. Code and Message are
// taken from the Graph error envelope when the body carries one.
type RemoteError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: graph error %d %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

type ParseError struct {
	Op    string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid response body: %v", e.Op, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

var ErrEventNotFound = errors.New("event not found")

func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsRemoteError(err error) bool {
	var e *RemoteError
	return errors.As(err, &e)
}

func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsNotFound reports a 404 from Graph or an id missing from the local list.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrEventNotFound) {
		return true
	}
	var e *RemoteError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

func formatError(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("Not signed in as %s (%s). Run: graphcal login --account %s", authErr.Account, authErr.Reason, authErr.Account)
	}

	if IsNotFound(err) {
		return "Event not found. Run: graphcal events to refresh the list"
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Code != "" {
			return fmt.Sprintf("Graph API error (%d %s): %s", remoteErr.StatusCode, remoteErr.Code, remoteErr.Message)
		}
		return fmt.Sprintf("Graph API error (%d)", remoteErr.StatusCode)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return fmt.Sprintf("Could not reach Microsoft Graph: %v", transportErr.Cause)
	}

	return err.Error()
}
