package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "auth",
			err:  fmt.Errorf("listEvents: %w", &AuthError{Account: "work", Reason: "no stored token"}),
			want: "Not signed in as work (no stored token). Run: graphcal login --account work",
		},
		{
			name: "remote not found",
			err:  &RemoteError{Op: "deleteEvent", StatusCode: http.StatusNotFound, Code: "ErrorItemNotFound", Message: "gone"},
			want: "Event not found. Run: graphcal events to refresh the list",
		},
		{
			name: "local not found",
			err:  ErrEventNotFound,
			want: "Event not found. Run: graphcal events to refresh the list",
		},
		{
			name: "remote with envelope",
			err:  &RemoteError{Op: "createEvent", StatusCode: http.StatusBadRequest, Code: "ErrorInvalidRequest", Message: "bad start"},
			want: "Graph API error (400 ErrorInvalidRequest): bad start",
		},
		{
			name: "remote bare",
			err:  &RemoteError{Op: "createEvent", StatusCode: http.StatusBadGateway},
			want: "Graph API error (502)",
		},
		{
			name: "transport",
			err:  &TransportError{Op: "getProfile", Cause: errors.New("no route to host")},
			want: "Could not reach Microsoft Graph: no route to host",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatError(tt.err))
		})
	}
}

func TestErrorCategories(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected EOF")
	parseErr := fmt.Errorf("wrapped: %w", &ParseError{Op: "listEvents", Cause: cause})

	assert.True(t, IsParseError(parseErr))
	assert.ErrorIs(t, parseErr, cause)
	assert.False(t, IsRemoteError(parseErr))
	assert.False(t, IsTransportError(parseErr))
	assert.False(t, IsAuthError(parseErr))
	assert.False(t, IsNotFound(&RemoteError{StatusCode: http.StatusForbidden}))
}
