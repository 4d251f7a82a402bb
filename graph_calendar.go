package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	profilePath         = "/me"
	eventsPath          = "/me/events"
)

// Phase is the step an operation is in. Token acquisition always precedes
// the call.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAcquiringToken
	PhaseCalling
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAcquiringToken:
		return "acquiring-token"
	case PhaseCalling:
		return "calling"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

type PhaseObserver func(op string, phase Phase)

// CalendarClient talks to the Graph calendar of one account. Every operation
// acquires exactly one token and issues at most one request; nothing is
// retried.
type CalendarClient struct {
	tokens     TokenProvider
	account    string
	scopes     []string
	zone       string
	baseURL    string
	httpClient *http.Client
	observe    PhaseObserver
}

type ClientOption func(*CalendarClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cc *CalendarClient) { cc.httpClient = c }
}

func WithBaseURL(u string) ClientOption {
	return func(cc *CalendarClient) { cc.baseURL = u }
}

func WithPhaseObserver(fn PhaseObserver) ClientOption {
	return func(cc *CalendarClient) { cc.observe = fn }
}

// NewCalendarClient builds a client that writes every event in zone.
func NewCalendarClient(tokens TokenProvider, account string, scopes []string, zone string, opts ...ClientOption) *CalendarClient {
	c := &CalendarClient{
		tokens:     tokens,
		account:    account,
		scopes:     slices.Clone(scopes),
		zone:       zone,
		baseURL:    defaultGraphBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CalendarClient) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, "getProfile", http.MethodGet, profilePath, nil, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *CalendarClient) ListEvents(ctx context.Context) (*EventList, error) {
	var list EventList
	if err := c.do(ctx, "listEvents", http.MethodGet, eventsPath, nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *CalendarClient) CreateEvent(ctx context.Context, draft CalendarEvent) (*CalendarEvent, error) {
	body := withTimeZone(draft, c.zone)

	var created CalendarEvent
	if err := c.do(ctx, "createEvent", http.MethodPost, eventsPath, body, &created, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent replaces subject, start and end of event id.
func (c *CalendarClient) UpdateEvent(ctx context.Context, id string, draft CalendarEvent) (*CalendarEvent, error) {
	body := withTimeZone(draft, c.zone)

	var updated CalendarEvent
	if err := c.do(ctx, "updateEvent", http.MethodPatch, eventPath(id), body, &updated, http.StatusOK); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEvent succeeds only on 204 No Content.
func (c *CalendarClient) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, "deleteEvent", http.MethodDelete, eventPath(id), nil, nil, http.StatusNoContent)
}

func eventPath(id string) string {
	return eventsPath + "/" + url.PathEscape(id)
}

func (c *CalendarClient) do(ctx context.Context, op, method, path string, in, out any, accept ...int) (err error) {
	defer func() {
		if err != nil {
			c.notify(op, PhaseFailed)
			return
		}
		c.notify(op, PhaseDone)
	}()

	c.notify(op, PhaseAcquiringToken)
	token, err := c.tokens.Token(ctx, c.scopes, c.account)
	if err != nil {
		if IsAuthError(err) {
			return err
		}
		return &AuthError{Account: c.account, Reason: "token acquisition failed", Cause: err}
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet && c.zone != "" {
		req.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", c.zone))
	}

	c.notify(op, PhaseCalling)
	printVerbosely(2, "  ↪️ %s %s\n", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Cause: err}
	}

	if !slices.Contains(accept, resp.StatusCode) {
		return remoteError(op, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Op: op, Cause: err}
	}
	return nil
}

func (c *CalendarClient) notify(op string, phase Phase) {
	if c.observe != nil {
		c.observe(op, phase)
	}
}

type graphErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func remoteError(op string, status int, body []byte) *RemoteError {
	e := &RemoteError{Op: op, StatusCode: status}

	var envelope graphErrorEnvelope
	if json.Unmarshal(body, &envelope) == nil {
		e.Code = envelope.Error.Code
		e.Message = envelope.Error.Message
	}
	return e
}
