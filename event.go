package main

import (
	"time"
)

// DateTimeTimeZone is Graph's wall-clock time plus the zone it is expressed in.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type CalendarEvent struct {
	ID      string           `json:"id,omitempty"`
	Subject string           `json:"subject"`
	Start   DateTimeTimeZone `json:"start"`
	End     DateTimeTimeZone `json:"end"`
}

type EventList struct {
	Value    []CalendarEvent `json:"value"`
	NextLink string          `json:"@odata.nextLink,omitempty"`
}

type Profile struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	GivenName         string   `json:"givenName"`
	Surname           string   `json:"surname"`
	Mail              string   `json:"mail"`
	UserPrincipalName string   `json:"userPrincipalName"`
	JobTitle          string   `json:"jobTitle"`
	OfficeLocation    string   `json:"officeLocation"`
	BusinessPhones    []string `json:"businessPhones"`
}

// withTimeZone returns a copy of draft with both time zones forced to zone.
// The id is dropped: Graph takes it from the URL.
func withTimeZone(draft CalendarEvent, zone string) CalendarEvent {
	return CalendarEvent{
		Subject: draft.Subject,
		Start:   DateTimeTimeZone{DateTime: draft.Start.DateTime, TimeZone: zone},
		End:     DateTimeTimeZone{DateTime: draft.End.DateTime, TimeZone: zone},
	}
}

// EventForm holds the values of the add/edit form as the user typed them.
type EventForm struct {
	Subject string `form:"subject" json:"subject"`
	Start   string `form:"start" json:"start"`
	End     string `form:"end" json:"end"`
}

// Draft converts the form into an event draft in loc's wall clock.
func (f EventForm) Draft(loc *time.Location) CalendarEvent {
	return CalendarEvent{
		Subject: f.Subject,
		Start:   DateTimeTimeZone{DateTime: fromFormValue(f.Start, loc), TimeZone: loc.String()},
		End:     DateTimeTimeZone{DateTime: fromFormValue(f.End, loc), TimeZone: loc.String()},
	}
}

// formFromEvent pre-fills the edit form with the event rendered in loc.
func formFromEvent(e CalendarEvent, loc *time.Location) EventForm {
	return EventForm{
		Subject: e.Subject,
		Start:   toFormValue(e.Start, loc),
		End:     toFormValue(e.End, loc),
	}
}
