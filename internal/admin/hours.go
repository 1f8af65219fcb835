// ABOUTME: Business hours store converting between wire records and the 7-day week
// ABOUTME: Fetch falls back to the default week; Update validates before sending

package admin

import (
	"context"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/schedule"
	"github.com/2389/bookdesk/internal/transport"
)

// Business hours fallback messages.
const (
	MsgFetchHoursFailed  = "Failed to fetch business hours"
	MsgUpdateHoursFailed = "Failed to update business hours"
	MsgInvalidHours      = "Please fix the highlighted opening hours"
)

// HoursUpdate is the body of PUT /admin/business-hours.
type HoursUpdate struct {
	Hours []schedule.BusinessHour `json:"hours"`
}

// BusinessHours caches the wire records of the business's weekly hours.
type BusinessHours struct {
	doc *resource.Document[[]schedule.BusinessHour]
}

// NewBusinessHours creates the business hours store.
func NewBusinessHours(api *transport.Client, opts resource.Options) *BusinessHours {
	return &BusinessHours{doc: resource.NewDocument[[]schedule.BusinessHour](api, "business_hours", "/admin/business-hours",
		resource.DocumentMessages{Fetch: MsgFetchHoursFailed, Update: MsgUpdateHoursFailed}, opts)}
}

// Fetch loads the weekly hours. Data is always a full week: the default closed week
// when the fetch fails.
func (h *BusinessHours) Fetch(ctx context.Context) transport.Outcome[schedule.Week] {
	out := h.doc.Fetch(ctx)
	week := schedule.ToSchedule(out.Data)
	if !out.Success {
		return transport.Outcome[schedule.Week]{Error: out.Error, Data: week}
	}
	return transport.Succeed(week)
}

// Update validates week, filling each day's Error, and sends it when valid.
func (h *BusinessHours) Update(ctx context.Context, week *schedule.Week) transport.Outcome[schedule.Week] {
	if !schedule.Validate(week) {
		return transport.Outcome[schedule.Week]{Error: MsgInvalidHours, Data: *week}
	}

	out := h.doc.Put(ctx, HoursUpdate{Hours: schedule.ToWire(*week)})
	if !out.Success {
		return transport.Outcome[schedule.Week]{Error: out.Error, Data: *week}
	}
	return transport.Succeed(schedule.ToSchedule(out.Data))
}

// Week returns the cached hours as a week, defaults when nothing is cached.
func (h *BusinessHours) Week() schedule.Week {
	hours, _ := h.doc.Value()
	return schedule.ToSchedule(hours)
}

// Wire returns the cached wire records.
func (h *BusinessHours) Wire() []schedule.BusinessHour {
	hours, _ := h.doc.Value()
	return hours
}

// Loading reports whether an operation is in progress.
func (h *BusinessHours) Loading() bool { return h.doc.Loading() }

// Err returns the message of the last failed operation.
func (h *BusinessHours) Err() string { return h.doc.Err() }
