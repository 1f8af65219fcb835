// ABOUTME: Bookings store: customer appointments with status and employee filters
// ABOUTME: Operators list bookings and move them through their statuses

package admin

import (
	"context"
	"net/url"
	"strconv"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/transport"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every valid status.
var BookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts s to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.Valid() {
		return "", invalid("unknown booking status %q", s)
	}
	return status, nil
}

// MsgUpdateBookingStatusFailed is the fallback when a status change fails.
const MsgUpdateBookingStatusFailed = "Failed to update booking status"

// Ref is the id and name of a related record embedded in a booking.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Booking is a customer appointment.
type Booking struct {
	ID             int64         `json:"id"`
	BusinessID     int64         `json:"business_id"`
	UserID         *int64        `json:"user_id"`
	EmployeeID     *int64        `json:"employee_id"`
	ServiceID      *int64        `json:"service_id"`
	BookingDate    string        `json:"booking_date"`
	BookingTime    string        `json:"booking_time"`
	Status         BookingStatus `json:"status"`
	ClientName     string        `json:"client_name"`
	ClientPhone    string        `json:"client_phone"`
	Notes          *string       `json:"notes"`
	CameThroughApp bool          `json:"came_through_app"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
	Service        *Ref          `json:"service,omitempty"`
	Employee       *Ref          `json:"employee,omitempty"`
}

func (b Booking) GetID() int64 { return b.ID }

// BookingFilters narrow a booking listing. Nil fields are not filtered on.
type BookingFilters struct {
	Status     *BookingStatus
	EmployeeID *int64
}

func (f BookingFilters) Validate() error {
	if f.Status != nil && !f.Status.Valid() {
		return invalid("unknown booking status %q", *f.Status)
	}
	if f.EmployeeID != nil && *f.EmployeeID <= 0 {
		return invalid("employee id must be positive")
	}
	return nil
}

// Query encodes the filters as query parameters.
func (f BookingFilters) Query() url.Values {
	q := url.Values{}
	if f.Status != nil {
		q.Set("status", string(*f.Status))
	}
	if f.EmployeeID != nil {
		q.Set("employee_id", strconv.FormatInt(*f.EmployeeID, 10))
	}
	return q
}

// BookingStatusUpdate is the body of a status change.
type BookingStatusUpdate struct {
	Status BookingStatus `json:"status"`
}

func (in BookingStatusUpdate) Validate() error {
	if !in.Status.Valid() {
		return invalid("unknown booking status %q", in.Status)
	}
	return nil
}

// Bookings caches the business's bookings. Operators cannot create or delete bookings.
type Bookings struct {
	store *resource.Store[Booking, struct{}, BookingStatusUpdate]
}

// NewBookings creates the bookings store.
func NewBookings(api *transport.Client, opts resource.Options) *Bookings {
	messages := resource.DefaultMessages("booking", "bookings")
	messages.Update = MsgUpdateBookingStatusFailed
	return &Bookings{store: resource.New[Booking, struct{}, BookingStatusUpdate](api, resource.Endpoint{
		Name:     "bookings",
		Path:     "/admin/bookings",
		Messages: messages,
	}, opts)}
}

// Fetch loads the bookings matching filters.
func (b *Bookings) Fetch(ctx context.Context, filters BookingFilters) transport.Outcome[[]Booking] {
	return b.store.FetchWhere(ctx, filters)
}

// UpdateStatus moves the cached booking with id to status.
func (b *Bookings) UpdateStatus(ctx context.Context, id int64, status BookingStatus) transport.Outcome[Booking] {
	return b.store.Update(ctx, id, BookingStatusUpdate{Status: status})
}

// Items returns the cached bookings.
func (b *Bookings) Items() []Booking { return b.store.Items() }

// Find returns the cached booking with id.
func (b *Bookings) Find(id int64) (Booking, bool) { return b.store.Find(id) }

// Loading reports whether an operation is in progress.
func (b *Bookings) Loading() bool { return b.store.Loading() }

// Err returns the message of the last failed operation.
func (b *Bookings) Err() string { return b.store.Err() }

// ResetError clears Err.
func (b *Bookings) ResetError() { b.store.ResetError() }
