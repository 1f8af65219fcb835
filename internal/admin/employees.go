// ABOUTME: Employees store: staff members who perform services
// ABOUTME: ToggleActive uses the dedicated toggle-active endpoint

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/transport"
)

// OpToggle is the event op of the ToggleActive operations.
const OpToggle resource.Op = "toggle"

// MsgToggleEmployeeFailed is the fallback when toggling an employee fails.
const MsgToggleEmployeeFailed = "Failed to change employee status"

// Employee is a staff member.
type Employee struct {
	ID         int64   `json:"id"`
	BusinessID int64   `json:"business_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	PhotoURL   *string `json:"photo_url"`
	IsActive   bool    `json:"is_active"`
	ServiceIDs []int64 `json:"service_ids"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func (e Employee) GetID() int64 { return e.ID }

// EmployeeCreate is the body of a create request. A nil PhotoURL is sent as null.
type EmployeeCreate struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	PhotoURL   *string `json:"photo_url"`
	ServiceIDs []int64 `json:"service_ids"`
}

func (in EmployeeCreate) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return invalid("phone is required")
	}
	return nil
}

// MarshalJSON sends an empty list rather than null when no services are assigned.
func (in EmployeeCreate) MarshalJSON() ([]byte, error) {
	type plain EmployeeCreate
	if in.ServiceIDs == nil {
		in.ServiceIDs = []int64{}
	}
	return json.Marshal(plain(in))
}

// EmployeeUpdate is the body of an update request. Nil fields are left unchanged.
type EmployeeUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	PhotoURL   *string  `json:"photo_url,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
	ServiceIDs *[]int64 `json:"service_ids,omitempty"`

	// ClearPhoto sends photo_url as null, removing the photo. PhotoURL is ignored.
	ClearPhoto bool `json:"-"`
}

func (in EmployeeUpdate) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return invalid("name must not be empty")
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) == "" {
		return invalid("phone must not be empty")
	}
	return nil
}

// MarshalJSON writes an explicit null photo_url when ClearPhoto is set.
func (in EmployeeUpdate) MarshalJSON() ([]byte, error) {
	type plain EmployeeUpdate
	if !in.ClearPhoto {
		return json.Marshal(plain(in))
	}
	in.PhotoURL = nil
	return json.Marshal(struct {
		plain
		PhotoURL *string `json:"photo_url"`
	}{plain: plain(in)})
}

// Employees caches the business's employees.
type Employees struct {
	*resource.Store[Employee, EmployeeCreate, EmployeeUpdate]
}

// NewEmployees creates the employees store.
func NewEmployees(api *transport.Client, opts resource.Options) *Employees {
	return &Employees{resource.New[Employee, EmployeeCreate, EmployeeUpdate](api, resource.Endpoint{
		Name:     "employees",
		Path:     "/admin/employees",
		Messages: resource.DefaultMessages("employee", "employees"),
	}, opts)}
}

// ToggleActive flips the cached employee's is_active flag on the server.
func (e *Employees) ToggleActive(ctx context.Context, id int64) transport.Outcome[Employee] {
	return e.Mutate(ctx, OpToggle, id, MsgToggleEmployeeFailed, func(ctx context.Context) (Employee, error) {
		var updated Employee
		err := e.Client().SendJSON(ctx, http.MethodPatch, e.ItemPath(id, "toggle-active"), nil, &updated)
		return updated, err
	})
}
