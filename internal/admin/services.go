// ABOUTME: Services store: the business's bookable services
// ABOUTME: ToggleActive flips is_active with a PATCH of the service record

package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/transport"
)

// Service is a bookable service.
type Service struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"business_id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	IsActive        bool    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (s Service) GetID() int64 { return s.ID }

// ServiceCreate is the body of a create request.
type ServiceCreate struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	IsActive        bool    `json:"is_active"`
}

func (in ServiceCreate) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if in.Price < 0 {
		return invalid("price must not be negative")
	}
	if in.DurationMinutes <= 0 {
		return invalid("duration must be positive")
	}
	return nil
}

// ServiceUpdate is the body of an update request. Nil fields are left unchanged.
type ServiceUpdate struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

func (in ServiceUpdate) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return invalid("name must not be empty")
	}
	if in.Price != nil && *in.Price < 0 {
		return invalid("price must not be negative")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return invalid("duration must be positive")
	}
	return nil
}

// Services caches the business's services.
type Services struct {
	*resource.Store[Service, ServiceCreate, ServiceUpdate]
}

// NewServices creates the services store.
func NewServices(api *transport.Client, opts resource.Options) *Services {
	return &Services{resource.New[Service, ServiceCreate, ServiceUpdate](api, resource.Endpoint{
		Name:     "services",
		Path:     "/admin/services",
		Messages: resource.DefaultMessages("service", "services"),
	}, opts)}
}

// ToggleActive inverts the cached service's is_active flag on the server.
func (s *Services) ToggleActive(ctx context.Context, id int64) transport.Outcome[Service] {
	return s.Mutate(ctx, OpToggle, id, s.Endpoint().Messages.Update, func(ctx context.Context) (Service, error) {
		svc, _ := s.Find(id)
		active := !svc.IsActive
		var updated Service
		err := s.Client().SendJSON(ctx, http.MethodPatch, s.ItemPath(id), ServiceUpdate{IsActive: &active}, &updated)
		return updated, err
	})
}
