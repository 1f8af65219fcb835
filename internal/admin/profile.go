// ABOUTME: Business profile store for the operator's own business record
// ABOUTME: Also the profile type the operator session loads after login

package admin

import (
	"context"
	"strings"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/transport"
)

// ProfilePath is the business profile endpoint.
const ProfilePath = "/admin/business/profile"

// BusinessType is the kind of business.
type BusinessType string

const (
	CarWash     BusinessType = "car_wash"
	AutoRepair  BusinessType = "auto_repair"
	TireService BusinessType = "tire_service"
	BeautySalon BusinessType = "beauty_salon"
)

// BusinessTypes lists every valid business type.
var BusinessTypes = []BusinessType{CarWash, AutoRepair, TireService, BeautySalon}

// Valid reports whether t is a known business type.
func (t BusinessType) Valid() bool {
	for _, known := range BusinessTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Business is the operator's business profile.
type Business struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	BusinessType BusinessType `json:"business_type"`
	Address      string       `json:"address"`
	Phones       []string     `json:"phones"`
	Email        string       `json:"email"`
	Description  *string      `json:"description,omitempty"`
	LogoURL      *string      `json:"logo_url,omitempty"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
}

// BusinessUpdate is the body of PUT /admin/business/profile.
type BusinessUpdate struct {
	Name         string       `json:"name"`
	BusinessType BusinessType `json:"business_type"`
	Address      string       `json:"address"`
	Phones       []string     `json:"phones"`
	Description  *string      `json:"description,omitempty"`
	LogoURL      *string      `json:"logo_url,omitempty"`
}

func (in BusinessUpdate) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if !in.BusinessType.Valid() {
		return invalid("unknown business type %q", in.BusinessType)
	}
	if strings.TrimSpace(in.Address) == "" {
		return invalid("address is required")
	}
	for _, p := range in.Phones {
		if strings.TrimSpace(p) == "" {
			return invalid("phone numbers must not be empty")
		}
	}
	return nil
}

// UpdateFrom builds an update that keeps every field of b.
func UpdateFrom(b Business) BusinessUpdate {
	return BusinessUpdate{
		Name:         b.Name,
		BusinessType: b.BusinessType,
		Address:      b.Address,
		Phones:       append([]string(nil), b.Phones...),
		Description:  b.Description,
		LogoURL:      b.LogoURL,
	}
}

// Profile caches the business profile.
type Profile struct {
	*resource.Document[Business]
}

// NewProfile creates the business profile store.
func NewProfile(api *transport.Client, opts resource.Options) *Profile {
	return &Profile{resource.NewDocument[Business](api, "business_profile", ProfilePath, resource.DocumentMessages{
		Fetch:  "Failed to load business profile",
		Update: "Failed to update business profile",
	}, opts)}
}

// Update replaces the business profile.
func (p *Profile) Update(ctx context.Context, in BusinessUpdate) transport.Outcome[Business] {
	return p.Put(ctx, in)
}
