// ABOUTME: Customer profile store with avatar upload and removal
// ABOUTME: Built on the single-record resource Document

package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/transport"
)

// Profile endpoints.
const (
	ProfilePath = "/profile/me"
	AvatarPath  = "/profile/me/avatar"
	AvatarField = "file"
)

// Fallback messages.
const (
	MsgLoadProfileFailed   = "Failed to load profile"
	MsgUpdateProfileFailed = "Failed to update profile"
	MsgUploadAvatarFailed  = "Failed to upload avatar"
	MsgDeleteAvatarFailed  = "Failed to delete avatar"
)

// Avatar operations in events.
const (
	OpUploadAvatar resource.Op = "upload_avatar"
	OpDeleteAvatar resource.Op = "delete_avatar"
)

// Gender is the customer's self-declared gender.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Other
}

// UserProfile is the customer's profile.
type UserProfile struct {
	ID        int64   `json:"id"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Name      string  `json:"name"`
	Gender    *Gender `json:"gender"`
	AvatarURL *string `json:"avatar_url"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ProfileUpdate is the body of PATCH /profile/me. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Gender *Gender `json:"gender,omitempty"`
	Email  *string `json:"email,omitempty"`
}

// Validate checks the fields that are set.
func (in ProfileUpdate) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return errors.New("name must not be empty")
	}
	if in.Gender != nil && !in.Gender.Valid() {
		return fmt.Errorf("unknown gender %q", *in.Gender)
	}
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return fmt.Errorf("invalid email %q", *in.Email)
		}
	}
	return nil
}

// Profile caches the signed-in customer's profile.
type Profile struct {
	*resource.Document[UserProfile]
}

// NewProfile creates the customer profile store.
func NewProfile(api *transport.Client, opts resource.Options) *Profile {
	return &Profile{resource.NewDocument[UserProfile](api, "profile", ProfilePath, resource.DocumentMessages{
		Fetch:  MsgLoadProfileFailed,
		Update: MsgUpdateProfileFailed,
	}, opts)}
}

// Update changes the fields set in in.
func (p *Profile) Update(ctx context.Context, in ProfileUpdate) transport.Outcome[UserProfile] {
	return p.Patch(ctx, in)
}

// UploadAvatar sends r as the new avatar image.
func (p *Profile) UploadAvatar(ctx context.Context, filename string, r io.Reader) transport.Outcome[UserProfile] {
	return p.Do(ctx, OpUploadAvatar, MsgUploadAvatarFailed, func(ctx context.Context) (UserProfile, error) {
		var up UserProfile
		err := p.Client().Upload(ctx, AvatarPath, AvatarField, filename, r, &up)
		return up, err
	})
}

// DeleteAvatar removes the avatar image.
func (p *Profile) DeleteAvatar(ctx context.Context) transport.Outcome[UserProfile] {
	return p.Do(ctx, OpDeleteAvatar, MsgDeleteAvatarFailed, func(ctx context.Context) (UserProfile, error) {
		var up UserProfile
		err := p.Client().SendJSON(ctx, http.MethodDelete, AvatarPath, nil, &up)
		return up, err
	})
}
