package user

import (
	"errors"
	"time"
)

// Roles form a closed set; anything else in the store is treated as unknown
// and never surfaced through the admin stats buckets.
const (
	RoleAdmin           = "Admin"
	RoleGuide           = "Guide"
	RoleTourist         = "Tourist"
	RoleServiceProvider = "ServiceProvider"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrAdminProtected = errors.New("admin users cannot be modified")
)

type User struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // never expose hash in JSON
	Mobile       *string `json:"mobile,omitempty"`
	ProfilePic   *string `json:"profilePicture,omitempty"`
	Role         string  `json:"role"`

	// Role-specific optional attributes. Not cross-validated against the
	// role by the core; the store keeps whatever registration provided.
	Specialization *string  `json:"specialization,omitempty"`
	Experience     *int     `json:"experience,omitempty"`
	Nationality    *string  `json:"nationality,omitempty"`
	Preferences    []string `json:"preferences,omitempty"`
	BusinessName   *string  `json:"businessName,omitempty"`
	ServiceType    *string  `json:"serviceType,omitempty"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats are the per-role counts shown on the admin dashboard. Total is the
// sum of the four known buckets; rows with an unrecognised role are dropped
// from the whole aggregate.
type Stats struct {
	Guides           int `json:"guides"`
	Tourists         int `json:"tourists"`
	ServiceProviders int `json:"serviceProviders"`
	Admins           int `json:"admins"`
	Total            int `json:"total"`
}

// ListFilter narrows the admin user listing. Role "" or "all" means no role
// filter; Search is a case-insensitive substring over names and email.
type ListFilter struct {
	Role   string
	Search string
	Limit  int
	Offset int
}

// ProfileUpdate carries the self-editable fields. Email and role are
// immutable through this path.
type ProfileUpdate struct {
	FirstName      string
	LastName       string
	Mobile         *string
	Specialization *string
	Experience     *int
	Nationality    *string
	Preferences    []string
	BusinessName   *string
	ServiceType    *string
}
