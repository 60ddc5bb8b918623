package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a reseller profile. All product and credit records are partitioned
// by the owning user's ID.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"fullName,omitempty"`
	BusinessName string     `json:"businessName,omitempty"`
	Location     string     `json:"location,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Clone returns an independent copy of the user.
func (u *User) Clone() *User {
	c := *u

	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}

	return &c
}

type CreateParams struct {
	Username     string
	FullName     string
	BusinessName string
	Location     string
}

// UpdateParams carries a partial profile update. Nil fields are left
// untouched. Username is immutable after creation and so has no field here.
type UpdateParams struct {
	FullName     *string
	BusinessName *string
	Location     *string
	LastLogin    *time.Time
}

func (u *User) Apply(p UpdateParams) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}

	if p.BusinessName != nil {
		u.BusinessName = *p.BusinessName
	}

	if p.Location != nil {
		u.Location = *p.Location
	}

	if p.LastLogin != nil {
		u.LastLogin = p.LastLogin
	}
}
