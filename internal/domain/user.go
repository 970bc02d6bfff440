package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleServer   Role = "SERVER"
	RoleKitchen  Role = "KITCHEN"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleServer, RoleKitchen, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to restaurant personnel.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleServer || r == RoleKitchen
}

type User struct {
	ID            string     `json:"id" gorm:"primaryKey;type:char(36)"`
	Name          string     `json:"name" gorm:"size:128;not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string     `json:"-" gorm:"size:128;not null"`
	Role          Role       `json:"role" gorm:"size:16;not null"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

// Actor is the authenticated identity behind a request. It is passed
// explicitly into every service call that needs it; there is no ambient
// session state.
type Actor struct {
	ID   string
	Role Role
}

// Elevated reports whether the actor bypasses per-transition role checks.
func (a Actor) Elevated() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}
