package models

// RoleOwner is the only role allowed to perform destructive actions such as
// deleting orders.
const RoleOwner = 0

type Admin struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RoleID       int    `json:"role_id"`
}

// IsOwner reports whether the admin holds the owner role.
func (a *Admin) IsOwner() bool {
	return a != nil && a.RoleID == RoleOwner
}
