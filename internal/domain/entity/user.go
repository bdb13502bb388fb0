package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleSecretario = "secretario"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusLocked   = "locked"
)

// User representa un usuario del sistema (actor de las operaciones).
type User struct {
	ID        int64
	Username  string
	Name      string
	Role      string // admin, secretario
	Status    string // active, inactive, locked
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el usuario puede actuar sobre el sistema.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
