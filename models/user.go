package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleStaff      Role = "staff"
	RoleUser       Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleSuperAdmin || r == RoleStaff || r == RoleUser
}

type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Email      string     `db:"email" json:"email"`
	Password   string     `db:"password" json:"-"`
	Roles      []UserRole `db:"-" json:"roles"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

type UserRole struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
