package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Role is the closed set of authorization roles. It is fixed per session
// and drives every mutating operation's access check.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleHOD   Role = "HOD"
	RoleStaff Role = "STAFF"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleStaff:
		return true
	}

	return false
}

// CanDecide reports whether the role may approve or reject expenses.
func (r Role) CanDecide() bool {
	return r == RoleAdmin || r == RoleHOD
}

// CanDelete reports whether the role may permanently remove expenses.
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

// CanViewAll reports whether the role may see expenses submitted by others.
func (r Role) CanViewAll() bool {
	return r == RoleAdmin || r == RoleHOD
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	CreatedAt    time.Time
}

// Identity is the authenticated actor attached to a request.
type Identity struct {
	ID   uuid.UUID
	Name string
	Role Role
}
