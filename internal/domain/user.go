package domain

import "time"

// Role enumerates the closed set of user roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAttendant Role = "attendant"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleAttendant:
		return Role(s), true
	}
	return "", false
}

// User is the domain model for operators of the system. Users are created by
// an admin, authenticate by phone, and may own queues or be assigned to tickets.
type User struct {
	ID           string
	Name         string
	Phone        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
