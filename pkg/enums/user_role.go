package enums

import "fmt"

// UserRole maps to the user_role enum in Postgres.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleStaff   UserRole = "staff"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleManager,
	UserRoleStaff,
}

// roleRank orders roles by privilege; higher outranks lower.
var roleRank = map[UserRole]int{
	UserRoleStaff:   0,
	UserRoleManager: 1,
	UserRoleAdmin:   2,
}

// IsValid reports whether the value matches the canonical enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether r carries at least the privilege of min.
func (r UserRole) AtLeast(min UserRole) bool {
	return roleRank[r] >= roleRank[min]
}

// ParseUserRole converts raw input into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
