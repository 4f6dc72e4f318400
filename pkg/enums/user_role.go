package enums

import "fmt"

// UserRole describes the access level attached to an account.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleKitchen  UserRole = "kitchen"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleKitchen,
	UserRoleAdmin,
}

// IsValid reports whether the value matches the canonical role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role grants access to kitchen views.
func (r UserRole) IsStaff() bool {
	return r == UserRoleKitchen || r == UserRoleAdmin
}

// ParseUserRole converts the raw string to UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
