package enums

import "fmt"

// UserRole is the canonical role of a marketplace account.
type UserRole string

const (
	UserRoleAdmin         UserRole = "admin"
	UserRoleMainAdmin     UserRole = "main_admin"
	UserRoleCollector     UserRole = "collector"
	UserRoleJunkShopOwner UserRole = "junk_shop_owner"
	UserRoleResident      UserRole = "resident"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleMainAdmin,
	UserRoleCollector,
	UserRoleJunkShopOwner,
	UserRoleResident,
}

// roleAliases maps legacy role spellings that still exist in stored data
// onto the canonical enum. New writes always use the canonical value.
var roleAliases = map[string]UserRole{
	"junkshop": UserRoleJunkShopOwner,
	"customer": UserRoleResident,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known canonical UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role carries administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleMainAdmin
}

// ParseUserRole converts raw input, including legacy aliases, into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if canonical, ok := roleAliases[value]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
