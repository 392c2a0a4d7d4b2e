package enums

import "fmt"

// Privilege represents a user's permission level on an ALIS device.
type Privilege string

const (
	PrivilegeOwner   Privilege = "owner"
	PrivilegeAdmin   Privilege = "admin"
	PrivilegeLimited Privilege = "limited"
)

var validPrivileges = []Privilege{
	PrivilegeOwner,
	PrivilegeAdmin,
	PrivilegeLimited,
}

// String implements fmt.Stringer.
func (p Privilege) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Privilege.
func (p Privilege) IsValid() bool {
	for _, candidate := range validPrivileges {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanGrant reports whether a holder of this privilege may grant or revoke
// access for other users.
func (p Privilege) CanGrant() bool {
	return p == PrivilegeOwner || p == PrivilegeAdmin
}

// ParsePrivilege converts raw input into a Privilege.
func ParsePrivilege(value string) (Privilege, error) {
	for _, candidate := range validPrivileges {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid privilege %q", value)
}
