package enums

import "fmt"

// ActorRole is the permission level the access gate grants to a scanned identity.
type ActorRole string

const (
	ActorRoleOperator   ActorRole = "operator"
	ActorRoleSupervisor ActorRole = "supervisor"
)

var validActorRoles = []ActorRole{
	ActorRoleOperator,
	ActorRoleSupervisor,
}

// IsValid reports whether the value matches a canonical actor role.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}

func (r ActorRole) String() string {
	return string(r)
}
