package enums

import "fmt"

// SpaceRole is a member's role inside a collaborative space.
type SpaceRole string

const (
	SpaceRoleViewer      SpaceRole = "viewer"
	SpaceRoleContributor SpaceRole = "contributor"
	SpaceRoleEditor      SpaceRole = "editor"
	SpaceRoleAdmin       SpaceRole = "admin"
)

func (r SpaceRole) IsValid() bool {
	switch r {
	case SpaceRoleViewer, SpaceRoleContributor, SpaceRoleEditor, SpaceRoleAdmin:
		return true
	}
	return false
}

// ParseSpaceRole converts raw strings into SpaceRole.
func ParseSpaceRole(value string) (SpaceRole, error) {
	r := SpaceRole(value)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid space role %q", value)
	}
	return r, nil
}
