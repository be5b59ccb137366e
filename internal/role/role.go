// Package role implements the two permission hierarchies used across the
// system. Organization roles and project roles are deliberately distinct
// types: the organization hierarchy tops out at OWNER, while project
// ownership is tracked on the project row itself and never appears as a
// membership role. Comparing a project role against the organization
// hierarchy is therefore a type error rather than a silent index mismatch.
package role

import "fmt"

type OrgRole string

const (
	OrgGuest   OrgRole = "GUEST"
	OrgMember  OrgRole = "MEMBER"
	OrgManager OrgRole = "MANAGER"
	OrgAdmin   OrgRole = "ADMIN"
	OrgOwner   OrgRole = "OWNER"
)

type ProjectRole string

const (
	ProjectGuest   ProjectRole = "GUEST"
	ProjectMember  ProjectRole = "MEMBER"
	ProjectManager ProjectRole = "MANAGER"
	ProjectAdmin   ProjectRole = "ADMIN"
)

// Higher index = more permissions.
var orgHierarchy = []OrgRole{OrgGuest, OrgMember, OrgManager, OrgAdmin, OrgOwner}

var projectHierarchy = []ProjectRole{ProjectGuest, ProjectMember, ProjectManager, ProjectAdmin}

// OrgRoleLevel returns the position of the role in the organization
// hierarchy. Unknown values are rejected, never given a guessed ordering.
func OrgRoleLevel(r OrgRole) (int, error) {
	for i, h := range orgHierarchy {
		if h == r {
			return i, nil
		}
	}
	return -1, fmt.Errorf("40002:invalid organization role %q", string(r))
}

// ProjectRoleLevel returns the position of the role in the project
// hierarchy. There is no OWNER entry here; the project owner is checked
// out of band by callers before the hierarchy is consulted.
func ProjectRoleLevel(r ProjectRole) (int, error) {
	for i, h := range projectHierarchy {
		if h == r {
			return i, nil
		}
	}
	return -1, fmt.Errorf("40002:invalid project role %q", string(r))
}

func HasMinOrgRole(actual, min OrgRole) (bool, error) {
	al, err := OrgRoleLevel(actual)
	if err != nil {
		return false, err
	}
	ml, err := OrgRoleLevel(min)
	if err != nil {
		return false, err
	}
	return al >= ml, nil
}

func HasMinProjectRole(actual, min ProjectRole) (bool, error) {
	al, err := ProjectRoleLevel(actual)
	if err != nil {
		return false, err
	}
	ml, err := ProjectRoleLevel(min)
	if err != nil {
		return false, err
	}
	return al >= ml, nil
}

// ValidOrgRole reports whether r names a real organization role.
func ValidOrgRole(r OrgRole) bool {
	_, err := OrgRoleLevel(r)
	return err == nil
}

// ValidProjectRole reports whether r names a real project role.
func ValidProjectRole(r ProjectRole) bool {
	_, err := ProjectRoleLevel(r)
	return err == nil
}
