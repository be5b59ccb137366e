package role

import "testing"

func TestOrgRoleHierarchy(t *testing.T) {
	ordered := []OrgRole{OrgGuest, OrgMember, OrgManager, OrgAdmin, OrgOwner}
	for i := 1; i < len(ordered); i++ {
		lower, _ := OrgRoleLevel(ordered[i-1])
		higher, _ := OrgRoleLevel(ordered[i])
		if higher <= lower {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
	}
}

func TestProjectRoleHierarchy(t *testing.T) {
	ordered := []ProjectRole{ProjectGuest, ProjectMember, ProjectManager, ProjectAdmin}
	for i := 1; i < len(ordered); i++ {
		lower, _ := ProjectRoleLevel(ordered[i-1])
		higher, _ := ProjectRoleLevel(ordered[i])
		if higher <= lower {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
	}
}

func TestHasMinOrgRole(t *testing.T) {
	tests := []struct {
		have OrgRole
		min  OrgRole
		want bool
	}{
		{OrgOwner, OrgAdmin, true},
		{OrgAdmin, OrgAdmin, true},
		{OrgManager, OrgAdmin, false},
		{OrgGuest, OrgMember, false},
		{OrgMember, OrgMember, true},
		{OrgOwner, OrgOwner, true},
		{OrgAdmin, OrgOwner, false},
	}
	for _, tt := range tests {
		got, err := HasMinOrgRole(tt.have, tt.min)
		if err != nil {
			t.Fatalf("HasMinOrgRole(%s, %s): %v", tt.have, tt.min, err)
		}
		if got != tt.want {
			t.Errorf("HasMinOrgRole(%s, %s) = %v, want %v", tt.have, tt.min, got, tt.want)
		}
	}
}

func TestHasMinProjectRole(t *testing.T) {
	tests := []struct {
		have ProjectRole
		min  ProjectRole
		want bool
	}{
		{ProjectAdmin, ProjectManager, true},
		{ProjectManager, ProjectManager, true},
		{ProjectMember, ProjectManager, false},
		{ProjectGuest, ProjectMember, false},
	}
	for _, tt := range tests {
		got, err := HasMinProjectRole(tt.have, tt.min)
		if err != nil {
			t.Fatalf("HasMinProjectRole(%s, %s): %v", tt.have, tt.min, err)
		}
		if got != tt.want {
			t.Errorf("HasMinProjectRole(%s, %s) = %v, want %v", tt.have, tt.min, got, tt.want)
		}
	}
}

func TestInvalidRoles(t *testing.T) {
	if _, err := OrgRoleLevel("SUPERUSER"); err == nil {
		t.Error("expected error for unknown org role")
	}
	if _, err := ProjectRoleLevel("OWNER"); err == nil {
		t.Error("expected error for OWNER as a project role")
	}
	if _, err := HasMinOrgRole("nope", OrgAdmin); err == nil {
		t.Error("expected error comparing unknown role")
	}
	if ValidOrgRole("OWNER") != true {
		t.Error("OWNER is a valid org role")
	}
	if ValidProjectRole("OWNER") {
		t.Error("OWNER is not a valid project role")
	}
}
