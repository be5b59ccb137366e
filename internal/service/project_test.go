package service

import (
	"testing"

	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

func setupProject(t *testing.T) (*ProjectService, *model.User, *model.Project, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	orgSvc := newOrgService(db)
	projSvc := newProjService(db)
	owner := seedUser(t, db, "owner@example.com")

	org, err := orgSvc.Create(owner.ID, CreateOrganizationData{Name: "Acme"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	project, err := projSvc.Create(owner.ID, CreateProjectData{
		Name: "Platform", Key: "plt", OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return projSvc, owner, project, db
}

func TestCreateProjectDefaults(t *testing.T) {
	_, owner, project, db := setupProject(t)

	if project.Key != "PLT" {
		t.Errorf("key should be uppercased, got %q", project.Key)
	}
	if project.OwnerID != owner.ID {
		t.Error("creator should own the project")
	}

	// creator also gets an ADMIN membership row
	var member model.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&member).Error; err != nil {
		t.Fatal("creator membership row missing")
	}
	if member.Role != role.ProjectAdmin {
		t.Errorf("creator role = %s, want ADMIN", member.Role)
	}

	if len(project.Boards) != 1 || project.Boards[0].Name != "Main Board" {
		t.Fatalf("expected the default Main Board, got %+v", project.Boards)
	}
	columns := project.Boards[0].Columns
	if len(columns) != 5 {
		t.Fatalf("expected 5 default columns, got %d", len(columns))
	}
	wantStatuses := []model.TaskStatus{
		model.StatusBacklog, model.StatusTodo, model.StatusInProgress,
		model.StatusInReview, model.StatusDone,
	}
	for i, col := range columns {
		if col.Order != i {
			t.Errorf("column %s order = %d, want %d", col.Name, col.Order, i)
		}
		if col.Status != wantStatuses[i] {
			t.Errorf("column %s status = %s, want %s", col.Name, col.Status, wantStatuses[i])
		}
	}

	if len(project.Labels) != 4 {
		t.Errorf("expected 4 default labels, got %d", len(project.Labels))
	}
}

func TestCreateProjectKeyConflict(t *testing.T) {
	svc, owner, project, _ := setupProject(t)

	_, err := svc.Create(owner.ID, CreateProjectData{
		Name: "Another", Key: "plt", OrganizationID: project.OrganizationID,
	})
	assertCode(t, err, 40905)
}

func TestCreateProjectRequiresOrgRole(t *testing.T) {
	svc, _, project, db := setupProject(t)

	guest := seedUser(t, db, "guest@example.com")
	db.Create(&model.OrganizationMember{
		OrganizationID: project.OrganizationID, UserID: guest.ID, Role: role.OrgGuest,
	})
	_, err := svc.Create(guest.ID, CreateProjectData{
		Name: "Nope", Key: "NOP", OrganizationID: project.OrganizationID,
	})
	assertCode(t, err, 40302)

	outsider := seedUser(t, db, "outsider@example.com")
	_, err = svc.Create(outsider.ID, CreateProjectData{
		Name: "Nope", Key: "NO2", OrganizationID: project.OrganizationID,
	})
	assertCode(t, err, 40301)
}

func TestAddMemberBranches(t *testing.T) {
	svc, owner, project, db := setupProject(t)

	// known user becomes a member directly
	known := seedUser(t, db, "known@example.com")
	result, err := svc.AddMember(project.ID, owner.ID, "known@example.com", role.ProjectMember)
	if err != nil {
		t.Fatalf("add known: %v", err)
	}
	if result.Type != "member" || result.Member == nil || result.Member.UserID != known.ID {
		t.Fatalf("expected direct membership, got %+v", result)
	}

	// adding again is a conflict
	_, err = svc.AddMember(project.ID, owner.ID, "known@example.com", role.ProjectMember)
	assertCode(t, err, 40901)

	// unknown email gets an invitation instead
	result, err = svc.AddMember(project.ID, owner.ID, "unknown@example.com", role.ProjectManager)
	if err != nil {
		t.Fatalf("add unknown: %v", err)
	}
	if result.Type != "invitation" || result.Invitation == nil {
		t.Fatalf("expected invitation, got %+v", result)
	}
	if result.Invitation.Role != role.ProjectManager {
		t.Errorf("invitation role = %s", result.Invitation.Role)
	}

	// a second pending invitation to the same email is a conflict
	_, err = svc.AddMember(project.ID, owner.ID, "unknown@example.com", role.ProjectMember)
	assertCode(t, err, 40902)
}

func TestProjectOwnerProtections(t *testing.T) {
	svc, owner, project, db := setupProject(t)
	admin := seedUser(t, db, "admin@example.com")
	db.Create(&model.ProjectMember{ProjectID: project.ID, UserID: admin.ID, Role: role.ProjectAdmin})

	// the owner cannot be removed even by an admin
	assertCode(t, svc.RemoveMember(project.ID, admin.ID, owner.ID), 40003)

	// only the owner updates roles; the owner has no role row to update
	_, err := svc.UpdateMemberRole(project.ID, admin.ID, admin.ID, role.ProjectMember)
	assertCode(t, err, 40306)
	_, err = svc.UpdateMemberRole(project.ID, owner.ID, owner.ID, role.ProjectMember)
	assertCode(t, err, 40003)

	// delete is owner-only, admin is not enough
	assertCode(t, svc.Delete(project.ID, admin.ID), 40306)
}

func TestColumnDeleteGuard(t *testing.T) {
	projSvc, owner, project, db := setupProject(t)
	taskSvc := NewTaskService(db, newTestHub())

	columns, err := projSvc.GetColumns(project.ID, owner.ID)
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	todo, done := columns[1], columns[4]

	task, err := taskSvc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "Occupies a column", Status: model.StatusTodo,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ColumnID == nil || *task.ColumnID != todo.ID {
		t.Fatalf("task should land on the TODO column")
	}

	assertCode(t, projSvc.DeleteColumn(project.ID, owner.ID, todo.ID), 40004)

	// after moving the task out, deletion succeeds
	if _, err := taskSvc.MoveTask(project.ID, task.ID, owner.ID, done.ID, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := projSvc.DeleteColumn(project.ID, owner.ID, todo.ID); err != nil {
		t.Fatalf("delete emptied column: %v", err)
	}
}

func TestCreateColumnAppendsAtEnd(t *testing.T) {
	svc, owner, project, _ := setupProject(t)

	col, err := svc.CreateColumn(project.ID, owner.ID, CreateColumnData{Name: "Blocked"})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	if col.Order != 5 {
		t.Errorf("order = %d, want 5 (after the defaults)", col.Order)
	}
	if col.Status != model.StatusTodo {
		t.Errorf("default status = %s, want TODO", col.Status)
	}
}
