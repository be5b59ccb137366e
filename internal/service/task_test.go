package service

import (
	"testing"

	"github.com/taskhive/backend/internal/model"
	"gorm.io/gorm"
)

func setupTasks(t *testing.T) (*TaskService, *ProjectService, *model.User, *model.Project, *gorm.DB) {
	t.Helper()
	projSvc, owner, project, db := setupProject(t)
	return NewTaskService(db, newTestHub()), projSvc, owner, project, db
}

func TestTaskNumbersSurviveDeletion(t *testing.T) {
	svc, _, owner, project, _ := setupTasks(t)

	first, err := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "second"})
	if first.TaskNumber != 1 || second.TaskNumber != 2 {
		t.Fatalf("numbers = %d, %d; want 1, 2", first.TaskNumber, second.TaskNumber)
	}

	// deleting the latest task must not free its number
	if err := svc.Delete(project.ID, second.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "third"})
	if third.TaskNumber != 3 {
		t.Errorf("number after deletion = %d, want 3", third.TaskNumber)
	}
}

func TestCreateTaskDefaultColumn(t *testing.T) {
	svc, projSvc, owner, project, _ := setupTasks(t)
	columns, _ := projSvc.GetColumns(project.ID, owner.ID)

	task, err := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "review me", Status: model.StatusInReview,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ColumnID == nil || *task.ColumnID != columns[3].ID {
		t.Error("task should land on the column bound to IN_REVIEW")
	}

	// CANCELLED has no column; the task stays off the board
	loose, err := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "cancelled", Status: model.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if loose.ColumnID != nil {
		t.Error("no column is bound to CANCELLED, column id should stay nil")
	}
}

func TestUpdateStatusKeepsColumn(t *testing.T) {
	svc, projSvc, owner, project, _ := setupTasks(t)
	columns, _ := projSvc.GetColumns(project.ID, owner.ID)

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "stays put", Status: model.StatusTodo,
	})
	if task.ColumnID == nil || *task.ColumnID != columns[1].ID {
		t.Fatal("task should start on the column bound to TODO")
	}

	// a direct status edit never touches the board; only a move does
	status := model.StatusCancelled
	updated, err := svc.Update(project.ID, task.ID, owner.ID, UpdateTaskData{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", updated.Status)
	}
	if updated.ColumnID == nil || *updated.ColumnID != columns[1].ID {
		t.Error("status edit must leave the task in its column")
	}
}

func TestMoveTaskAdoptsColumnStatus(t *testing.T) {
	svc, projSvc, owner, project, db := setupTasks(t)
	columns, _ := projSvc.GetColumns(project.ID, owner.ID)
	done := columns[4]

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "ship it", Status: model.StatusInProgress,
	})

	moved, err := svc.MoveTask(project.ID, task.ID, owner.ID, done.ID, 2.5)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Status != model.StatusDone {
		t.Errorf("status = %s, want DONE from the destination column", moved.Status)
	}
	if moved.Order != 2.5 {
		t.Errorf("order = %v, want 2.5", moved.Order)
	}

	// the move is recorded
	var activity model.Activity
	if err := db.Where("task_id = ? AND type = ?", task.ID, model.ActivityMoved).First(&activity).Error; err != nil {
		t.Fatal("MOVED activity missing")
	}
	if activity.Description != "moved task from In Progress to Done" {
		t.Errorf("description = %q", activity.Description)
	}

	// moving to a column from another project fails
	_, err = svc.MoveTask(project.ID, task.ID, owner.ID, 9999, 0)
	assertCode(t, err, 40405)
}

func TestMoveTaskAlwaysRecordsActivity(t *testing.T) {
	svc, projSvc, owner, project, db := setupTasks(t)
	columns, _ := projSvc.GetColumns(project.ID, owner.ID)
	done := columns[4]

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "reordered", Status: model.StatusDone,
	})

	// a same-column reorder is still a move
	if _, err := svc.MoveTask(project.ID, task.ID, owner.ID, done.ID, 1.5); err != nil {
		t.Fatalf("move: %v", err)
	}
	var moves int64
	db.Model(&model.Activity{}).Where("task_id = ? AND type = ?", task.ID, model.ActivityMoved).Count(&moves)
	if moves != 1 {
		t.Errorf("same-column move recorded %d MOVED activities, want 1", moves)
	}

	// a task with no column yet names the source Unknown
	loose, _ := svc.Create(project.ID, owner.ID, CreateTaskData{
		Title: "off the board", Status: model.StatusCancelled,
	})
	if _, err := svc.MoveTask(project.ID, loose.ID, owner.ID, done.ID, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	var activity model.Activity
	if err := db.Where("task_id = ? AND type = ?", loose.ID, model.ActivityMoved).First(&activity).Error; err != nil {
		t.Fatal("MOVED activity missing")
	}
	if activity.Description != "moved task from Unknown to Done" {
		t.Errorf("description = %q", activity.Description)
	}
}

func TestUpdateActivitySelection(t *testing.T) {
	svc, _, owner, project, db := setupTasks(t)

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "original"})

	countActivities := func(typ model.ActivityType) int64 {
		var n int64
		db.Model(&model.Activity{}).Where("task_id = ? AND type = ?", task.ID, typ).Count(&n)
		return n
	}

	// a title change records UPDATED
	title := "renamed"
	if _, err := svc.Update(project.ID, task.ID, owner.ID, UpdateTaskData{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if countActivities(model.ActivityUpdated) != 1 {
		t.Error("expected one UPDATED activity")
	}

	// a description edit applies but is not a tracked field
	description := "long form notes"
	if _, err := svc.Update(project.ID, task.ID, owner.ID, UpdateTaskData{Description: &description}); err != nil {
		t.Fatalf("update description: %v", err)
	}
	if countActivities(model.ActivityUpdated) != 1 {
		t.Error("description-only patch should not record an activity")
	}

	// a status change records STATUS_CHANGED, not UPDATED
	status := model.StatusDone
	if _, err := svc.Update(project.ID, task.ID, owner.ID, UpdateTaskData{Status: &status}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if countActivities(model.ActivityStatusChanged) != 1 {
		t.Error("expected one STATUS_CHANGED activity")
	}
	if countActivities(model.ActivityUpdated) != 1 {
		t.Error("status change should not add an UPDATED activity")
	}

	// a no-op patch records nothing
	same := "renamed"
	if _, err := svc.Update(project.ID, task.ID, owner.ID, UpdateTaskData{Title: &same}); err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if countActivities(model.ActivityUpdated) != 1 {
		t.Error("no-op patch should not record an activity")
	}
}

func TestDeleteTaskOrphanedActivity(t *testing.T) {
	svc, _, owner, project, db := setupTasks(t)

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "doomed"})
	if err := svc.Delete(project.ID, task.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var activity model.Activity
	if err := db.Where("type = ? AND user_id = ?", model.ActivityDeleted, owner.ID).First(&activity).Error; err != nil {
		t.Fatal("DELETED activity missing")
	}
	if activity.TaskID != nil {
		t.Error("DELETED activity must not reference the removed task")
	}
	if activity.Metadata["taskTitle"] != "doomed" {
		t.Errorf("metadata taskTitle = %v", activity.Metadata["taskTitle"])
	}
}

func TestAssignmentConflictAndNotification(t *testing.T) {
	svc, _, owner, project, db := setupTasks(t)
	assignee := seedUser(t, db, "dev@example.com")

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "work"})

	if _, err := svc.AssignUser(project.ID, task.ID, owner.ID, assignee.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := svc.AssignUser(project.ID, task.ID, owner.ID, assignee.ID)
	assertCode(t, err, 40903)

	var notifications int64
	db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", assignee.ID, model.NotificationTaskAssigned).
		Count(&notifications)
	if notifications != 1 {
		t.Errorf("expected exactly one assignment notification, got %d", notifications)
	}

	// unassigning someone who is not assigned fails
	if _, err := svc.UnassignUser(project.ID, task.ID, owner.ID, assignee.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	_, err = svc.UnassignUser(project.ID, task.ID, owner.ID, assignee.ID)
	assertCode(t, err, 40404)
}

func TestCommentAuthorOnly(t *testing.T) {
	svc, _, owner, project, db := setupTasks(t)
	other := seedUser(t, db, "other@example.com")

	task, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "discuss"})
	comment, err := svc.AddComment(project.ID, task.ID, owner.ID, "first", nil)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}

	_, err = svc.UpdateComment(project.ID, task.ID, comment.ID, other.ID, "hijacked")
	assertCode(t, err, 40308)
	assertCode(t, svc.DeleteComment(project.ID, task.ID, comment.ID, other.ID), 40308)

	// replies are removed together with the parent
	reply, err := svc.AddComment(project.ID, task.ID, other.ID, "reply", &comment.ID)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if err := svc.DeleteComment(project.ID, task.ID, comment.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var remaining int64
	db.Model(&model.Comment{}).Where("id IN ?", []uint{comment.ID, reply.ID}).Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected thread gone, %d rows left", remaining)
	}
}

func TestSubtasksExcludedFromTopLevelList(t *testing.T) {
	svc, projSvc, owner, project, _ := setupTasks(t)

	parent, _ := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "parent"})
	_, err := svc.Create(project.ID, owner.ID, CreateTaskData{Title: "child", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("subtask: %v", err)
	}

	tasks, total, err := svc.FindAll(project.ID, TaskFilter{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != parent.ID {
		t.Errorf("top-level list should hold only the parent, got %d rows", len(tasks))
	}

	detail, err := svc.FindByID(parent.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Subtasks) != 1 {
		t.Errorf("expected one subtask on the parent, got %d", len(detail.Subtasks))
	}

	// column views hide subtasks too
	columns, _ := projSvc.GetColumns(project.ID, owner.ID)
	inColumn, err := svc.FindByColumn(project.ID, columns[1].ID)
	if err != nil {
		t.Fatalf("by column: %v", err)
	}
	if len(inColumn) != 1 || inColumn[0].ID != parent.ID {
		t.Errorf("column view should hold only the parent, got %d rows", len(inColumn))
	}
}
