package service

import (
	"fmt"
	"time"

	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"gorm.io/gorm"
)

type TaskService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewTaskService(db *gorm.DB, hub *realtime.Hub) *TaskService {
	return &TaskService{db: db, hub: hub}
}

type CreateTaskData struct {
	Title          string
	Description    string
	Status         model.TaskStatus
	Priority       model.TaskPriority
	ColumnID       *uint
	ParentID       *uint
	DueDate        *time.Time
	StartDate      *time.Time
	EstimatedHours *float64
	AssigneeIDs    []uint
	LabelIDs       []uint
}

// Create allocates the next task number for the project and, when no
// column is given, places the task on the board column bound to its
// status. Number allocation and the task insert share one transaction so
// concurrent creates cannot collide.
func (s *TaskService) Create(projectID, userID uint, data CreateTaskData) (*model.Task, error) {
	status := data.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := data.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		ProjectID:      projectID,
		Title:          data.Title,
		Description:    data.Description,
		Status:         status,
		Priority:       priority,
		ColumnID:       data.ColumnID,
		ParentID:       data.ParentID,
		DueDate:        data.DueDate,
		StartDate:      data.StartDate,
		EstimatedHours: data.EstimatedHours,
		CreatorID:      userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		row := tx.Model(&model.Task{}).Unscoped().
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(task_number), 0)").Row()
		if err := row.Scan(&maxNumber); err != nil {
			return err
		}
		task.TaskNumber = maxNumber + 1

		if task.ColumnID == nil {
			var column model.BoardColumn
			err := tx.Joins("JOIN boards ON boards.id = board_columns.board_id").
				Where("boards.project_id = ? AND board_columns.status = ?", projectID, status).
				Order("board_columns.`order` asc").
				First(&column).Error
			if err == nil {
				task.ColumnID = &column.ID
			}
		}

		if err := tx.Create(task).Error; err != nil {
			return err
		}

		for _, assigneeID := range data.AssigneeIDs {
			if err := tx.Create(&model.TaskAssignee{TaskID: task.ID, UserID: assigneeID}).Error; err != nil {
				return err
			}
		}
		for _, labelID := range data.LabelIDs {
			if err := tx.Create(&model.TaskLabel{TaskID: task.ID, LabelID: labelID}).Error; err != nil {
				return err
			}
		}

		return tx.Create(&model.Activity{
			Type:        model.ActivityCreated,
			Description: fmt.Sprintf("created task %q", task.Title),
			TaskID:      &task.ID,
			UserID:      userID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.FindByID(task.ID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "task:created", created)
	return created, nil
}

type TaskFilter struct {
	Status     model.TaskStatus
	Priority   model.TaskPriority
	AssigneeID uint
	Search     string
	Page       int
	Limit      int
}

// FindAll lists top-level tasks only; subtasks appear under their parent.
func (s *TaskService) FindAll(projectID uint, filter TaskFilter) ([]model.Task, int64, error) {
	query := s.db.Model(&model.Task{}).
		Where("project_id = ? AND parent_id IS NULL", projectID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != 0 {
		query = query.Where("id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)", filter.AssigneeID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var tasks []model.Task
	if err := query.
		Preload("Assignees.User").Preload("Labels.Label").Preload("Column").
		Order("`order` asc, created_at desc").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskService) FindByColumn(projectID, columnID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.db.
		Where("project_id = ? AND column_id = ? AND parent_id IS NULL", projectID, columnID).
		Preload("Assignees.User").Preload("Labels.Label").
		Order("`order` asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) FindByID(taskID uint) (*model.Task, error) {
	var task model.Task
	err := s.db.
		Preload("Creator").
		Preload("Column").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.`order` asc") }).
		Preload("Subtasks.Assignees.User").
		Preload("Assignees.User").
		Preload("Labels.Label").
		Preload("Comments", "parent_id IS NULL").
		Preload("Comments.User").
		Preload("Comments.Replies.User").
		Preload("Attachments.UploadedBy").
		First(&task, taskID).Error
	if err != nil {
		return nil, fmt.Errorf("40404:task not found")
	}
	return &task, nil
}

func (s *TaskService) findInProject(projectID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error; err != nil {
		return nil, fmt.Errorf("40404:task not found")
	}
	return &task, nil
}

type UpdateTaskData struct {
	Title          *string
	Description    *string
	Status         *model.TaskStatus
	Priority       *model.TaskPriority
	DueDate        *time.Time
	StartDate      *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	ClearDueDate   bool
}

// Update applies the patch as given; the column never changes here, only
// MoveTask couples status and column. At most one activity is recorded:
// STATUS_CHANGED when the status moved, UPDATED when another tracked
// field (title, priority) did, nothing otherwise.
func (s *TaskService) Update(projectID, taskID, userID uint, data UpdateTaskData) (*model.Task, error) {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	statusChanged := false
	tracked := false
	oldStatus := task.Status

	if data.Title != nil && *data.Title != task.Title {
		updates["title"] = *data.Title
		tracked = true
	}
	if data.Description != nil && *data.Description != task.Description {
		updates["description"] = *data.Description
	}
	if data.Status != nil && *data.Status != task.Status {
		updates["status"] = *data.Status
		statusChanged = true
	}
	if data.Priority != nil && *data.Priority != task.Priority {
		updates["priority"] = *data.Priority
		tracked = true
	}
	if data.DueDate != nil {
		updates["due_date"] = data.DueDate
	} else if data.ClearDueDate {
		updates["due_date"] = nil
	}
	if data.StartDate != nil {
		updates["start_date"] = data.StartDate
	}
	if data.EstimatedHours != nil {
		updates["estimated_hours"] = data.EstimatedHours
	}
	if data.ActualHours != nil {
		updates["actual_hours"] = data.ActualHours
	}

	if len(updates) > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(task).Updates(updates).Error; err != nil {
				return err
			}
			if !statusChanged && !tracked {
				return nil
			}
			activity := &model.Activity{
				TaskID: &task.ID,
				UserID: userID,
			}
			if statusChanged {
				activity.Type = model.ActivityStatusChanged
				activity.Description = fmt.Sprintf("changed status from %s to %s", oldStatus, *data.Status)
				activity.Metadata = model.JSONMap{"from": string(oldStatus), "to": string(*data.Status)}
			} else {
				activity.Type = model.ActivityUpdated
				activity.Description = fmt.Sprintf("updated task %q", task.Title)
			}
			return tx.Create(activity).Error
		})
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "task:updated", updated)
	return updated, nil
}

// Delete records an orphaned DELETED activity carrying the task identity
// in metadata, since the activity cannot point at the deleted row.
func (s *TaskService) Delete(projectID, taskID, userID uint) error {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(task).Error; err != nil {
			return err
		}
		return tx.Create(&model.Activity{
			Type:        model.ActivityDeleted,
			Description: fmt.Sprintf("deleted task %q", task.Title),
			UserID:      userID,
			Metadata: model.JSONMap{
				"taskTitle":  task.Title,
				"taskNumber": task.TaskNumber,
				"projectId":  projectID,
			},
		}).Error
	})
	if err != nil {
		return err
	}

	s.hub.Emit(realtime.ProjectRoom(projectID), "task:deleted", map[string]interface{}{
		"id":          taskID,
		"task_number": task.TaskNumber,
	})
	return nil
}

// MoveTask sets column and order, and always adopts the destination
// column's status, even when the task already carried a different one.
func (s *TaskService) MoveTask(projectID, taskID, userID, columnID uint, order float64) (*model.Task, error) {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	var column model.BoardColumn
	err = s.db.Joins("JOIN boards ON boards.id = board_columns.board_id").
		Where("board_columns.id = ? AND boards.project_id = ?", columnID, projectID).
		First(&column).Error
	if err != nil {
		return nil, fmt.Errorf("40405:column not found")
	}

	fromName := "Unknown"
	if task.ColumnID != nil {
		var from model.BoardColumn
		if err := s.db.First(&from, *task.ColumnID).Error; err == nil {
			fromName = from.Name
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"column_id": column.ID,
			"order":     order,
			"status":    column.Status,
		}
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&model.Activity{
			Type:        model.ActivityMoved,
			Description: fmt.Sprintf("moved task from %s to %s", fromName, column.Name),
			TaskID:      &task.ID,
			UserID:      userID,
			Metadata:    model.JSONMap{"from": fromName, "to": column.Name},
		}).Error
	})
	if err != nil {
		return nil, err
	}

	moved, err := s.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "task:moved", moved)
	return moved, nil
}

// AssignUser adds an assignee, records the activity and notifies the
// assignee both in-app and over their personal event room.
func (s *TaskService) AssignUser(projectID, taskID, userID, assigneeID uint) (*model.Task, error) {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	var assignee model.User
	if err := s.db.First(&assignee, assigneeID).Error; err != nil {
		return nil, fmt.Errorf("40404:assignee not found")
	}

	var existing int64
	s.db.Model(&model.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", taskID, assigneeID).
		Count(&existing)
	if existing > 0 {
		return nil, fmt.Errorf("40903:user is already assigned to this task")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.TaskAssignee{TaskID: taskID, UserID: assigneeID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.Activity{
			Type:        model.ActivityAssigned,
			Description: fmt.Sprintf("assigned %s", assignee.FullName()),
			TaskID:      &task.ID,
			UserID:      userID,
			Metadata:    model.JSONMap{"assigneeId": assigneeID},
		}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Notification{
			Type:    model.NotificationTaskAssigned,
			Title:   "You've been assigned a task",
			Message: fmt.Sprintf("You were assigned to %q", task.Title),
			UserID:  assigneeID,
			Metadata: model.JSONMap{
				"taskId":    taskID,
				"projectId": projectID,
			},
		}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "task:assigned", updated)
	s.hub.Emit(realtime.UserRoom(assigneeID), "notification:new", map[string]interface{}{
		"type":    model.NotificationTaskAssigned,
		"task_id": taskID,
	})
	return updated, nil
}

// UnassignUser fails when the user is not currently assigned.
func (s *TaskService) UnassignUser(projectID, taskID, userID, assigneeID uint) (*model.Task, error) {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	var assignee model.User
	s.db.First(&assignee, assigneeID)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("task_id = ? AND user_id = ?", taskID, assigneeID).
			Delete(&model.TaskAssignee{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("40404:assignee not found")
		}
		return tx.Create(&model.Activity{
			Type:        model.ActivityUnassigned,
			Description: fmt.Sprintf("unassigned %s", assignee.FullName()),
			TaskID:      &task.ID,
			UserID:      userID,
			Metadata:    model.JSONMap{"assigneeId": assigneeID},
		}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "task:updated", updated)
	return updated, nil
}

func (s *TaskService) AddComment(projectID, taskID, userID uint, content string, parentID *uint) (*model.Comment, error) {
	task, err := s.findInProject(projectID, taskID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		var parent model.Comment
		if err := s.db.Where("id = ? AND task_id = ?", *parentID, taskID).First(&parent).Error; err != nil {
			return nil, fmt.Errorf("40407:comment not found")
		}
	}

	comment := &model.Comment{
		TaskID:   taskID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Create(&model.Activity{
			Type:        model.ActivityCommented,
			Description: fmt.Sprintf("commented on %q", task.Title),
			TaskID:      &task.ID,
			UserID:      userID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("User").First(comment, comment.ID)
	s.hub.Emit(realtime.ProjectRoom(projectID), "comment:added", comment)
	return comment, nil
}

// UpdateComment is author-only.
func (s *TaskService) UpdateComment(projectID, taskID, commentID, userID uint, content string) (*model.Comment, error) {
	if _, err := s.findInProject(projectID, taskID); err != nil {
		return nil, err
	}
	var comment model.Comment
	if err := s.db.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error; err != nil {
		return nil, fmt.Errorf("40407:comment not found")
	}
	if comment.UserID != userID {
		return nil, fmt.Errorf("40308:only the comment author can modify it")
	}
	if err := s.db.Model(&comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	s.db.Preload("User").First(&comment, comment.ID)
	return &comment, nil
}

// DeleteComment is author-only and removes replies with the parent.
func (s *TaskService) DeleteComment(projectID, taskID, commentID, userID uint) error {
	if _, err := s.findInProject(projectID, taskID); err != nil {
		return err
	}
	var comment model.Comment
	if err := s.db.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error; err != nil {
		return fmt.Errorf("40407:comment not found")
	}
	if comment.UserID != userID {
		return fmt.Errorf("40308:only the comment author can modify it")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", commentID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "comment:deleted", map[string]interface{}{
		"id":      commentID,
		"task_id": taskID,
	})
	return nil
}

func (s *TaskService) GetComments(projectID, taskID uint) ([]model.Comment, error) {
	if _, err := s.findInProject(projectID, taskID); err != nil {
		return nil, err
	}
	var comments []model.Comment
	if err := s.db.
		Where("task_id = ? AND parent_id IS NULL", taskID).
		Preload("User").
		Preload("Replies.User").
		Order("created_at asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *TaskService) GetActivity(projectID, taskID uint, limit int) ([]model.Activity, error) {
	if _, err := s.findInProject(projectID, taskID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	var activities []model.Activity
	if err := s.db.
		Where("task_id = ?", taskID).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
