package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/service"
)

var errTaskNotFound = errors.New("40404:task not found")

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// POST /projects/:projectId/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title          string             `json:"title" binding:"required,max=256"`
		Description    string             `json:"description" binding:"max=20000"`
		Status         model.TaskStatus   `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
		Priority       model.TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
		ColumnID       *uint              `json:"column_id"`
		ParentID       *uint              `json:"parent_id"`
		DueDate        *time.Time         `json:"due_date"`
		StartDate      *time.Time         `json:"start_date"`
		EstimatedHours *float64           `json:"estimated_hours"`
		AssigneeIDs    []uint             `json:"assignee_ids"`
		LabelIDs       []uint             `json:"label_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.Create(projectID, userID, service.CreateTaskData{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		ColumnID:       req.ColumnID,
		ParentID:       req.ParentID,
		DueDate:        req.DueDate,
		StartDate:      req.StartDate,
		EstimatedHours: req.EstimatedHours,
		AssigneeIDs:    req.AssigneeIDs,
		LabelIDs:       req.LabelIDs,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// GET /projects/:projectId/tasks
func (h *TaskHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	page, pageSize := parsePage(c)

	filter := service.TaskFilter{
		Status:   model.TaskStatus(c.Query("status")),
		Priority: model.TaskPriority(c.Query("priority")),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    pageSize,
	}
	if s := c.Query("assignee_id"); s != "" {
		filter.AssigneeID = parseID(s)
	}

	tasks, total, err := h.taskService.FindAll(projectID, filter)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, tasks, total, page, pageSize)
}

// GET /projects/:projectId/columns/:columnId/tasks
func (h *TaskHandler) ListByColumn(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	columnID := parseID(c.Param("columnId"))

	tasks, err := h.taskService.FindByColumn(projectID, columnID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, tasks)
}

// GET /projects/:projectId/tasks/:taskId
func (h *TaskHandler) GetDetail(c *gin.Context) {
	task, err := h.taskService.FindByID(parseID(c.Param("taskId")))
	if err != nil {
		Fail(c, err)
		return
	}
	if task.ProjectID != parseID(c.Param("projectId")) {
		Fail(c, errTaskNotFound)
		return
	}
	Success(c, task)
}

// PUT /projects/:projectId/tasks/:taskId
func (h *TaskHandler) Update(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title          *string             `json:"title" binding:"omitempty,max=256"`
		Description    *string             `json:"description" binding:"omitempty,max=20000"`
		Status         *model.TaskStatus   `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
		Priority       *model.TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
		DueDate        *time.Time          `json:"due_date"`
		ClearDueDate   bool                `json:"clear_due_date"`
		StartDate      *time.Time          `json:"start_date"`
		EstimatedHours *float64            `json:"estimated_hours"`
		ActualHours    *float64            `json:"actual_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.Update(projectID, taskID, userID, service.UpdateTaskData{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		StartDate:      req.StartDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// DELETE /projects/:projectId/tasks/:taskId
func (h *TaskHandler) Delete(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.taskService.Delete(projectID, taskID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "task deleted"})
}

// PUT /projects/:projectId/tasks/:taskId/move
func (h *TaskHandler) Move(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		ColumnID uint    `json:"column_id" binding:"required"`
		Order    float64 `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.MoveTask(projectID, taskID, userID, req.ColumnID, req.Order)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// POST /projects/:projectId/tasks/:taskId/assignees
func (h *TaskHandler) Assign(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.AssignUser(projectID, taskID, userID, req.UserID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// DELETE /projects/:projectId/tasks/:taskId/assignees/:userId
func (h *TaskHandler) Unassign(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	assigneeID := parseID(c.Param("userId"))
	userID := middleware.GetCurrentUserID(c)

	task, err := h.taskService.UnassignUser(projectID, taskID, userID, assigneeID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// GET /projects/:projectId/tasks/:taskId/comments
func (h *TaskHandler) GetComments(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))

	comments, err := h.taskService.GetComments(projectID, taskID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comments)
}

// POST /projects/:projectId/tasks/:taskId/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content  string `json:"content" binding:"required,max=10000"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	comment, err := h.taskService.AddComment(projectID, taskID, userID, req.Content, req.ParentID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// PUT /projects/:projectId/tasks/:taskId/comments/:commentId
func (h *TaskHandler) UpdateComment(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	commentID := parseID(c.Param("commentId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content string `json:"content" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	comment, err := h.taskService.UpdateComment(projectID, taskID, commentID, userID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// DELETE /projects/:projectId/tasks/:taskId/comments/:commentId
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	commentID := parseID(c.Param("commentId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.taskService.DeleteComment(projectID, taskID, commentID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "comment deleted"})
}

// GET /projects/:projectId/tasks/:taskId/activity
func (h *TaskHandler) GetActivity(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	taskID := parseID(c.Param("taskId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.taskService.GetActivity(projectID, taskID, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, activities)
}
