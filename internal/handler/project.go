package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
	"github.com/taskhive/backend/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name           string     `json:"name" binding:"required,max=128"`
		Description    string     `json:"description" binding:"max=5000"`
		Key            string     `json:"key" binding:"required,min=2,max=10,alphanum"`
		Color          string     `json:"color" binding:"max=16"`
		StartDate      *time.Time `json:"start_date"`
		EndDate        *time.Time `json:"end_date"`
		OrganizationID uint       `json:"organization_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	project, err := h.projectService.Create(userID, service.CreateProjectData{
		Name:           req.Name,
		Description:    req.Description,
		Key:            req.Key,
		Color:          req.Color,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	userID := middleware.GetCurrentUserID(c)

	projects, total, err := h.projectService.FindAll(userID, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, projects, total, page, pageSize)
}

// GET /projects/:projectId
func (h *ProjectHandler) GetDetail(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	project, err := h.projectService.FindByID(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// PUT /projects/:projectId
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name        *string    `json:"name" binding:"omitempty,max=128"`
		Description *string    `json:"description" binding:"omitempty,max=5000"`
		Color       *string    `json:"color" binding:"omitempty,max=16"`
		Status      *string    `json:"status" binding:"omitempty,oneof=ACTIVE ON_HOLD COMPLETED ARCHIVED"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.StartDate != nil {
		updates["start_date"] = req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = req.EndDate
	}

	project, err := h.projectService.Update(projectID, userID, updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// DELETE /projects/:projectId
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.projectService.Delete(projectID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "project deleted"})
}

// GET /projects/:projectId/members
func (h *ProjectHandler) GetMembers(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	members, err := h.projectService.GetMembers(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, members)
}

// POST /projects/:projectId/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Email string           `json:"email" binding:"required,email"`
		Role  role.ProjectRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	result, err := h.projectService.AddMember(projectID, userID, req.Email, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// PUT /projects/:projectId/members/:userId
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	memberID := parseID(c.Param("userId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Role role.ProjectRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	member, err := h.projectService.UpdateMemberRole(projectID, userID, memberID, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// DELETE /projects/:projectId/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	memberID := parseID(c.Param("userId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.projectService.RemoveMember(projectID, userID, memberID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "member removed"})
}

// GET /projects/:projectId/columns
func (h *ProjectHandler) GetColumns(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	columns, err := h.projectService.GetColumns(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, columns)
}

// POST /projects/:projectId/columns
func (h *ProjectHandler) CreateColumn(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name   string           `json:"name" binding:"required,max=64"`
		Order  *int             `json:"order"`
		Status model.TaskStatus `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
		Color  string           `json:"color" binding:"max=16"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	column, err := h.projectService.CreateColumn(projectID, userID, service.CreateColumnData{
		Name:   req.Name,
		Order:  req.Order,
		Status: req.Status,
		Color:  req.Color,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, column)
}

// PUT /projects/:projectId/columns/:columnId
func (h *ProjectHandler) UpdateColumn(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	columnID := parseID(c.Param("columnId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name     *string           `json:"name" binding:"omitempty,max=64"`
		Status   *model.TaskStatus `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
		Color    *string           `json:"color" binding:"omitempty,max=16"`
		WipLimit *int              `json:"wip_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.WipLimit != nil {
		updates["wip_limit"] = req.WipLimit
	}

	column, err := h.projectService.UpdateColumn(projectID, userID, columnID, updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, column)
}

// DELETE /projects/:projectId/columns/:columnId
func (h *ProjectHandler) DeleteColumn(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	columnID := parseID(c.Param("columnId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.projectService.DeleteColumn(projectID, userID, columnID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "column deleted"})
}

// PUT /projects/:projectId/columns/reorder
func (h *ProjectHandler) ReorderColumns(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Columns []service.ColumnOrder `json:"columns" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	columns, err := h.projectService.ReorderColumns(projectID, userID, req.Columns)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, columns)
}

// GET /projects/:projectId/labels
func (h *ProjectHandler) GetLabels(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	labels, err := h.projectService.GetLabels(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, labels)
}

// POST /projects/:projectId/labels
func (h *ProjectHandler) CreateLabel(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name  string `json:"name" binding:"required,max=64"`
		Color string `json:"color" binding:"max=16"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	label, err := h.projectService.CreateLabel(projectID, userID, req.Name, req.Color)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, label)
}

// DELETE /projects/:projectId/labels/:labelId
func (h *ProjectHandler) DeleteLabel(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	labelID := parseID(c.Param("labelId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.projectService.DeleteLabel(projectID, userID, labelID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "label deleted"})
}

// GET /projects/:projectId/stats
func (h *ProjectHandler) GetStats(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	stats, err := h.projectService.GetStats(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, stats)
}
