package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/role"
	"github.com/taskhive/backend/internal/service"
)

type OrganizationHandler struct {
	orgService *service.OrganizationService
}

func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// POST /organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Slug        string `json:"slug" binding:"max=50"`
		Description string `json:"description" binding:"max=5000"`
		Logo        string `json:"logo" binding:"max=512"`
		Website     string `json:"website" binding:"max=256"`
		Industry    string `json:"industry" binding:"max=64"`
		Size        string `json:"size" binding:"max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	org, err := h.orgService.Create(userID, service.CreateOrganizationData{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Logo:        req.Logo,
		Website:     req.Website,
		Industry:    req.Industry,
		Size:        req.Size,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, org)
}

// GET /organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	orgs, err := h.orgService.FindAll(userID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, orgs)
}

// GET /organizations/:orgId
func (h *OrganizationHandler) GetDetail(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	org, err := h.orgService.FindByID(orgID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"organization": org,
		"role":         middleware.GetOrgRole(c),
	})
}

// GET /organizations/slug/:slug
func (h *OrganizationHandler) GetBySlug(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	org, err := h.orgService.FindBySlug(c.Param("slug"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, org)
}

// PUT /organizations/:orgId
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name        *string `json:"name" binding:"omitempty,max=128"`
		Description *string `json:"description" binding:"omitempty,max=5000"`
		Logo        *string `json:"logo" binding:"omitempty,max=512"`
		Website     *string `json:"website" binding:"omitempty,max=256"`
		Industry    *string `json:"industry" binding:"omitempty,max=64"`
		Size        *string `json:"size" binding:"omitempty,max=32"`
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
	if req.Logo != nil {
		updates["logo"] = *req.Logo
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Industry != nil {
		updates["industry"] = *req.Industry
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}

	org, err := h.orgService.Update(orgID, userID, updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, org)
}

// PUT /organizations/:orgId/slug
func (h *OrganizationHandler) UpdateSlug(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Slug string `json:"slug" binding:"required,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	org, err := h.orgService.UpdateSlug(orgID, userID, req.Slug)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, org)
}

// DELETE /organizations/:orgId
func (h *OrganizationHandler) Delete(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.orgService.Delete(orgID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "organization deleted"})
}

// PUT /organizations/:orgId/settings
func (h *OrganizationHandler) UpdateSettings(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		AllowMemberInvites    *bool             `json:"allow_member_invites"`
		DefaultProjectRole    *role.ProjectRole `json:"default_project_role"`
		RequireApprovalToJoin *bool             `json:"require_approval_to_join"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	settings, err := h.orgService.UpdateSettings(orgID, userID, service.SettingsPatch{
		AllowMemberInvites:    req.AllowMemberInvites,
		DefaultProjectRole:    req.DefaultProjectRole,
		RequireApprovalToJoin: req.RequireApprovalToJoin,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, settings)
}

// GET /organizations/:orgId/members
func (h *OrganizationHandler) GetMembers(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	members, err := h.orgService.GetMembers(orgID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, members)
}

// POST /organizations/:orgId/members
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Email string       `json:"email" binding:"required,email"`
		Role  role.OrgRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	member, err := h.orgService.AddMember(orgID, userID, req.Email, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// PUT /organizations/:orgId/members/:userId
func (h *OrganizationHandler) UpdateMemberRole(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	memberID := parseID(c.Param("userId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Role role.OrgRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	member, err := h.orgService.UpdateMemberRole(orgID, userID, memberID, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// DELETE /organizations/:orgId/members/:userId
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	memberID := parseID(c.Param("userId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.orgService.RemoveMember(orgID, userID, memberID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "member removed"})
}

// POST /organizations/:orgId/transfer-ownership
func (h *OrganizationHandler) TransferOwnership(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		NewOwnerID uint `json:"new_owner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	if err := h.orgService.TransferOwnership(orgID, userID, req.NewOwnerID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "ownership transferred"})
}

// POST /organizations/:orgId/invitations
func (h *OrganizationHandler) CreateInvitation(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Email string       `json:"email" binding:"required,email"`
		Role  role.OrgRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	invitation, err := h.orgService.CreateInvitation(orgID, userID, req.Email, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invitation)
}

// GET /organizations/:orgId/invitations
func (h *OrganizationHandler) GetInvitations(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	invitations, err := h.orgService.GetInvitations(orgID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invitations)
}

// DELETE /organizations/:orgId/invitations/:invitationId
func (h *OrganizationHandler) CancelInvitation(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	invitationID := parseID(c.Param("invitationId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.orgService.CancelInvitation(orgID, userID, invitationID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "invitation cancelled"})
}

// GET /org-invitations/:token — public lookup behind the invite link
func (h *OrganizationHandler) GetInvitationByToken(c *gin.Context) {
	invitation, err := h.orgService.GetInvitationByToken(c.Param("token"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invitation)
}

// POST /org-invitations/:token/accept
func (h *OrganizationHandler) AcceptInvitation(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	member, err := h.orgService.AcceptInvitation(c.Param("token"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// POST /org-invitations/:token/reject
func (h *OrganizationHandler) RejectInvitation(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.orgService.RejectInvitation(c.Param("token"), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "invitation rejected"})
}

// GET /organizations/:orgId/dashboard
func (h *OrganizationHandler) GetDashboard(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	stats, err := h.orgService.GetDashboardStats(orgID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, stats)
}

// GET /organizations/:orgId/projects
func (h *OrganizationHandler) GetProjects(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	projects, total, err := h.orgService.GetProjects(orgID, userID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, projects, total, page, pageSize)
}

// POST /organizations/:orgId/switch
func (h *OrganizationHandler) Switch(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	org, err := h.orgService.SwitchOrganization(userID, orgID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, org)
}
