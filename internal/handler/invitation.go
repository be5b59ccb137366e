package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/service"
)

type InvitationHandler struct {
	invitationService *service.InvitationService
}

func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// GET /invitations/:token — public, no auth required
func (h *InvitationHandler) GetByToken(c *gin.Context) {
	invitation, err := h.invitationService.GetByToken(c.Param("token"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invitation)
}

// POST /invitations/:token/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	member, err := h.invitationService.Accept(c.Param("token"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// POST /invitations/:token/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.invitationService.Reject(c.Param("token"), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "invitation rejected"})
}

// GET /projects/:projectId/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	invitations, err := h.invitationService.List(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invitations)
}

// DELETE /projects/:projectId/invitations/:invitationId
func (h *InvitationHandler) Cancel(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	invitationID := parseID(c.Param("invitationId"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.invitationService.Cancel(projectID, invitationID, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "invitation cancelled"})
}
