package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	orgService  *service.OrganizationService
}

func NewAuthHandler(authService *service.AuthService, orgService *service.OrganizationService) *AuthHandler {
	return &AuthHandler{authService: authService, orgService: orgService}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8,max=72"`
		FirstName string `json:"first_name" binding:"required,max=64"`
		LastName  string `json:"last_name" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	result, err := h.authService.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}
	if err := h.authService.Logout(req.RefreshToken); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "logged out"})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	// the auth middleware already loaded the row
	user := middleware.GetCurrentUser(c)
	needsOrg := h.orgService.UserNeedsOrganization(user.ID)
	Success(c, gin.H{
		"user":                    user,
		"needs_organization":      needsOrg,
		"current_organization_id": user.CurrentOrganizationID,
	})
}

// PUT /auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name" binding:"omitempty,max=64"`
		LastName  *string `json:"last_name" binding:"omitempty,max=64"`
		Avatar    *string `json:"avatar" binding:"omitempty,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	user, err := h.authService.UpdateProfile(userID, service.UpdateProfileData{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "password updated"})
}
