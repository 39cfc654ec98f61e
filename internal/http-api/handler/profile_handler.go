package handler

import (
	"net/http"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService  service.ProfileService
	activityService service.ActivityService
}

func NewProfileHandler(profileService service.ProfileService, activityService service.ActivityService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, activityService: activityService}
}

func (h *ProfileHandler) RegisterRoutes(protected *gin.RouterGroup) {
	user := protected.Group("/user")
	{
		user.GET("/profile", h.Get)
		user.PUT("/profile", h.Update)
		user.PUT("/avatar", h.UpdateAvatar)
		user.PUT("/password", h.UpdatePassword)
		user.GET("/activity", h.Activity)
	}
}

// Get GET /api/user/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update PUT /api/user/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdateProfileResponse{Message: "profile updated", User: *profile})
}

// UpdateAvatar PUT /api/user/avatar
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.profileService.UpdateAvatar(c.Request.Context(), userID, req.AvatarURL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvatarResponse{Message: "avatar updated", AvatarURL: req.AvatarURL})
}

// UpdatePassword PUT /api/user/password
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.profileService.UpdatePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed"})
}

// Activity GET /api/user/activity
func (h *ProfileHandler) Activity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	activity, err := h.activityService.ForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}
