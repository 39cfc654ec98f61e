package handler

import (
	"net/http"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	topicService service.TopicService
}

func NewTopicHandler(topicService service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

// RegisterRoutes mounts listings on public and topic writes on protected.
func (h *TopicHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/topics", h.List)
	public.GET("/categories", h.ListCategories)
	public.GET("/tags", h.ListTags)

	protected.POST("/topics", h.Create)
	protected.PUT("/topics/:id", h.Update)
	protected.DELETE("/topics/:id", h.Delete)
}

// List GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.topicService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// Create POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	topic, err := h.topicService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateTopicResponse{
		Message: "topic created",
		TopicID: topic.ID,
		Slug:    topic.Slug,
	})
}

// Update PUT /api/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.topicService.Update(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "topic updated"})
}

// Delete DELETE /api/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.topicService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "topic deleted"})
}

// ListCategories GET /api/categories
func (h *TopicHandler) ListCategories(c *gin.Context) {
	list, err := h.topicService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListTags GET /api/tags
func (h *TopicHandler) ListTags(c *gin.Context) {
	list, err := h.topicService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
