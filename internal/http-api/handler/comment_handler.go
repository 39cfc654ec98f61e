package handler

import (
	"net/http"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment-related routes
func (h *CommentHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/topics/:topicId/comments", h.ListByTopic)

	protected.POST("/topics/:topicId/comments", h.AddPost)
	comments := protected.Group("/comments")
	{
		comments.POST("/:commentId/replies", h.AddReply)
		comments.POST("/:commentId/reaction", h.React)
		comments.DELETE("/:commentId", h.Delete)
	}
}

// ListByTopic GET /api/topics/:topicId/comments
func (h *CommentHandler) ListByTopic(c *gin.Context) {
	topicID, ok := pathID(c, "topicId")
	if !ok {
		return
	}

	posts, err := h.commentService.ListForTopic(c.Request.Context(), topicID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// AddPost POST /api/topics/:topicId/comments (admin only)
func (h *CommentHandler) AddPost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "topicId")
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	id, err := h.commentService.AddPost(c.Request.Context(), userID, topicID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreatePostResponse{Message: "post added", CommentID: id})
}

// AddReply POST /api/comments/:commentId/replies
func (h *CommentHandler) AddReply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reply, err := h.commentService.AddReply(c.Request.Context(), userID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateReplyResponse{Message: "reply added", Reply: *reply})
}

// React POST /api/comments/:commentId/reaction
func (h *CommentHandler) React(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	state, err := h.commentService.React(c.Request.Context(), userID, commentID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReactionResponse{Message: "reaction updated", Reaction: state})
}

// Delete DELETE /api/comments/:commentId (admin only)
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "comment deleted"})
}
