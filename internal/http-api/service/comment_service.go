package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"quantumflux/internal/cache"
	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/http-api/repository"

	"gorm.io/gorm"
)

// CommentService handles admin posts, replies and reactions.
type CommentService interface {
	ListForTopic(ctx context.Context, topicID int64) ([]dto.PostResponse, error)
	AddPost(ctx context.Context, userID string, topicID int64, content string) (int64, error)
	AddReply(ctx context.Context, userID string, commentID int64, req dto.CreateReplyRequest) (*dto.ReplyResponse, error)
	React(ctx context.Context, userID string, commentID int64, kind string) (string, error)
	Delete(ctx context.Context, userID string, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	cache    ListingCache
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, users repository.UserRepository, listing ListingCache, logger *slog.Logger) CommentService {
	return &commentService{comments: comments, users: users, cache: listing, logger: logger}
}

// ListForTopic returns the admin posts of a topic, newest first, each with
// its replies oldest first.
func (s *commentService) ListForTopic(ctx context.Context, topicID int64) ([]dto.PostResponse, error) {
	if topicID <= 0 {
		return nil, validationError("topic id must be positive")
	}

	posts, err := s.comments.ListPosts(ctx, topicID)
	if err != nil {
		return nil, wrap("list comments", err)
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	replies, err := s.comments.ListReplies(ctx, ids)
	if err != nil {
		return nil, wrap("list comments", err)
	}

	byParent := make(map[int64][]dto.ReplyResponse, len(posts))
	for i := range replies {
		r := &replies[i]
		if r.ParentCommentID == nil {
			continue
		}
		byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], toReplyResponse(r))
	}

	out := make([]dto.PostResponse, len(posts))
	for i, p := range posts {
		thread := byParent[p.ID]
		if thread == nil {
			thread = []dto.ReplyResponse{}
		}
		out[i] = dto.PostResponse{
			ID:            p.ID,
			Content:       p.Content,
			Author:        p.Author,
			AuthorRole:    p.AuthorRole,
			LikesCount:    p.LikesCount,
			DislikesCount: p.DislikesCount,
			CreatedAt:     p.CreatedAt,
			Replies:       thread,
		}
	}
	return out, nil
}

// AddPost creates a top-level admin post. Only admins may post.
func (s *commentService) AddPost(ctx context.Context, userID string, topicID int64, content string) (int64, error) {
	if topicID <= 0 {
		return 0, validationError("topic id must be positive")
	}
	if strings.TrimSpace(content) == "" {
		return 0, validationError("content is required")
	}
	if err := s.authorize(ctx, userID, ActionAdminPost); err != nil {
		return 0, err
	}

	exists, err := s.comments.TopicExists(ctx, topicID)
	if err != nil {
		return 0, wrap("add post", err)
	}
	if !exists {
		return 0, notFound(fmt.Sprintf("topic %d", topicID))
	}

	post := &models.Comment{
		TopicID:     topicID,
		UserID:      userID,
		Content:     content,
		IsAdminPost: true,
	}
	if err := s.comments.Create(ctx, post); err != nil {
		return 0, wrap("add post", err)
	}

	s.invalidateTopics(ctx)
	return post.ID, nil
}

// AddReply answers a post. A reply to a reply is attached to its top-level post.
func (s *commentService) AddReply(ctx context.Context, userID string, commentID int64, req dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	if commentID <= 0 {
		return nil, validationError("comment id must be positive")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationError("content is required")
	}

	parent, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, commentError("add reply", commentID, err)
	}
	rootID := parent.ID
	if parent.ParentCommentID != nil {
		rootID = *parent.ParentCommentID
	}

	reply := &models.Comment{
		TopicID:         parent.TopicID,
		ParentCommentID: &rootID,
		UserID:          userID,
		Content:         req.Content,
		ReplyTo:         req.ReplyTo,
	}
	if err := s.comments.Create(ctx, reply); err != nil {
		return nil, wrap("add reply", err)
	}

	row, err := s.comments.GetRow(ctx, reply.ID)
	if err != nil {
		return nil, wrap("add reply", err)
	}

	s.invalidateTopics(ctx)
	resp := toReplyResponse(row)
	return &resp, nil
}

// React toggles the caller's reaction and returns what remains ("" for none).
func (s *commentService) React(ctx context.Context, userID string, commentID int64, kind string) (string, error) {
	if commentID <= 0 {
		return "", validationError("comment id must be positive")
	}
	if !models.ValidReaction(kind) {
		return "", validationError("reaction type must be like or dislike")
	}

	state, err := s.comments.ToggleReaction(ctx, userID, commentID, kind)
	if err != nil {
		return "", commentError("react", commentID, err)
	}

	s.invalidateTopics(ctx)
	return state, nil
}

// Delete removes a comment with its direct replies and their reactions. Admin only.
func (s *commentService) Delete(ctx context.Context, userID string, commentID int64) error {
	if commentID <= 0 {
		return validationError("comment id must be positive")
	}
	if err := s.authorize(ctx, userID, ActionDeleteComment); err != nil {
		return err
	}

	removed, err := s.comments.DeleteWithReplies(ctx, commentID)
	if err != nil {
		return commentError("delete comment", commentID, err)
	}

	s.logger.Debug("comment_deleted", "comment_id", commentID, "removed", removed)
	s.invalidateTopics(ctx)
	return nil
}

// authorize reads the caller's current role and checks it against action.
func (s *commentService) authorize(ctx context.Context, userID string, action Action) error {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorized
		}
		return wrap("authorize", err)
	}
	if Authorize(role, action) == Forbidden {
		return fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return nil
}

func (s *commentService) invalidateTopics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.KeyTopics); err != nil {
		s.logger.Warn("cache_invalidate_failed", "keys", cache.KeyTopics, "error", err)
	}
}

func commentError(op string, commentID int64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(fmt.Sprintf("comment %d", commentID))
	}
	return wrap(op, err)
}

func toReplyResponse(r *repository.CommentRow) dto.ReplyResponse {
	var parentID int64
	if r.ParentCommentID != nil {
		parentID = *r.ParentCommentID
	}
	return dto.ReplyResponse{
		ID:              r.ID,
		TopicID:         r.TopicID,
		ParentCommentID: parentID,
		UserID:          r.UserID,
		Content:         r.Content,
		ReplyTo:         r.ReplyTo,
		Author:          r.Author,
		LikesCount:      r.LikesCount,
		DislikesCount:   r.DislikesCount,
		CreatedAt:       r.CreatedAt,
	}
}
