package repository

import (
	"context"
	"time"

	"quantumflux/database"
	"quantumflux/internal/http-api/models"

	"gorm.io/gorm"
)

// CommentRow is a comment with its author and reaction counters.
type CommentRow struct {
	ID              int64
	TopicID         int64
	ParentCommentID *int64
	UserID          string
	Content         string
	IsAdminPost     bool
	ReplyTo         *string
	CreatedAt       time.Time
	Author          string
	AuthorRole      string
	LikesCount      int64
	DislikesCount   int64
}

type CommentRepository interface {
	TopicExists(ctx context.Context, topicID int64) (bool, error)
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID int64) (*models.Comment, error)
	GetRow(ctx context.Context, commentID int64) (*CommentRow, error)
	ListPosts(ctx context.Context, topicID int64) ([]CommentRow, error)
	ListReplies(ctx context.Context, parentIDs []int64) ([]CommentRow, error)
	ToggleReaction(ctx context.Context, userID string, commentID int64, kind string) (string, error)
	DeleteWithReplies(ctx context.Context, commentID int64) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentRowSelect = `
SELECT
	c.id, c.topic_id, c.parent_comment_id, c.user_id, c.content, c.is_admin_post, c.reply_to, c.created_at,
	COALESCE(u.username, '') AS author,
	COALESCE(u.role, '') AS author_role,
	COUNT(CASE WHEN r.reaction_type = 'like' THEN 1 END) AS likes_count,
	COUNT(CASE WHEN r.reaction_type = 'dislike' THEN 1 END) AS dislikes_count
FROM comments c
LEFT JOIN users u ON u.id = c.user_id
LEFT JOIN reactions r ON r.comment_id = c.id`

const commentRowGroup = `
GROUP BY c.id, c.topic_id, c.parent_comment_id, c.user_id, c.content, c.is_admin_post, c.reply_to, c.created_at, u.username, u.role`

func (r *commentRepository) TopicExists(ctx context.Context, topicID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topicID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetRow(ctx context.Context, commentID int64) (*CommentRow, error) {
	var rows []CommentRow
	err := r.db.WithContext(ctx).Raw(commentRowSelect+` WHERE c.id = ?`+commentRowGroup, commentID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListPosts returns the top-level admin posts of a topic, newest first.
func (r *commentRepository) ListPosts(ctx context.Context, topicID int64) ([]CommentRow, error) {
	rows := []CommentRow{}
	err := r.db.WithContext(ctx).Raw(
		commentRowSelect+`
WHERE c.topic_id = ? AND c.parent_comment_id IS NULL AND c.is_admin_post = ?`+commentRowGroup+`
ORDER BY c.created_at DESC, c.id DESC`,
		topicID, true,
	).Scan(&rows).Error
	return rows, err
}

// ListReplies returns the replies of all given posts, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []int64) ([]CommentRow, error) {
	rows := []CommentRow{}
	if len(parentIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Raw(
		commentRowSelect+`
WHERE c.parent_comment_id IN ?`+commentRowGroup+`
ORDER BY c.created_at ASC, c.id ASC`,
		parentIDs,
	).Scan(&rows).Error
	return rows, err
}

// ToggleReaction applies kind for (user, comment): a missing reaction is
// added, the same kind is removed, a different kind replaces the old one.
// It returns the reaction left in place, or "" when none remains.
func (r *commentRepository) ToggleReaction(ctx context.Context, userID string, commentID int64, kind string) (string, error) {
	var result string
	err := database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, commentID).Error; err != nil {
			return err
		}

		var existing []models.Reaction
		if err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Order("id asc").Find(&existing).Error; err != nil {
			return err
		}

		switch {
		case len(existing) == 0:
			result = kind
			return tx.Create(&models.Reaction{UserID: userID, CommentID: commentID, ReactionType: kind}).Error
		case existing[0].ReactionType == kind:
			result = ""
			return tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&models.Reaction{}).Error
		default:
			result = kind
			if err := tx.Model(&models.Reaction{}).Where("id = ?", existing[0].ID).Update("reaction_type", kind).Error; err != nil {
				return err
			}
			// collapse any stray duplicates left by concurrent inserts
			return tx.Where("user_id = ? AND comment_id = ? AND id <> ?", userID, commentID, existing[0].ID).
				Delete(&models.Reaction{}).Error
		}
	})
	return result, err
}

// DeleteWithReplies removes the comment, its direct replies and every
// reaction on them. It returns the number of comments removed.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, commentID int64) (int64, error) {
	var removed int64
	err := database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, commentID).Error; err != nil {
			return err
		}

		ids := []int64{commentID}
		var replyIDs []int64
		if err := tx.Model(&models.Comment{}).Where("parent_comment_id = ?", commentID).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids = append(ids, replyIDs...)

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
