package repository

import (
	"context"
	"fmt"
	"time"

	"quantumflux/internal/http-api/models"

	"gorm.io/gorm"
)

// ActivityRow is one entry of a user's recent activity feed.
type ActivityRow struct {
	Description  string
	OccurredAt   time.Time
	RelatedTitle *string
}

type ActivityCounts struct {
	Topics    int64
	Comments  int64
	Reactions int64
}

type TagCount struct {
	Name string
	Uses int64
}

// ActivityRepo reads the per-user activity summary.
type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) RecentTopics(ctx context.Context, userID string, limit int) ([]ActivityRow, error) {
	return r.recent(ctx, `
SELECT t.title AS description, t.created_at AS occurred_at, c.name AS related_title
FROM topics t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.created_by = ?
ORDER BY t.created_at DESC, t.id DESC
LIMIT ?`, userID, limit)
}

func (r *ActivityRepo) RecentComments(ctx context.Context, userID string, limit int) ([]ActivityRow, error) {
	return r.recent(ctx, `
SELECT c.content AS description, c.created_at AS occurred_at, t.title AS related_title
FROM comments c
LEFT JOIN topics t ON t.id = c.topic_id
WHERE c.user_id = ?
ORDER BY c.created_at DESC, c.id DESC
LIMIT ?`, userID, limit)
}

// RecentReactions reports the reaction type as Description and the reacted
// comment's content as RelatedTitle.
func (r *ActivityRepo) RecentReactions(ctx context.Context, userID string, limit int) ([]ActivityRow, error) {
	return r.recent(ctx, `
SELECT r.reaction_type AS description, r.created_at AS occurred_at, c.content AS related_title
FROM reactions r
LEFT JOIN comments c ON c.id = r.comment_id
WHERE r.user_id = ?
ORDER BY r.created_at DESC, r.id DESC
LIMIT ?`, userID, limit)
}

func (r *ActivityRepo) recent(ctx context.Context, query string, userID string, limit int) ([]ActivityRow, error) {
	rows := []ActivityRow{}
	if err := r.db.WithContext(ctx).Raw(query, userID, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return rows, nil
}

func (r *ActivityRepo) Counts(ctx context.Context, userID string) (ActivityCounts, error) {
	var out ActivityCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Topic{}).Where("created_by = ?", userID).Count(&out.Topics).Error; err != nil {
		return out, fmt.Errorf("count topics: %w", err)
	}
	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&out.Comments).Error; err != nil {
		return out, fmt.Errorf("count comments: %w", err)
	}
	if err := db.Model(&models.Reaction{}).Where("user_id = ?", userID).Count(&out.Reactions).Error; err != nil {
		return out, fmt.Errorf("count reactions: %w", err)
	}
	return out, nil
}

// FavoriteTags returns the tags used most on the user's own topics.
func (r *ActivityRepo) FavoriteTags(ctx context.Context, userID string, limit int) ([]TagCount, error) {
	rows := []TagCount{}
	err := r.db.WithContext(ctx).Raw(`
SELECT tg.name AS name, COUNT(*) AS uses
FROM topic_tags tt
JOIN tags tg ON tg.id = tt.tag_id
JOIN topics t ON t.id = tt.topic_id
WHERE t.created_by = ?
GROUP BY tg.id, tg.name
ORDER BY uses DESC, tg.name ASC
LIMIT ?`, userID, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("favorite tags: %w", err)
	}
	return rows, nil
}
