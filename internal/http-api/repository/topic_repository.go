package repository

import (
	"context"
	"fmt"
	"time"

	"quantumflux/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicStats is one row of the topic listing: the topic plus joined names and counters.
type TopicStats struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CategoryID     int64     `json:"category_id"`
	CreatedBy      string    `json:"created_by"`
	Slug           string    `json:"slug"`
	CreatedAt      time.Time `json:"created_at"`
	CategoryName   *string   `json:"category_name"`
	AuthorUsername *string   `json:"author_username"`
	CommentsCount  int64     `json:"comments_count"`
	ReactionsCount int64     `json:"reactions_count"`
	LikesCount     int64     `json:"likes_count"`
	DislikesCount  int64     `json:"dislikes_count"`
}

type TopicRepo struct {
	db *gorm.DB
}

func NewTopicRepo(db *gorm.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *TopicRepo) WithTx(tx *gorm.DB) *TopicRepo {
	return &TopicRepo{db: tx}
}

func (r *TopicRepo) Create(ctx context.Context, t *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	// GORM populates t.ID and t.CreatedAt
	return nil
}

func (r *TopicRepo) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	var t models.Topic
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateContent rewrites title, description and category. The slug is left as created.
func (r *TopicRepo) UpdateContent(ctx context.Context, id int64, title, description string, categoryID int64) error {
	res := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
		"category_id": categoryID,
	})
	if res.Error != nil {
		return fmt.Errorf("update topic %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update topic %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *TopicRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Topic{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete topic %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete topic %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// TagIDs returns the ids of every tag linked to the topic.
func (r *TopicRepo) TagIDs(ctx context.Context, topicID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.WithContext(ctx).Model(&models.TopicTag{}).
		Where("topic_id = ?", topicID).
		Order("tag_id asc").
		Pluck("tag_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("get topic %d tag ids: %w", topicID, err)
	}
	return ids, nil
}

// LinkTag links tag to topic; an existing link is left alone.
func (r *TopicRepo) LinkTag(ctx context.Context, topicID, tagID int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.TopicTag{TopicID: topicID, TagID: tagID}).Error
	if err != nil {
		return fmt.Errorf("link tag %d to topic %d: %w", tagID, topicID, err)
	}
	return nil
}

func (r *TopicRepo) UnlinkAllTags(ctx context.Context, topicID int64) error {
	if err := r.db.WithContext(ctx).Where("topic_id = ?", topicID).Delete(&models.TopicTag{}).Error; err != nil {
		return fmt.Errorf("unlink tags of topic %d: %w", topicID, err)
	}
	return nil
}

const topicStatsQuery = `
SELECT
	t.id, t.title, t.description, t.category_id, t.created_by, t.slug, t.created_at,
	c.name AS category_name,
	u.username AS author_username,
	COUNT(DISTINCT com.id) AS comments_count,
	COUNT(DISTINCT r.id) AS reactions_count,
	COUNT(DISTINCT CASE WHEN r.reaction_type = 'like' THEN r.id END) AS likes_count,
	COUNT(DISTINCT CASE WHEN r.reaction_type = 'dislike' THEN r.id END) AS dislikes_count
FROM topics t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN users u ON u.id = t.created_by
LEFT JOIN comments com ON com.topic_id = t.id
LEFT JOIN reactions r ON r.comment_id = com.id
GROUP BY t.id, t.title, t.description, t.category_id, t.created_by, t.slug, t.created_at, c.name, u.username
ORDER BY t.created_at DESC, t.id DESC`

// ListWithStats returns every topic, newest first, with category name,
// author name and comment/reaction counters.
func (r *TopicRepo) ListWithStats(ctx context.Context) ([]TopicStats, error) {
	list := []TopicStats{}
	if err := r.db.WithContext(ctx).Raw(topicStatsQuery).Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return list, nil
}

// TagNamesByTopic returns the tag names of each requested topic in one query.
// Topics without tags are absent from the map.
func (r *TopicRepo) TagNamesByTopic(ctx context.Context, topicIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(topicIDs))
	if len(topicIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TopicID int64
		Name    string
	}
	err := r.db.WithContext(ctx).
		Table("topic_tags tt").
		Select("tt.topic_id, tg.name").
		Joins("JOIN tags tg ON tg.id = tt.tag_id").
		Where("tt.topic_id IN ?", topicIDs).
		Order("tt.topic_id asc, tg.name asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get topic tags: %w", err)
	}

	for _, row := range rows {
		out[row.TopicID] = append(out[row.TopicID], row.Name)
	}
	return out, nil
}
