package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"quantumflux/database"
	"quantumflux/internal/cache"
	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/http-api/repository"
	"quantumflux/internal/observability"

	"gorm.io/gorm"
)

// ListingCache is the read-through cache in front of the public listings.
type ListingCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Version(ctx context.Context, key string) (int64, error)
	SetIfVersion(ctx context.Context, key string, version int64, value interface{}) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

// TopicService manages topics together with their category and tag set,
// and serves the topic, category and tag listings.
type TopicService interface {
	Create(ctx context.Context, creatorID string, req dto.TopicRequest) (*models.Topic, error)
	Update(ctx context.Context, topicID int64, req dto.TopicRequest) error
	Delete(ctx context.Context, topicID int64) error
	List(ctx context.Context) ([]dto.TopicResponse, error)
	ListCategories(ctx context.Context) ([]dto.LabelResponse, error)
	ListTags(ctx context.Context) ([]dto.LabelResponse, error)
}

type topicService struct {
	db      *gorm.DB
	topics  *repository.TopicRepo
	labels  *repository.LabelRepo
	cache   ListingCache
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewTopicService(db *gorm.DB, listing ListingCache, metrics *observability.Metrics, logger *slog.Logger) TopicService {
	return &topicService{
		db:      db,
		topics:  repository.NewTopicRepo(db),
		labels:  repository.NewLabelRepo(db),
		cache:   listing,
		metrics: metrics,
		logger:  logger,
	}
}

// collected counts the orphans removed by one operation.
type collected struct {
	tags       int
	categories int
}

func (s *topicService) Create(ctx context.Context, creatorID string, req dto.TopicRequest) (*models.Topic, error) {
	if err := validateTopicRequest(req); err != nil {
		return nil, err
	}

	topic := &models.Topic{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   creatorID,
		Slug:        Slugify(req.Title),
	}
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		topics, labels := s.topics.WithTx(tx), s.labels.WithTx(tx)

		categoryID, err := labels.ResolveCategory(ctx, req.Category)
		if err != nil {
			return err
		}
		topic.CategoryID = categoryID

		if err := topics.Create(ctx, topic); err != nil {
			return err
		}
		return linkTags(ctx, topics, labels, topic.ID, req.Tags)
	})
	s.metrics.TopicOperation("create", err)
	if err != nil {
		return nil, wrap("create topic", err)
	}

	s.invalidate(ctx, cache.AllKeys...)
	return topic, nil
}

// Update rewrites title, description, category and the full tag set, then
// removes the previous category and tags if nothing references them anymore.
// The slug keeps the value derived at creation.
func (s *topicService) Update(ctx context.Context, topicID int64, req dto.TopicRequest) error {
	if err := validateTopicID(topicID); err != nil {
		return err
	}
	if err := validateTopicRequest(req); err != nil {
		return err
	}

	var gc collected
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		topics, labels := s.topics.WithTx(tx), s.labels.WithTx(tx)

		current, err := loadTopic(ctx, topics, topicID)
		if err != nil {
			return err
		}
		oldTagIDs, err := topics.TagIDs(ctx, topicID)
		if err != nil {
			return err
		}

		categoryID, err := labels.ResolveCategory(ctx, req.Category)
		if err != nil {
			return err
		}
		if err := topics.UpdateContent(ctx, topicID, req.Title, req.Description, categoryID); err != nil {
			return err
		}

		if err := topics.UnlinkAllTags(ctx, topicID); err != nil {
			return err
		}
		if err := linkTags(ctx, topics, labels, topicID, req.Tags); err != nil {
			return err
		}

		// reference counts are read after the topic row and its links are rewritten
		gc, err = collectOrphans(ctx, labels, oldTagIDs, current.CategoryID)
		return err
	})
	s.metrics.TopicOperation("update", err)
	if err != nil {
		return wrap("update topic", err)
	}

	s.recordCollected(topicID, "update", gc)
	s.invalidate(ctx, cache.AllKeys...)
	return nil
}

// Delete removes the topic and its tag links, then any tag or category left unreferenced.
// Comments on the topic are left in place.
func (s *topicService) Delete(ctx context.Context, topicID int64) error {
	if err := validateTopicID(topicID); err != nil {
		return err
	}

	var gc collected
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		topics, labels := s.topics.WithTx(tx), s.labels.WithTx(tx)

		current, err := loadTopic(ctx, topics, topicID)
		if err != nil {
			return err
		}
		tagIDs, err := topics.TagIDs(ctx, topicID)
		if err != nil {
			return err
		}

		if err := topics.UnlinkAllTags(ctx, topicID); err != nil {
			return err
		}
		if err := topics.Delete(ctx, topicID); err != nil {
			return err
		}

		gc, err = collectOrphans(ctx, labels, tagIDs, current.CategoryID)
		return err
	})
	s.metrics.TopicOperation("delete", err)
	if err != nil {
		return wrap("delete topic", err)
	}

	s.recordCollected(topicID, "delete", gc)
	s.invalidate(ctx, cache.AllKeys...)
	return nil
}

func loadTopic(ctx context.Context, topics *repository.TopicRepo, topicID int64) (*models.Topic, error) {
	topic, err := topics.GetByID(ctx, topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(fmt.Sprintf("topic %d", topicID))
	}
	return topic, err
}

// linkTags resolves every tag name and links it to the topic. Repeated names
// resolve to the same tag and the second link is ignored.
func linkTags(ctx context.Context, topics *repository.TopicRepo, labels *repository.LabelRepo, topicID int64, names []string) error {
	for _, name := range names {
		tagID, err := labels.ResolveTag(ctx, name)
		if err != nil {
			return err
		}
		if err := topics.LinkTag(ctx, topicID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func collectOrphans(ctx context.Context, labels *repository.LabelRepo, tagIDs []int64, categoryID int64) (collected, error) {
	var gc collected
	for _, id := range tagIDs {
		removed, err := labels.DeleteTagIfUnused(ctx, id)
		if err != nil {
			return gc, err
		}
		if removed {
			gc.tags++
		}
	}

	removed, err := labels.DeleteCategoryIfUnused(ctx, categoryID)
	if err != nil {
		return gc, err
	}
	if removed {
		gc.categories++
	}
	return gc, nil
}

func (s *topicService) recordCollected(topicID int64, op string, gc collected) {
	s.metrics.Collected("tag", gc.tags)
	s.metrics.Collected("category", gc.categories)
	if gc.tags > 0 || gc.categories > 0 {
		s.logger.Debug("orphan_labels_collected",
			"operation", op,
			"topic_id", topicID,
			"tags", gc.tags,
			"categories", gc.categories,
		)
	}
}

// List returns every topic, newest first, each with its tag names.
func (s *topicService) List(ctx context.Context) ([]dto.TopicResponse, error) {
	var out []dto.TopicResponse
	hit, fill := s.cached(ctx, cache.KeyTopics, &out)
	if hit {
		return out, nil
	}

	rows, err := s.topics.ListWithStats(ctx)
	if err != nil {
		return nil, wrap("list topics", err)
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	tags, err := s.topics.TagNamesByTopic(ctx, ids)
	if err != nil {
		return nil, wrap("list topics", err)
	}

	out = make([]dto.TopicResponse, len(rows))
	for i, row := range rows {
		names := tags[row.ID]
		if names == nil {
			names = []string{}
		}
		out[i] = dto.TopicResponse{
			ID:             row.ID,
			Title:          row.Title,
			Description:    row.Description,
			CategoryID:     row.CategoryID,
			CreatedBy:      row.CreatedBy,
			Slug:           row.Slug,
			CreatedAt:      row.CreatedAt,
			CategoryName:   row.CategoryName,
			AuthorUsername: row.AuthorUsername,
			CommentsCount:  row.CommentsCount,
			ReactionsCount: row.ReactionsCount,
			LikesCount:     row.LikesCount,
			DislikesCount:  row.DislikesCount,
			Tags:           names,
		}
	}

	s.store(ctx, fill, out)
	return out, nil
}

func (s *topicService) ListCategories(ctx context.Context) ([]dto.LabelResponse, error) {
	var out []dto.LabelResponse
	hit, fill := s.cached(ctx, cache.KeyCategories, &out)
	if hit {
		return out, nil
	}

	list, err := s.labels.ListCategories(ctx)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	out = make([]dto.LabelResponse, len(list))
	for i, c := range list {
		out[i] = dto.LabelResponse{ID: c.ID, Name: c.Name}
	}

	s.store(ctx, fill, out)
	return out, nil
}

func (s *topicService) ListTags(ctx context.Context) ([]dto.LabelResponse, error) {
	var out []dto.LabelResponse
	hit, fill := s.cached(ctx, cache.KeyTags, &out)
	if hit {
		return out, nil
	}

	list, err := s.labels.ListTags(ctx)
	if err != nil {
		return nil, wrap("list tags", err)
	}
	out = make([]dto.LabelResponse, len(list))
	for i, t := range list {
		out[i] = dto.LabelResponse{ID: t.ID, Name: t.Name}
	}

	s.store(ctx, fill, out)
	return out, nil
}

// cacheFill remembers which version of a listing key a miss observed.
type cacheFill struct {
	key     string
	version int64
}

// cached reads key into dest. Cache failures count as a miss. On a miss it
// returns the fill to hand to store once the listing is loaded, or nil when
// the cache cannot take one.
func (s *topicService) cached(ctx context.Context, key string, dest interface{}) (bool, *cacheFill) {
	if s.cache == nil {
		return false, nil
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache_read_failed", "key", key, "error", err)
		return false, nil
	}
	if hit {
		return true, nil
	}
	// must be read before the database so a concurrent invalidation is seen
	version, err := s.cache.Version(ctx, key)
	if err != nil {
		s.logger.Warn("cache_read_failed", "key", key, "error", err)
		return false, nil
	}
	return false, &cacheFill{key: key, version: version}
}

func (s *topicService) store(ctx context.Context, fill *cacheFill, value interface{}) {
	if s.cache == nil || fill == nil {
		return
	}
	stored, err := s.cache.SetIfVersion(ctx, fill.key, fill.version, value)
	if err != nil {
		s.logger.Warn("cache_write_failed", "key", fill.key, "error", err)
		return
	}
	if !stored {
		s.logger.Debug("cache_fill_discarded", "key", fill.key)
	}
}

func (s *topicService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache_invalidate_failed", "keys", keys, "error", err)
	}
}

func validateTopicRequest(req dto.TopicRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return validationError("category is required")
	}
	for i, tag := range req.Tags {
		if strings.TrimSpace(tag) == "" {
			return validationError("tag %d is blank", i)
		}
	}
	return nil
}

func validateTopicID(id int64) error {
	if id <= 0 {
		return validationError("topic id must be positive")
	}
	return nil
}
