package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"quantumflux/internal/cache"
	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/observability"
	dbtest "quantumflux/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type TopicServiceSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	metrics *observability.Metrics
	svc     TopicService
	author  *models.User
}

func TestTopicServiceSuite(t *testing.T) {
	suite.Run(t, new(TopicServiceSuite))
}

func (s *TopicServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.OpenMigratedSQLite(s.T())
	s.metrics = observability.NewMetrics()
	s.svc = NewTopicService(s.db, nil, s.metrics, discardLogger())
	s.author = dbtest.SeedUser(s.T(), s.db, "author", models.RoleUser)
}

func (s *TopicServiceSuite) create(title, category string, tags ...string) *models.Topic {
	topic, err := s.svc.Create(s.ctx, s.author.ID, dto.TopicRequest{
		Title:       title,
		Description: "about " + title,
		Category:    category,
		Tags:        tags,
	})
	s.Require().NoError(err)
	return topic
}

func (s *TopicServiceSuite) tagNames(topicID int64) []string {
	var names []string
	s.Require().NoError(s.db.Table("topic_tags tt").
		Select("tg.name").
		Joins("JOIN tags tg ON tg.id = tt.tag_id").
		Where("tt.topic_id = ?", topicID).
		Order("tg.name").
		Pluck("tg.name", &names).Error)
	return names
}

func (s *TopicServiceSuite) allTagNames() []string {
	var names []string
	s.Require().NoError(s.db.Model(&models.Tag{}).Order("name").Pluck("name", &names).Error)
	return names
}

func (s *TopicServiceSuite) allCategoryNames() []string {
	var names []string
	s.Require().NoError(s.db.Model(&models.Category{}).Order("name").Pluck("name", &names).Error)
	return names
}

func (s *TopicServiceSuite) tagID(name string) int64 {
	var tag models.Tag
	s.Require().NoError(s.db.Where("name = ?", name).First(&tag).Error)
	return tag.ID
}

func (s *TopicServiceSuite) TestCreateResolvesLabelsByName() {
	topic := s.create("Hello, World!  Foo", "General", "go", "sql")

	s.Equal("hello-world-foo", topic.Slug)
	s.NotZero(topic.ID)

	var category models.Category
	s.Require().NoError(s.db.First(&category, topic.CategoryID).Error)
	s.Equal("General", category.Name)
	s.Equal([]string{"go", "sql"}, s.tagNames(topic.ID))
}

func (s *TopicServiceSuite) TestCreateIsIdempotentOnLabels() {
	first := s.create("one", "General", "go", "go", "sql")
	second := s.create("two", "General", "sql", "go")

	s.Equal(first.CategoryID, second.CategoryID)
	s.Equal([]string{"General"}, s.allCategoryNames())
	s.Equal([]string{"go", "sql"}, s.allTagNames())
	s.Equal([]string{"go", "sql"}, s.tagNames(first.ID))
}

func (s *TopicServiceSuite) TestCreateWithoutTagsAndEmptySlug() {
	topic := s.create("###", "General")
	s.Equal("", topic.Slug)
	s.Empty(s.tagNames(topic.ID))
}

func (s *TopicServiceSuite) TestCreateValidation() {
	cases := map[string]dto.TopicRequest{
		"blank title":    {Title: "  ", Category: "c"},
		"blank category": {Title: "t", Category: ""},
		"blank tag":      {Title: "t", Category: "c", Tags: []string{"ok", " "}},
	}
	for name, req := range cases {
		s.Run(name, func() {
			_, err := s.svc.Create(s.ctx, s.author.ID, req)
			s.ErrorIs(err, ErrValidation)
		})
	}
	s.Empty(s.allCategoryNames())
}

func (s *TopicServiceSuite) TestCreateRollsBackOnFailure() {
	s.Require().NoError(s.db.Migrator().DropTable(&models.TopicTag{}))

	_, err := s.svc.Create(s.ctx, s.author.ID, dto.TopicRequest{Title: "t", Category: "doomed", Tags: []string{"x"}})
	s.Require().Error(err)

	var serverErr *ServerError
	s.ErrorAs(err, &serverErr)
	s.Equal("create topic", serverErr.Op)

	var topics int64
	s.Require().NoError(s.db.Model(&models.Topic{}).Count(&topics).Error)
	s.Zero(topics)
	s.Empty(s.allCategoryNames())
	s.Empty(s.allTagNames())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.TopicOperations.WithLabelValues("create", "error")))
}

func (s *TopicServiceSuite) TestUpdateReplacesTagSet() {
	topic := s.create("t", "General", "a", "b")
	bID := s.tagID("b")

	err := s.svc.Update(s.ctx, topic.ID, dto.TopicRequest{Title: "t", Category: "General", Tags: []string{"b", "c"}})
	s.Require().NoError(err)

	s.Equal([]string{"b", "c"}, s.tagNames(topic.ID))
	s.Equal([]string{"b", "c"}, s.allTagNames())
	s.Equal(bID, s.tagID("b"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LabelsCollected.WithLabelValues("tag")))
}

func (s *TopicServiceSuite) TestUpdateKeepsTagUsedElsewhere() {
	topic := s.create("t", "General", "a")
	s.create("other", "General", "a")

	s.Require().NoError(s.svc.Update(s.ctx, topic.ID, dto.TopicRequest{Title: "t", Category: "General"}))

	s.Empty(s.tagNames(topic.ID))
	s.Equal([]string{"a"}, s.allTagNames())
}

func (s *TopicServiceSuite) TestUpdateCategoryOnly() {
	topic := s.create("Original Title", "Old", "x", "y")

	err := s.svc.Update(s.ctx, topic.ID, dto.TopicRequest{
		Title:       "Renamed Title",
		Description: "new",
		Category:    "New",
		Tags:        []string{"x", "y"},
	})
	s.Require().NoError(err)

	var got models.Topic
	s.Require().NoError(s.db.First(&got, topic.ID).Error)
	s.Equal("original-title", got.Slug)
	s.Equal("Renamed Title", got.Title)
	s.Equal("new", got.Description)
	s.Equal([]string{"x", "y"}, s.tagNames(topic.ID))
	s.Equal([]string{"New"}, s.allCategoryNames())
}

func (s *TopicServiceSuite) TestUpdateSameCategoryKeepsIt() {
	topic := s.create("t", "General")
	s.Require().NoError(s.svc.Update(s.ctx, topic.ID, dto.TopicRequest{Title: "t2", Category: "General"}))
	s.Equal([]string{"General"}, s.allCategoryNames())
}

func (s *TopicServiceSuite) TestUpdateMissingTopic() {
	err := s.svc.Update(s.ctx, 9999, dto.TopicRequest{Title: "t", Category: "c"})
	s.ErrorIs(err, ErrNotFound)
	s.Empty(s.allCategoryNames())

	err = s.svc.Update(s.ctx, 0, dto.TopicRequest{Title: "t", Category: "c"})
	s.ErrorIs(err, ErrValidation)
}

func (s *TopicServiceSuite) TestDeleteCollectsExclusiveLabels() {
	doomed := s.create("doomed", "Solo", "only-here", "shared")
	kept := s.create("kept", "General", "shared")

	s.Require().NoError(s.svc.Delete(s.ctx, doomed.ID))

	s.Equal([]string{"General"}, s.allCategoryNames())
	s.Equal([]string{"shared"}, s.allTagNames())
	s.Equal([]string{"shared"}, s.tagNames(kept.ID))

	var links int64
	s.Require().NoError(s.db.Model(&models.TopicTag{}).Where("topic_id = ?", doomed.ID).Count(&links).Error)
	s.Zero(links)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.LabelsCollected.WithLabelValues("category")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LabelsCollected.WithLabelValues("tag")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.TopicOperations.WithLabelValues("delete", "ok")))
}

func (s *TopicServiceSuite) TestDeleteKeepsSharedCategory() {
	doomed := s.create("doomed", "General")
	s.create("kept", "General")

	s.Require().NoError(s.svc.Delete(s.ctx, doomed.ID))
	s.Equal([]string{"General"}, s.allCategoryNames())
}

func (s *TopicServiceSuite) TestDeleteMissingTopic() {
	s.ErrorIs(s.svc.Delete(s.ctx, 42), ErrNotFound)
	s.ErrorIs(s.svc.Delete(s.ctx, -1), ErrValidation)
}

func (s *TopicServiceSuite) TestDeleteLeavesComments() {
	topic := s.create("t", "General")
	s.Require().NoError(s.db.Create(&models.Comment{TopicID: topic.ID, UserID: s.author.ID, Content: "c", IsAdminPost: true}).Error)

	s.Require().NoError(s.svc.Delete(s.ctx, topic.ID))

	var comments int64
	s.Require().NoError(s.db.Model(&models.Comment{}).Count(&comments).Error)
	s.EqualValues(1, comments)
}

func (s *TopicServiceSuite) TestListShapesTopics() {
	older := s.create("older", "General", "zeta", "alpha")
	time.Sleep(2 * time.Millisecond)
	newer := s.create("newer", "News")

	list, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	s.Equal(newer.ID, list[0].ID)
	s.NotNil(list[0].Tags)
	s.Empty(list[0].Tags)

	s.Equal(older.ID, list[1].ID)
	s.Equal([]string{"alpha", "zeta"}, list[1].Tags)
	s.Require().NotNil(list[1].AuthorUsername)
	s.Equal("author", *list[1].AuthorUsername)
	s.Require().NotNil(list[1].CategoryName)
	s.Equal("General", *list[1].CategoryName)
}

func (s *TopicServiceSuite) TestListLabelsSorted() {
	s.create("t1", "beta", "y", "x")
	s.create("t2", "alpha")

	cats, err := s.svc.ListCategories(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "beta"}, labelNames(cats))

	tags, err := s.svc.ListTags(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"x", "y"}, labelNames(tags))
}

func labelNames(list []dto.LabelResponse) []string {
	names := make([]string, len(list))
	for i, l := range list {
		names[i] = l.Name
	}
	return names
}

func TestTopicService_ConcurrentCreatesShareLabels(t *testing.T) {
	db := dbtest.OpenMigratedSQLite(t)
	author := dbtest.SeedUser(t, db, "author", models.RoleUser)
	svc := NewTopicService(db, nil, nil, discardLogger())
	ctx := context.Background()

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.Create(ctx, author.ID, dto.TopicRequest{Title: "t", Category: "General", Tags: []string{"go", "sql"}})
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}

	var tags []string
	require.NoError(t, db.Model(&models.Tag{}).Pluck("name", &tags).Error)
	sort.Strings(tags)
	assert.Equal(t, []string{"go", "sql"}, tags)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.EqualValues(t, 1, categories)
}

func TestTopicService_ListingCache(t *testing.T) {
	db := dbtest.OpenMigratedSQLite(t)
	author := dbtest.SeedUser(t, db, "author", models.RoleUser)
	redisServer := miniredis.RunT(t)
	listing, err := cache.NewListingCache(context.Background(), "redis://"+redisServer.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { listing.Close() })

	svc := NewTopicService(db, listing, nil, discardLogger())
	ctx := context.Background()

	_, err = svc.Create(ctx, author.ID, dto.TopicRequest{Title: "first", Category: "General"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, redisServer.Exists(cache.KeyTopics))

	// a row written behind the service's back stays invisible until invalidation
	require.NoError(t, db.Create(&models.Topic{Title: "hidden", CategoryID: list[0].CategoryID, CreatedBy: author.ID}).Error)
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListTags(ctx)
	require.NoError(t, err)
	assert.True(t, redisServer.Exists(cache.KeyTags))

	_, err = svc.Create(ctx, author.ID, dto.TopicRequest{Title: "second", Category: "General"})
	require.NoError(t, err)
	assert.False(t, redisServer.Exists(cache.KeyTopics))
	assert.False(t, redisServer.Exists(cache.KeyTags))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestTopicService_CacheOutageFallsBackToDatabase(t *testing.T) {
	db := dbtest.OpenMigratedSQLite(t)
	author := dbtest.SeedUser(t, db, "author", models.RoleUser)
	redisServer := miniredis.RunT(t)
	listing, err := cache.NewListingCache(context.Background(), "redis://"+redisServer.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { listing.Close() })

	svc := NewTopicService(db, listing, nil, discardLogger())
	ctx := context.Background()
	redisServer.Close()

	_, err = svc.Create(ctx, author.ID, dto.TopicRequest{Title: "t", Category: "General"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// writeBeforeFill runs onFill once, just before the first listing fill reaches Redis.
type writeBeforeFill struct {
	*cache.ListingCache
	onFill func()
}

func (w *writeBeforeFill) SetIfVersion(ctx context.Context, key string, version int64, value interface{}) (bool, error) {
	if w.onFill != nil {
		fn := w.onFill
		w.onFill = nil
		fn()
	}
	return w.ListingCache.SetIfVersion(ctx, key, version, value)
}

func TestTopicService_ListingFillRacingWriteIsDiscarded(t *testing.T) {
	db := dbtest.OpenMigratedSQLite(t)
	author := dbtest.SeedUser(t, db, "author", models.RoleUser)
	redisServer := miniredis.RunT(t)
	listing, err := cache.NewListingCache(context.Background(), "redis://"+redisServer.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { listing.Close() })

	racing := &writeBeforeFill{ListingCache: listing}
	svc := NewTopicService(db, racing, nil, discardLogger())
	ctx := context.Background()

	racing.onFill = func() {
		_, err := svc.Create(ctx, author.ID, dto.TopicRequest{Title: "late", Category: "General", Tags: []string{"go"}})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, redisServer.Exists(cache.KeyTopics))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "late", list[0].Title)
	assert.True(t, redisServer.Exists(cache.KeyTopics))

	// the same holds for the label listings
	racing.onFill = func() {
		_, err := svc.Create(ctx, author.ID, dto.TopicRequest{Title: "later", Category: "Science", Tags: []string{"rust"}})
		require.NoError(t, err)
	}
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	tags, err = svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}
