package handler

import (
	"context"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (string, *models.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (string, *models.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)
	return claims, args.Error(1)
}

type MockTopicService struct {
	mock.Mock
}

func (m *MockTopicService) Create(ctx context.Context, creatorID string, req dto.TopicRequest) (*models.Topic, error) {
	args := m.Called(ctx, creatorID, req)
	topic, _ := args.Get(0).(*models.Topic)
	return topic, args.Error(1)
}

func (m *MockTopicService) Update(ctx context.Context, topicID int64, req dto.TopicRequest) error {
	return m.Called(ctx, topicID, req).Error(0)
}

func (m *MockTopicService) Delete(ctx context.Context, topicID int64) error {
	return m.Called(ctx, topicID).Error(0)
}

func (m *MockTopicService) List(ctx context.Context) ([]dto.TopicResponse, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]dto.TopicResponse)
	return list, args.Error(1)
}

func (m *MockTopicService) ListCategories(ctx context.Context) ([]dto.LabelResponse, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]dto.LabelResponse)
	return list, args.Error(1)
}

func (m *MockTopicService) ListTags(ctx context.Context) ([]dto.LabelResponse, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]dto.LabelResponse)
	return list, args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) ListForTopic(ctx context.Context, topicID int64) ([]dto.PostResponse, error) {
	args := m.Called(ctx, topicID)
	posts, _ := args.Get(0).([]dto.PostResponse)
	return posts, args.Error(1)
}

func (m *MockCommentService) AddPost(ctx context.Context, userID string, topicID int64, content string) (int64, error) {
	args := m.Called(ctx, userID, topicID, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) AddReply(ctx context.Context, userID string, commentID int64, req dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	args := m.Called(ctx, userID, commentID, req)
	reply, _ := args.Get(0).(*dto.ReplyResponse)
	return reply, args.Error(1)
}

func (m *MockCommentService) React(ctx context.Context, userID string, commentID int64, kind string) (string, error) {
	args := m.Called(ctx, userID, commentID, kind)
	return args.String(0), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, userID string, commentID int64) error {
	return m.Called(ctx, userID, commentID).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*dto.ProfileResponse)
	return profile, args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	profile, _ := args.Get(0).(*dto.ProfileResponse)
	return profile, args.Error(1)
}

func (m *MockProfileService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return m.Called(ctx, userID, avatarURL).Error(0)
}

func (m *MockProfileService) UpdatePassword(ctx context.Context, userID string, req dto.PasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) ForUser(ctx context.Context, userID string) (*dto.ActivityResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.ActivityResponse)
	return resp, args.Error(1)
}

// setupRouter builds /api with a public group and a protected group that
// authenticates every request as userID, or rejects it when userID is empty.
func setupRouter(userID string, register func(public, protected *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	register(api, protected)
	return router
}
