package service

import (
	"context"
	"errors"
	"strings"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/repository"
	"quantumflux/internal/middleware/auth"

	"gorm.io/gorm"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdatePassword(ctx context.Context, userID string, req dto.PasswordRequest) error
}

type profileService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
}

func NewProfileService(users repository.UserRepository, hasher *auth.Hasher) ProfileService {
	return &profileService{users: users, hasher: hasher}
}

func (s *profileService) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	row, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, userError("get profile", err)
	}
	return toProfileResponse(row), nil
}

// Update writes the name fields and the profile row, then returns the fresh record.
func (s *profileService) Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	err := s.users.UpdateProfile(ctx, userID, repository.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		Location:       req.Location,
		Website:        req.Website,
		DiscordHandle:  req.DiscordHandle,
		GithubUsername: req.GithubUsername,
	})
	if err != nil {
		return nil, userError("update profile", err)
	}
	return s.Get(ctx, userID)
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	if strings.TrimSpace(avatarURL) == "" {
		return validationError("avatar_url is required")
	}
	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return userError("update avatar", err)
	}
	return nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *profileService) UpdatePassword(ctx context.Context, userID string, req dto.PasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return validationError("new password must be at least 6 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return userError("update password", err)
	}

	ok, err := s.hasher.Verify(user.Password, req.CurrentPassword)
	if err != nil {
		return wrap("update password", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return wrap("update password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return userError("update password", err)
	}
	return nil
}

func userError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("user")
	}
	return wrap(op, err)
}

func toProfileResponse(row *repository.ProfileRow) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:             row.ID,
		Username:       row.Username,
		Email:          row.Email,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Role:           row.Role,
		AvatarURL:      row.AvatarURL,
		Bio:            row.Bio,
		Location:       row.Location,
		Website:        row.Website,
		DiscordHandle:  row.DiscordHandle,
		GithubUsername: row.GithubUsername,
	}
}
