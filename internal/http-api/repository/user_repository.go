package repository

import (
	"context"
	"errors"

	"quantumflux/database"
	"quantumflux/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRow is a user joined with its profile.
type ProfileRow struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Role           string
	AvatarURL      *string
	Bio            *string
	Location       *string
	Website        *string
	DiscordHandle  *string
	GithubUsername *string
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName      string
	LastName       string
	Bio            *string
	Location       *string
	Website        *string
	DiscordHandle  *string
	GithubUsername *string
}

// UserRepository defines the interface for user and profile data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetRole(ctx context.Context, id string) (string, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	UpdateRoleByEmail(ctx context.Context, email, role string) error
	GetProfile(ctx context.Context, id string) (*ProfileRow, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and its empty profile row together.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{UserID: user.ID}).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on miss so callers never mistake a zero-value user for a hit
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) GetRole(ctx context.Context, id string) (string, error) {
	var roles []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("role", &roles).Error; err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return roles[0], nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, "id = ?", id, "password_hash", passwordHash)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return r.updateColumn(ctx, "id = ?", id, "avatar_url", avatarURL)
}

func (r *userRepository) UpdateRoleByEmail(ctx context.Context, email, role string) error {
	return r.updateColumn(ctx, "email = ?", email, "role", role)
}

func (r *userRepository) updateColumn(ctx context.Context, where string, key interface{}, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where(where, key).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*ProfileRow, error) {
	var rows []ProfileRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select(`u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.avatar_url,
			p.bio, p.location, p.website, p.discord_handle, p.github_username`).
		Joins("LEFT JOIN user_profiles p ON p.user_id = u.id").
		Where("u.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// UpdateProfile writes the name fields on users and upserts the profile row.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	return database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
			"first_name": upd.FirstName,
			"last_name":  upd.LastName,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		profile := &models.UserProfile{
			UserID:         id,
			Bio:            upd.Bio,
			Location:       upd.Location,
			Website:        upd.Website,
			DiscordHandle:  upd.DiscordHandle,
			GithubUsername: upd.GithubUsername,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio", "location", "website", "discord_handle", "github_username"}),
		}).Create(profile).Error
	})
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

