package models

// UserProfile holds the optional, free-form part of a user's profile.
// Exactly one row per user, created at registration.
type UserProfile struct {
	ID             int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         string  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Bio            *string `json:"bio" gorm:"type:text"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
	DiscordHandle  *string `json:"discord_handle"`
	GithubUsername *string `json:"github_username"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
