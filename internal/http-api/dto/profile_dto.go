package dto

// UpdateProfileRequest mirrors the profile form; nil fields are stored as NULL.
type UpdateProfileRequest struct {
	FirstName      string  `json:"firstName" binding:"max=100"`
	LastName       string  `json:"lastName" binding:"max=100"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location" binding:"omitempty,max=100"`
	Website        *string `json:"website" binding:"omitempty,max=255"`
	DiscordHandle  *string `json:"discord_handle" binding:"omitempty,max=100"`
	GithubUsername *string `json:"github_username" binding:"omitempty,max=100"`
}

type AvatarRequest struct {
	AvatarURL string `json:"avatar_url" binding:"required,url"`
}

type AvatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatar_url"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ProfileResponse is the user row joined with its profile.
type ProfileResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	AvatarURL      *string `json:"avatar_url"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
	DiscordHandle  *string `json:"discord_handle"`
	GithubUsername *string `json:"github_username"`
}

type UpdateProfileResponse struct {
	Message string          `json:"message"`
	User    ProfileResponse `json:"user"`
}
