package dto

import "time"

// TopicRequest is the body of topic create and update.
type TopicRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required,max=100"`
	Tags        []string `json:"tags" binding:"omitempty,dive,max=50"`
}

type CreateTopicResponse struct {
	Message string `json:"message"`
	TopicID int64  `json:"topicId"`
	Slug    string `json:"slug"`
}

// TopicResponse is one entry of the topic listing.
type TopicResponse struct {
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
	Tags           []string  `json:"tags"`
}

type LabelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
