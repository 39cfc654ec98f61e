package dto

import "time"

// CreatePostRequest: top-level admin post
type CreatePostRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateReplyRequest: reply to a post; ReplyTo is a free-text mention shown in the UI
type CreateReplyRequest struct {
	Content string  `json:"content" binding:"required"`
	ReplyTo *string `json:"replyTo" binding:"omitempty,max=50"`
}

type ReactionRequest struct {
	Type string `json:"type" binding:"required,oneof=like dislike"`
}

type CreatePostResponse struct {
	Message   string `json:"message"`
	CommentID int64  `json:"commentId"`
}

type CreateReplyResponse struct {
	Message string        `json:"message"`
	Reply   ReplyResponse `json:"reply"`
}

// ReactionResponse reports the caller's reaction after a toggle ("" when removed).
type ReactionResponse struct {
	Message  string `json:"message"`
	Reaction string `json:"reaction"`
}

type ReplyResponse struct {
	ID              int64     `json:"id"`
	TopicID         int64     `json:"topic_id"`
	ParentCommentID int64     `json:"parent_comment_id"`
	UserID          string    `json:"user_id"`
	Content         string    `json:"content"`
	ReplyTo         *string   `json:"reply_to"`
	Author          string    `json:"author"`
	LikesCount      int64     `json:"likes_count"`
	DislikesCount   int64     `json:"dislikes_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// PostResponse is a top-level post with its replies, oldest reply first.
type PostResponse struct {
	ID            int64           `json:"id"`
	Content       string          `json:"content"`
	Author        string          `json:"author"`
	AuthorRole    string          `json:"author_role"`
	LikesCount    int64           `json:"likes_count"`
	DislikesCount int64           `json:"dislikes_count"`
	CreatedAt     time.Time       `json:"created_at"`
	Replies       []ReplyResponse `json:"replies"`
}
