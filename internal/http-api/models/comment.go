package models

import "time"

type Comment struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TopicID         int64     `json:"topic_id" gorm:"not null;index"`
	ParentCommentID *int64    `json:"parent_comment_id" gorm:"index"` // nil for top-level admin posts
	UserID          string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Content         string    `json:"content" gorm:"not null;type:text"`
	IsAdminPost     bool      `json:"is_admin_post" gorm:"not null;default:false"`
	ReplyTo         *string   `json:"reply_to"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel reports whether the comment is a post rather than a reply
func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}
