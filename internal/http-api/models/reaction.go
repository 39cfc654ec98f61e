package models

import "time"

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Reaction is one user's vote on one comment. Uniqueness per (user, comment)
// is kept by the toggle logic in the comment repository.
type Reaction struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"user_id" gorm:"type:uuid;not null;index:idx_reactions_user_comment"`
	CommentID    int64     `json:"comment_id" gorm:"not null;index:idx_reactions_user_comment;index"`
	ReactionType string    `json:"reaction_type" gorm:"column:reaction_type;size:10;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Reaction) TableName() string {
	return "reactions"
}

// ValidReaction reports whether kind is a supported reaction type
func ValidReaction(kind string) bool {
	return kind == ReactionLike || kind == ReactionDislike
}
