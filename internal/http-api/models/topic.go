package models

import "time"

type Topic struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  int64     `json:"category_id" gorm:"not null;index"`
	CreatedBy   string    `json:"created_by" gorm:"type:uuid;not null;index"`
	Slug        string    `json:"slug" gorm:"size:255;index"` // not unique, see DESIGN.md
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	// a category still referenced by a topic cannot be deleted
	Category Category `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Topic) TableName() string {
	return "topics"
}

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Tag struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (Tag) TableName() string {
	return "tags"
}

// TopicTag is the topic <-> tag join row; the pair is its identity.
type TopicTag struct {
	TopicID int64 `json:"topic_id" gorm:"primaryKey;autoIncrement:false"`
	TagID   int64 `json:"tag_id" gorm:"primaryKey;autoIncrement:false;index"`

	Topic Topic `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag   Tag   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (TopicTag) TableName() string {
	return "topic_tags"
}
