package dto

import "time"

type ActivityItem struct {
	Type         string    `json:"type"` // topic | comment | reaction
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	RelatedTitle *string   `json:"related_title"`
}

type ActivityStats struct {
	TopicsCount    int64 `json:"topics_count"`
	CommentsCount  int64 `json:"comments_count"`
	ReactionsCount int64 `json:"reactions_count"`
}

type TagUsage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ActivityResponse struct {
	Activities   []ActivityItem `json:"activities"`
	Stats        ActivityStats  `json:"stats"`
	FavoriteTags []TagUsage     `json:"favorite_tags"`
}
