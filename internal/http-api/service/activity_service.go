package service

import (
	"context"
	"fmt"
	"sort"

	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/repository"
)

const (
	activityLimit     = 10
	favoriteTagsLimit = 5
)

type ActivityService interface {
	ForUser(ctx context.Context, userID string) (*dto.ActivityResponse, error)
}

type activityService struct {
	repo *repository.ActivityRepo
}

func NewActivityService(repo *repository.ActivityRepo) ActivityService {
	return &activityService{repo: repo}
}

// ForUser merges the caller's latest topics, comments and reactions into
// one feed, newest first, alongside totals and most used tags.
func (s *activityService) ForUser(ctx context.Context, userID string) (*dto.ActivityResponse, error) {
	topics, err := s.repo.RecentTopics(ctx, userID, activityLimit)
	if err != nil {
		return nil, wrap("user activity", err)
	}
	comments, err := s.repo.RecentComments(ctx, userID, activityLimit)
	if err != nil {
		return nil, wrap("user activity", err)
	}
	reactions, err := s.repo.RecentReactions(ctx, userID, activityLimit)
	if err != nil {
		return nil, wrap("user activity", err)
	}

	feed := make([]dto.ActivityItem, 0, len(topics)+len(comments)+len(reactions))
	for _, r := range topics {
		feed = append(feed, dto.ActivityItem{Type: "topic", Description: r.Description, Date: r.OccurredAt, RelatedTitle: r.RelatedTitle})
	}
	for _, r := range comments {
		feed = append(feed, dto.ActivityItem{Type: "comment", Description: r.Description, Date: r.OccurredAt, RelatedTitle: r.RelatedTitle})
	}
	for _, r := range reactions {
		feed = append(feed, dto.ActivityItem{
			Type:         "reaction",
			Description:  fmt.Sprintf("Reacted with %s to a comment", r.Description),
			Date:         r.OccurredAt,
			RelatedTitle: r.RelatedTitle,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	if len(feed) > activityLimit {
		feed = feed[:activityLimit]
	}

	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		return nil, wrap("user activity", err)
	}
	tags, err := s.repo.FavoriteTags(ctx, userID, favoriteTagsLimit)
	if err != nil {
		return nil, wrap("user activity", err)
	}

	favorites := make([]dto.TagUsage, len(tags))
	for i, t := range tags {
		favorites[i] = dto.TagUsage{Name: t.Name, Count: t.Uses}
	}

	return &dto.ActivityResponse{
		Activities: feed,
		Stats: dto.ActivityStats{
			TopicsCount:    counts.Topics,
			CommentsCount:  counts.Comments,
			ReactionsCount: counts.Reactions,
		},
		FavoriteTags: favorites,
	}, nil
}
