package models

// SiteMetrics aggregates the counts shown on the admin dashboard.
type SiteMetrics struct {
	TotalUsers     int64 `json:"total_users"`
	TotalPosts     int64 `json:"total_posts"`
	DraftPosts     int64 `json:"draft_posts"`
	ScheduledPosts int64 `json:"scheduled_posts"`
	PublishedPosts int64 `json:"published_posts"`
	TotalComments  int64 `json:"total_comments"`
	TotalLikes     int64 `json:"total_likes"`
}
