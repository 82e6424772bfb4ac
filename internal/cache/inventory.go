package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
	MetricsKey    = "admin:metrics"
)

const (
	UserTTL = 5 * time.Minute
	// PostTTL is short relative to the publish sweep so a cached anonymous
	// read never hides a promotion for long. Only published posts are cached.
	PostTTL    = 2 * time.Minute
	MetricsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateMetrics(ctx context.Context) {
	Invalidate(ctx, MetricsKey)
}
