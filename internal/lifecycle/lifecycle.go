// Package lifecycle owns the state machine over a post's status field.
//
// States: draft (initial default), scheduled, published. The only machine
// driven transition is scheduled → published, performed by the publisher;
// everything else is a direct user edit resolved here. No transition leaves
// published through this machine: updating a published post's scheduled_at
// never reverts it to scheduled, though an explicit status edit away from
// published is honored as a direct edit.
package lifecycle

import (
	"time"

	"inkwell/internal/models"
)

// StatusForCreate resolves the initial status of a new post. A scheduled_at
// strictly in the future forces the post into scheduled regardless of the
// requested status; otherwise the requested status wins, defaulting to draft.
func StatusForCreate(requested models.PostStatus, scheduledAt *time.Time, now time.Time) models.PostStatus {
	if requested == "" {
		requested = models.PostStatusDraft
	}
	if scheduledAt != nil && scheduledAt.After(now) {
		return models.PostStatusScheduled
	}
	return requested
}

// StatusForUpdate resolves the status of an existing post being edited.
// requested is nil when the caller did not name a status. The forcing rule
// is re-evaluated only when scheduled_at actually changed, and never pulls a
// published post back to scheduled.
func StatusForUpdate(current models.PostStatus, requested *models.PostStatus, scheduledAt *time.Time, scheduledChanged bool, now time.Time) models.PostStatus {
	status := current
	if requested != nil {
		status = *requested
	}
	if scheduledChanged && scheduledAt != nil && scheduledAt.After(now) && current != models.PostStatusPublished {
		return models.PostStatusScheduled
	}
	return status
}

// Due reports whether a scheduled post's publish time has passed.
func Due(post *models.Post, now time.Time) bool {
	return post.Status == models.PostStatusScheduled &&
		post.ScheduledAt != nil &&
		!post.ScheduledAt.After(now)
}
