package visibility

import (
	"context"
	"fmt"
	"time"

	"github.com/verdanthq/verdant/internal/metrics"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/gorm"
)

// Flags selects which relationship edges contribute to an exclusion set
type Flags struct {
	Blocked   bool // users the viewer has blocked
	BlockedBy bool // users who have blocked the viewer
	Muted     bool // users the viewer has muted
}

// IsZero reports whether no edge source is selected
func (f Flags) IsZero() bool {
	return !f.Blocked && !f.BlockedBy && !f.Muted
}

func (f Flags) label() string {
	label := ""
	if f.Blocked {
		label += "b"
	}
	if f.BlockedBy {
		label += "B"
	}
	if f.Muted {
		label += "m"
	}
	return label
}

// Set is a resolved collection of user IDs whose content is excluded
// for a particular viewer
type Set map[string]struct{}

// Contains reports whether the given user is excluded
func (s Set) Contains(userID string) bool {
	_, ok := s[userID]
	return ok
}

// Add inserts a user into the set
func (s Set) Add(userID string) {
	s[userID] = struct{}{}
}

// IDs returns the set members as a slice, for use in SQL NOT IN clauses.
// Order is not defined.
func (s Set) IDs() []string {
	if len(s) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Resolve builds the exclusion set for a viewer. Block and mute edges
// are fetched concurrently. With zero flags no queries are issued and
// an empty set is returned, so feeds for fresh accounts stay cheap.
// The viewer is never a member of their own exclusion set.
func Resolve(ctx context.Context, db *gorm.DB, viewerID string, flags Flags) (Set, error) {
	set := make(Set)
	if flags.IsZero() || viewerID == "" {
		return set, nil
	}

	start := time.Now()

	type edgeResult struct {
		ids    []string
		source string
		err    error
	}

	queries := 0
	resultsChan := make(chan edgeResult, 2)

	if flags.Blocked || flags.BlockedBy {
		queries++
		go func() {
			ids, err := blockEdges(ctx, db, viewerID, flags)
			resultsChan <- edgeResult{ids: ids, source: "blocks", err: err}
		}()
	}

	if flags.Muted {
		queries++
		go func() {
			ids, err := muteEdges(ctx, db, viewerID)
			resultsChan <- edgeResult{ids: ids, source: "mutes", err: err}
		}()
	}

	for i := 0; i < queries; i++ {
		result := <-resultsChan
		if result.err != nil {
			return nil, fmt.Errorf("resolve %s: %w", result.source, result.err)
		}
		for _, id := range result.ids {
			set.Add(id)
		}
	}

	// A self-block or self-mute row should never hide a user's own
	// content from themselves
	delete(set, viewerID)

	m := metrics.Get()
	m.ExclusionResolveDuration.WithLabelValues(flags.label()).Observe(time.Since(start).Seconds())
	m.ExclusionSetSize.WithLabelValues(flags.label()).Observe(float64(len(set)))

	return set, nil
}

// blockEdges fetches block relationships touching the viewer. Both
// directions come back in a single query when both flags are set.
func blockEdges(ctx context.Context, db *gorm.DB, viewerID string, flags Flags) ([]string, error) {
	var blocks []models.UserBlock

	q := db.WithContext(ctx).Model(&models.UserBlock{})
	switch {
	case flags.Blocked && flags.BlockedBy:
		q = q.Where("blocker_id = ? OR blocked_id = ?", viewerID, viewerID)
	case flags.Blocked:
		q = q.Where("blocker_id = ?", viewerID)
	case flags.BlockedBy:
		q = q.Where("blocked_id = ?", viewerID)
	default:
		return nil, nil
	}

	if err := q.Find(&blocks).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		// Keep the side of the edge that is not the viewer
		if b.BlockerID == viewerID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

// muteEdges fetches the viewer's one-way mutes
func muteEdges(ctx context.Context, db *gorm.DB, viewerID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&models.MutedUser{}).
		Where("user_id = ?", viewerID).
		Pluck("muted_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FeedFlags is the default edge selection for feed and search surfaces:
// everything that can hide an author hides them.
var FeedFlags = Flags{Blocked: true, BlockedBy: true, Muted: true}

// ProfileFlags is the edge selection for direct profile views. Mutes
// do not apply when the viewer navigates to a profile on purpose.
var ProfileFlags = Flags{Blocked: true, BlockedBy: true}
