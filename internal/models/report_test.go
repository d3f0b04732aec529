package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportTargetTypeValid(t *testing.T) {
	valid := []ReportTargetType{
		ReportTargetPost, ReportTargetComment, ReportTargetUser,
		ReportTargetEvent, ReportTargetShop, ReportTargetReview,
	}
	for _, tt := range valid {
		assert.True(t, tt.Valid(), "%s should be valid", tt)
	}

	assert.False(t, ReportTargetType("").Valid())
	assert.False(t, ReportTargetType("story").Valid())
	assert.False(t, ReportTargetType("POST").Valid())
}

func TestReportReasonValid(t *testing.T) {
	valid := []ReportReason{
		ReasonSpam, ReasonHarassment, ReasonInappropriate,
		ReasonCopyright, ReasonOther,
	}
	for _, r := range valid {
		assert.True(t, r.Valid(), "%s should be valid", r)
	}

	assert.False(t, ReportReason("").Valid())
	assert.False(t, ReportReason("because").Valid())
}

func TestReportStatusTerminal(t *testing.T) {
	assert.True(t, ReportResolved.Terminal())
	assert.True(t, ReportDismissed.Terminal())
	assert.True(t, ReportAutoHidden.Terminal())
	assert.False(t, ReportPending.Terminal())
	assert.False(t, ReportReviewed.Terminal())
}

func TestReportStatusTransitions(t *testing.T) {
	// Pending can move to any review outcome
	for _, next := range []ReportStatus{ReportReviewed, ReportResolved, ReportDismissed, ReportAutoHidden} {
		assert.True(t, ReportPending.CanTransitionTo(next), "pending -> %s", next)
	}
	assert.False(t, ReportPending.CanTransitionTo(ReportPending))

	// Reviewed can only be closed out
	assert.True(t, ReportReviewed.CanTransitionTo(ReportResolved))
	assert.True(t, ReportReviewed.CanTransitionTo(ReportDismissed))
	assert.False(t, ReportReviewed.CanTransitionTo(ReportPending))
	assert.False(t, ReportReviewed.CanTransitionTo(ReportAutoHidden))

	// Terminal states accept nothing
	for _, from := range []ReportStatus{ReportResolved, ReportDismissed, ReportAutoHidden} {
		for _, next := range []ReportStatus{ReportPending, ReportReviewed, ReportResolved, ReportDismissed, ReportAutoHidden} {
			assert.False(t, from.CanTransitionTo(next), "%s -> %s should be rejected", from, next)
		}
	}
}
