package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "github.com/verdanthq/verdant/internal/errors"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/metrics"
	"github.com/verdanthq/verdant/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service aggregates reports and enforces the auto-hide threshold
type Service struct {
	db        *gorm.DB
	threshold int
}

// NewService creates a moderation service. Threshold is the number of
// reports at which content is automatically hidden.
func NewService(db *gorm.DB, threshold int) *Service {
	return &Service{db: db, threshold: threshold}
}

// Threshold returns the configured auto-hide threshold
func (s *Service) Threshold() int {
	return s.threshold
}

// CreateReportInput is the reporter-supplied part of a report
type CreateReportInput struct {
	TargetType models.ReportTargetType `json:"target_type" binding:"required"`
	TargetID   string                  `json:"target_id" binding:"required"`
	Reason     models.ReportReason     `json:"reason" binding:"required"`
	Details    string                  `json:"details"`
}

// CreateReport files a report against a target. Self-reports and
// duplicate reports by the same reporter are rejected before anything
// is written. When the report count reaches the threshold and the
// target is not yet hidden, the hide, the bulk report status update,
// and the admin notification happen in a single transaction, so the
// admin team is notified exactly once per crossing.
func (s *Service) CreateReport(ctx context.Context, reporterID string, input CreateReportInput) (*models.Report, error) {
	if !input.TargetType.Valid() {
		return nil, apierrors.ValidationError("target_type", "unknown target type")
	}
	if !input.Reason.Valid() {
		return nil, apierrors.ValidationError("reason", "unknown report reason")
	}

	handler, ok := targetFor(input.TargetType)
	if !ok {
		return nil, apierrors.ValidationError("target_type", "unknown target type")
	}

	db := s.db.WithContext(ctx)

	ownerID, err := handler.Owner(db, input.TargetID)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return nil, apierrors.NotFound("report target")
		}
		return nil, fmt.Errorf("lookup report target: %w", err)
	}

	if ownerID == reporterID {
		return nil, apierrors.Forbidden("cannot report your own content")
	}

	// Application-level duplicate check; the partial unique index on
	// (reporter_id, target_type, target_id) backstops races
	var existing models.Report
	err = db.Where("reporter_id = ? AND target_type = ? AND target_id = ?",
		reporterID, input.TargetType, input.TargetID).
		First(&existing).Error
	if err == nil {
		return nil, apierrors.Conflict("you have already reported this")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check duplicate report: %w", err)
	}

	report := models.Report{
		ReporterID:   reporterID,
		TargetType:   input.TargetType,
		TargetID:     input.TargetID,
		TargetUserID: ownerID,
		Reason:       input.Reason,
		Details:      input.Details,
		Status:       models.ReportPending,
	}
	if err := db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.Get().ReportsCreatedTotal.
		WithLabelValues(string(input.TargetType), string(input.Reason)).Inc()

	if err := s.maybeAutoHide(ctx, handler, input.TargetType, input.TargetID); err != nil {
		// The report itself is filed; a failed auto-hide pass is
		// retried on the next report against the same target
		logger.ErrorWithFields("auto-hide pass failed", err)
	}

	return &report, nil
}

// maybeAutoHide hides the target once its report count reaches the
// threshold. The hidden flag's false-to-true transition guards against
// repeat notifications: a target already hidden (by this path or by an
// admin) is left alone no matter how high the count climbs.
func (s *Service) maybeAutoHide(ctx context.Context, handler target, targetType models.ReportTargetType, targetID string) error {
	db := s.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("count reports: %w", err)
	}

	if count < int64(s.threshold) {
		return nil
	}

	// Fast path only; the conditional update inside the transaction is
	// the authoritative guard
	hidden, err := handler.Hidden(db, targetID)
	if err != nil {
		return fmt.Errorf("check hidden flag: %w", err)
	}
	if hidden {
		return nil
	}

	now := time.Now().UTC()
	crossed := false
	err = db.Transaction(func(tx *gorm.DB) error {
		hiddenNow, err := handler.Hide(tx, targetID, now)
		if err != nil {
			return fmt.Errorf("hide target: %w", err)
		}
		if !hiddenNow {
			// A racing report or an admin made the transition first;
			// the bulk update and the notification belong to them
			return nil
		}
		crossed = true

		err = tx.Model(&models.Report{}).
			Where("target_type = ? AND target_id = ? AND status = ?",
				targetType, targetID, models.ReportPending).
			Updates(map[string]interface{}{
				"status":      models.ReportAutoHidden,
				"reviewed_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("mark reports auto-hidden: %w", err)
		}

		notification := models.AdminNotification{
			Kind:        "auto_hide",
			TargetType:  string(targetType),
			TargetID:    targetID,
			ReportCount: int(count),
			Message: fmt.Sprintf("%s %s hidden automatically after %d reports",
				targetType, targetID, count),
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("create admin notification: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}
	if !crossed {
		return nil
	}

	metrics.Get().AutoHidesTotal.WithLabelValues(string(targetType)).Inc()
	logger.InfoWithFields("content auto-hidden",
		zap.String("target_type", string(targetType)),
		zap.String("target_id", targetID),
		zap.Int64("report_count", count),
	)

	return nil
}

// UpdateReportStatusInput is the moderator's review decision
type UpdateReportStatusInput struct {
	Status     models.ReportStatus `json:"status" binding:"required"`
	Resolution string              `json:"resolution"`
}

// UpdateReportStatus moves a report through the review state machine.
// The status change and its audit trail commit together.
func (s *Service) UpdateReportStatus(ctx context.Context, adminID, reportID string, input UpdateReportStatusInput) (*models.Report, error) {
	db := s.db.WithContext(ctx)

	var report models.Report
	if err := db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("report")
		}
		return nil, fmt.Errorf("lookup report: %w", err)
	}

	if !input.Status.Valid() {
		return nil, apierrors.ValidationError("status", "unknown report status")
	}
	if !report.Status.CanTransitionTo(input.Status) {
		return nil, apierrors.Conflict(
			fmt.Sprintf("cannot move report from %s to %s", report.Status, input.Status))
	}

	now := time.Now().UTC()
	err := db.Transaction(func(tx *gorm.DB) error {
		previous := report.Status
		report.Status = input.Status
		report.ReviewedBy = &adminID
		report.ReviewedAt = &now
		if input.Resolution != "" {
			report.Resolution = input.Resolution
		}
		if err := tx.Save(&report).Error; err != nil {
			return fmt.Errorf("update report: %w", err)
		}

		audit := models.AuditLog{
			AdminID:    adminID,
			Action:     "report_status_change",
			TargetType: "report",
			TargetID:   report.ID,
			Detail:     fmt.Sprintf("%s -> %s", previous, input.Status),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Get().ReportReviewsTotal.WithLabelValues(string(input.Status)).Inc()

	return &report, nil
}

// DeleteReportedContent removes the target of the given report and
// purges every report against that target; the audit log entry is the
// surviving record of the removal. User targets are suspended instead
// of deleted.
func (s *Service) DeleteReportedContent(ctx context.Context, adminID, reportID string) error {
	db := s.db.WithContext(ctx)

	var report models.Report
	if err := db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NotFound("report")
		}
		return fmt.Errorf("lookup report: %w", err)
	}

	handler, ok := targetFor(report.TargetType)
	if !ok {
		return apierrors.ValidationError("target_type", "unknown target type")
	}

	now := time.Now().UTC()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := handler.Remove(tx, report.TargetID, now); err != nil {
			return fmt.Errorf("remove target: %w", err)
		}

		err := tx.Where("target_type = ? AND target_id = ?",
			report.TargetType, report.TargetID).
			Delete(&models.Report{}).Error
		if err != nil {
			return fmt.Errorf("purge reports: %w", err)
		}

		audit := models.AuditLog{
			AdminID:    adminID,
			Action:     "content_removed",
			TargetType: string(report.TargetType),
			TargetID:   report.TargetID,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}

		return nil
	})
}

// ListReportsQuery filters the admin report queue
type ListReportsQuery struct {
	Status     models.ReportStatus
	TargetType models.ReportTargetType
	Limit      int
	Offset     int
}

// ListReports returns reports for the admin queue, newest first
func (s *Service) ListReports(ctx context.Context, q ListReportsQuery) ([]models.Report, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Report{})

	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.TargetType != "" {
		db = db.Where("target_type = ?", q.TargetType)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	var reports []models.Report
	err := db.Preload("Reporter").
		Order("created_at DESC").
		Limit(limit).Offset(q.Offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	return reports, total, nil
}
