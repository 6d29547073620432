package service

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// SummaryReport is the admin dashboard breakdown across the three lifecycles.
type SummaryReport struct {
	RequestsByApproval    map[string]int64 `json:"requests_by_approval"`
	RequestsByMatching    map[string]int64 `json:"requests_by_matching"`
	DistributionsByStatus map[string]int64 `json:"distributions_by_status"`
	ResourcesByStatus     map[string]int64 `json:"resources_by_status"`
	NotificationsTotal    int64            `json:"notifications_total"`
	NotificationsUnread   int64            `json:"notifications_unread"`
}

type ReportService interface {
	Summary(ctx context.Context) (*SummaryReport, error)
}

type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportService instance
func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

func (s *reportService) Summary(ctx context.Context) (*SummaryReport, error) {
	report := &SummaryReport{}

	var err error
	if report.RequestsByApproval, err = s.countBy(ctx, &model.ReliefRequest{}, "approval_status"); err != nil {
		return nil, err
	}
	if report.RequestsByMatching, err = s.countBy(ctx, &model.ReliefRequest{}, "matching_status"); err != nil {
		return nil, err
	}
	if report.DistributionsByStatus, err = s.countBy(ctx, &model.Distribution{}, "status"); err != nil {
		return nil, err
	}
	if report.ResourcesByStatus, err = s.countBy(ctx, &model.ResourceStock{}, "status"); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Notification{}).Count(&report.NotificationsTotal).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Notification{}).Where("read = false").Count(&report.NotificationsUnread).Error; err != nil {
		return nil, err
	}

	return report, nil
}

func (s *reportService) countBy(ctx context.Context, modelPtr interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	if err := s.db.WithContext(ctx).Model(modelPtr).
		Select(column + " as key, COUNT(*) as count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result, nil
}
