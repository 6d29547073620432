package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestRepository defines data access for relief requests.
type RequestRepository interface {
	Create(ctx context.Context, req *model.ReliefRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error)
	List(ctx context.Context, approvalStatus string, page, limit int) ([]model.ReliefRequest, int64, error)
	ListUndecided(ctx context.Context) ([]model.ReliefRequest, error)
	// DecideIfPending performs a compare-and-set: the decision fields are
	// written only if approval_status is still PENDING. Returns false when the
	// guard lost the race.
	DecideIfPending(ctx context.Context, id uuid.UUID, status string, approverID uuid.UUID, decidedAt time.Time, reason string) (bool, error)
	SetMatchResult(ctx context.Context, id uuid.UUID, status string, resourceID *uuid.UUID, distanceKm *decimal.Decimal) error
	UpdatePriority(ctx context.Context, id uuid.UUID, score int) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ReliefRequest) error {
	return wrapErr("create request", GetDB(ctx, r.db).Create(req).Error)
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error) {
	var req model.ReliefRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find request", err)
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error) {
	var req model.ReliefRequest
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approver").
		Preload("MatchedResource").
		Preload("MatchedResource.Center").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find request", err)
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, approvalStatus string, page, limit int) ([]model.ReliefRequest, int64, error) {
	var requests []model.ReliefRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ReliefRequest{})
	if approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count requests", err)
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Requester").Preload("MatchedResource")
	if approvalStatus != "" {
		fetchQuery = fetchQuery.Where("approval_status = ?", approvalStatus)
	}
	if err := fetchQuery.
		Order("priority_score DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, wrapErr("list requests", err)
	}

	return requests, total, nil
}

func (r *requestRepository) ListUndecided(ctx context.Context) ([]model.ReliefRequest, error) {
	var requests []model.ReliefRequest
	if err := GetDB(ctx, r.db).
		Where("approval_status = ?", model.ApprovalPending).
		Find(&requests).Error; err != nil {
		return nil, wrapErr("list undecided requests", err)
	}
	return requests, nil
}

func (r *requestRepository) DecideIfPending(ctx context.Context, id uuid.UUID, status string, approverID uuid.UUID, decidedAt time.Time, reason string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.ReliefRequest{}).
		Where("id = ? AND approval_status = ?", id, model.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status":  status,
			"approved_by":      approverID,
			"decided_at":       decidedAt,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return false, wrapErr("decide request", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) SetMatchResult(ctx context.Context, id uuid.UUID, status string, resourceID *uuid.UUID, distanceKm *decimal.Decimal) error {
	err := GetDB(ctx, r.db).Model(&model.ReliefRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"matching_status":     status,
			"matched_resource_id": resourceID,
			"matched_distance_km": distanceKm,
		}).Error
	return wrapErr("set match result", err)
}

func (r *requestRepository) UpdatePriority(ctx context.Context, id uuid.UUID, score int) error {
	err := GetDB(ctx, r.db).Model(&model.ReliefRequest{}).
		Where("id = ?", id).
		Update("priority_score", score).Error
	return wrapErr("update priority", err)
}
