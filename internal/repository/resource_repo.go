package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceRepository defines data access for resource stocks and centers.
type ResourceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ResourceStock, error)
	// ListReadyByCategories returns READY stocks with quantity > 0 in any of
	// the given categories, centers preloaded, ordered by id so the matcher's
	// tie-break is stable.
	ListReadyByCategories(ctx context.Context, categories []string) ([]model.ResourceStock, error)
	List(ctx context.Context, page, limit int) ([]model.ResourceStock, int64, error)
	Save(ctx context.Context, res *model.ResourceStock) error
	ListCenters(ctx context.Context, page, limit int) ([]model.ReliefCenter, int64, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ResourceStock, error) {
	var res model.ResourceStock
	if err := GetDB(ctx, r.db).Preload("Center").First(&res, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find resource", err)
	}
	return &res, nil
}

func (r *resourceRepository) ListReadyByCategories(ctx context.Context, categories []string) ([]model.ResourceStock, error) {
	var stocks []model.ResourceStock
	if err := GetDB(ctx, r.db).
		Preload("Center").
		Where("status = ? AND quantity > 0 AND category IN ?", model.ResourceReady, categories).
		Order("id ASC").
		Find(&stocks).Error; err != nil {
		return nil, wrapErr("list ready resources", err)
	}
	return stocks, nil
}

func (r *resourceRepository) List(ctx context.Context, page, limit int) ([]model.ResourceStock, int64, error) {
	var stocks []model.ResourceStock
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ResourceStock{}).Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count resources", err)
	}

	offset := (page - 1) * limit
	if err := db.Preload("Center").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&stocks).Error; err != nil {
		return nil, 0, wrapErr("list resources", err)
	}

	return stocks, total, nil
}

func (r *resourceRepository) Save(ctx context.Context, res *model.ResourceStock) error {
	return wrapErr("save resource", GetDB(ctx, r.db).Save(res).Error)
}

func (r *resourceRepository) ListCenters(ctx context.Context, page, limit int) ([]model.ReliefCenter, int64, error) {
	var centers []model.ReliefCenter
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ReliefCenter{}).Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count centers", err)
	}

	offset := (page - 1) * limit
	if err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&centers).Error; err != nil {
		return nil, 0, wrapErr("list centers", err)
	}

	return centers, total, nil
}
