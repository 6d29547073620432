package repository

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DistributionRepository defines data access for distributions and their
// append-only ledger.
type DistributionRepository interface {
	// CreateWithStockDecrement atomically checks and decrements the matched
	// stock, creates the distribution and appends its first ledger entry.
	// A concurrent distribution that drained the stock first surfaces as
	// ErrInvalidTransition so the caller can re-match.
	CreateWithStockDecrement(ctx context.Context, dist *model.Distribution, entry *model.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Distribution, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Distribution, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Distribution, int64, error)
	ListByDeliverer(ctx context.Context, delivererID uuid.UUID, page, limit int) ([]model.Distribution, int64, error)
	// SaveWithLedger persists a transitioned distribution and its ledger entry
	// in one transaction; either both commit or neither does.
	SaveWithLedger(ctx context.Context, dist *model.Distribution, entry *model.LedgerEntry) error
	ListLedger(ctx context.Context, distributionID uuid.UUID) ([]model.LedgerEntry, error)
}

type distributionRepository struct {
	db *gorm.DB
}

func NewDistributionRepository(db *gorm.DB) DistributionRepository {
	return &distributionRepository{db: db}
}

func (r *distributionRepository) CreateWithStockDecrement(ctx context.Context, dist *model.Distribution, entry *model.LedgerEntry) error {
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var stock model.ResourceStock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&stock, "id = ?", dist.ResourceID).Error; err != nil {
			return err
		}

		if stock.Status != model.ResourceReady || stock.Quantity < dist.Quantity {
			return fmt.Errorf("stock %s has %d of %d requested: %w",
				stock.ID, stock.Quantity, dist.Quantity, apperr.ErrInvalidTransition)
		}

		remaining := stock.Quantity - dist.Quantity
		updates := map[string]interface{}{"quantity": remaining}
		if remaining == 0 {
			updates["status"] = model.ResourceOutOfStock
		}
		if err := tx.Model(&stock).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Create(dist).Error; err != nil {
			return err
		}

		entry.DistributionID = dist.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		// Keep the oversell guard distinguishable from store failures.
		if errors.Is(err, apperr.ErrInvalidTransition) {
			return err
		}
		return wrapErr("create distribution", err)
	}
	return nil
}

func (r *distributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Distribution, error) {
	var dist model.Distribution
	if err := GetDB(ctx, r.db).First(&dist, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find distribution", err)
	}
	return &dist, nil
}

func (r *distributionRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Distribution, error) {
	var dist model.Distribution
	if err := GetDB(ctx, r.db).
		Preload("Request").
		Preload("Request.Requester").
		Preload("Resource").
		Preload("Resource.Center").
		Preload("Deliverer").
		First(&dist, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find distribution", err)
	}
	return &dist, nil
}

func (r *distributionRepository) List(ctx context.Context, status string, page, limit int) ([]model.Distribution, int64, error) {
	return r.list(ctx, "", uuid.Nil, status, page, limit)
}

func (r *distributionRepository) ListByDeliverer(ctx context.Context, delivererID uuid.UUID, page, limit int) ([]model.Distribution, int64, error) {
	return r.list(ctx, "deliverer_id = ?", delivererID, "", page, limit)
}

func (r *distributionRepository) list(ctx context.Context, cond string, condArg uuid.UUID, status string, page, limit int) ([]model.Distribution, int64, error) {
	var dists []model.Distribution
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Distribution{})
	if cond != "" {
		query = query.Where(cond, condArg)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count distributions", err)
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Resource").Preload("Resource.Center").Preload("Deliverer")
	if cond != "" {
		fetchQuery = fetchQuery.Where(cond, condArg)
	}
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&dists).Error; err != nil {
		return nil, 0, wrapErr("list distributions", err)
	}

	return dists, total, nil
}

func (r *distributionRepository) SaveWithLedger(ctx context.Context, dist *model.Distribution, entry *model.LedgerEntry) error {
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(dist).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	return wrapErr("save distribution", err)
}

func (r *distributionRepository) ListLedger(ctx context.Context, distributionID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := GetDB(ctx, r.db).
		Where("distribution_id = ?", distributionID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, wrapErr("list ledger entries", err)
	}
	return entries, nil
}
