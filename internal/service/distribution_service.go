package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// allowedTransitions is the distribution state machine edge set. COMPLETED and
// CANCELLED are terminal.
var allowedTransitions = map[string][]string{
	model.DistPreparing:  {model.DistInTransit, model.DistCancelled},
	model.DistInTransit:  {model.DistDelivering, model.DistCancelled},
	model.DistDelivering: {model.DistCompleted, model.DistCancelled},
	model.DistCompleted:  {},
	model.DistCancelled:  {},
}

// CanTransition reports whether from -> to is an allowed distribution edge.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewTransactionCode mints an opaque unique code for distributions and ledger
// entries.
func NewTransactionCode() string {
	return "TX-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// --- DTOs ---

type CreateDistributionDTO struct {
	RequestID   string `json:"request_id" binding:"required"`
	DelivererID string `json:"deliverer_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type LedgerEntryResponse struct {
	ID              string               `json:"id"`
	Action          string               `json:"action"`
	TransactionCode string               `json:"transaction_code"`
	Snapshot        model.LedgerSnapshot `json:"snapshot"`
	CreatedAt       string               `json:"created_at"`
}

// DistributionService owns the distribution lifecycle and its append-only
// ledger. Every successful transition appends exactly one ledger entry; the
// entry and the state mutation commit together.
type DistributionService interface {
	Create(ctx context.Context, actorID uuid.UUID, dto CreateDistributionDTO) (*model.Distribution, error)
	Transition(ctx context.Context, id uuid.UUID, newStatus string) (*model.Distribution, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Distribution, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Distribution, int64, error)
	ListByDeliverer(ctx context.Context, delivererID uuid.UUID, page, limit int) ([]model.Distribution, int64, error)
	Ledger(ctx context.Context, id uuid.UUID) ([]LedgerEntryResponse, error)
	// Replay folds a distribution's ledger entries into the final recorded
	// snapshot. Replayed state must equal the stored distribution state.
	Replay(ctx context.Context, id uuid.UUID) (*model.LedgerSnapshot, error)
}

type distributionService struct {
	distRepo    repository.DistributionRepository
	requestRepo repository.RequestRepository
	notifier    NotificationService
}

func NewDistributionService(
	distRepo repository.DistributionRepository,
	requestRepo repository.RequestRepository,
	notifier NotificationService,
) DistributionService {
	return &distributionService{
		distRepo:    distRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
	}
}

// Create assigns a deliverer to a matched request. Stock is checked and
// decremented atomically inside the repository transaction; the matcher only
// ever proposed, commitment happens here.
func (s *distributionService) Create(ctx context.Context, actorID uuid.UUID, dto CreateDistributionDTO) (*model.Distribution, error) {
	requestID, err := uuid.Parse(dto.RequestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request_id: %w", err)
	}
	delivererID, err := uuid.Parse(dto.DelivererID)
	if err != nil {
		return nil, fmt.Errorf("invalid deliverer_id: %w", err)
	}

	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ApprovalStatus != model.ApprovalApproved || req.MatchingStatus != model.MatchingMatched || req.MatchedResourceID == nil {
		return nil, fmt.Errorf("request %s is not approved and matched: %w", req.ID, apperr.ErrInvalidTransition)
	}

	now := time.Now()
	dist := &model.Distribution{
		RequestID:       req.ID,
		ResourceID:      *req.MatchedResourceID,
		DelivererID:     delivererID,
		Quantity:        dto.Quantity,
		Status:          model.DistPreparing,
		TransactionCode: NewTransactionCode(),
		DispatchedAt:    now,
	}

	entry, err := newLedgerEntry(dist, model.LedgerActionCreated, now)
	if err != nil {
		return nil, err
	}

	if err := s.distRepo.CreateWithStockDecrement(ctx, dist, entry); err != nil {
		return nil, err
	}

	full, err := s.distRepo.FindByIDWithRelations(ctx, dist.ID)
	if err != nil {
		return dist, nil
	}

	if notifyErr := s.notifier.NotifyDistributionAssigned(ctx, actorID, full); notifyErr != nil {
		log.Printf("distribution %s: notifying deliverer failed: %v", full.ID, notifyErr)
	}
	return full, nil
}

// Transition moves a distribution along the allowed edge set and appends the
// matching ledger entry. Completion stamps the delivery time.
func (s *distributionService) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*model.Distribution, error) {
	dist, err := s.distRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(dist.Status, newStatus) {
		return nil, fmt.Errorf("distribution %s cannot move %s -> %s: %w",
			dist.ID, dist.Status, newStatus, apperr.ErrInvalidTransition)
	}

	now := time.Now()
	dist.Status = newStatus
	if newStatus == model.DistCompleted {
		dist.DeliveredAt = &now
	}

	entry, err := newLedgerEntry(dist, model.LedgerActionTransition, now)
	if err != nil {
		return nil, err
	}

	if err := s.distRepo.SaveWithLedger(ctx, dist, entry); err != nil {
		return nil, err
	}
	return dist, nil
}

func (s *distributionService) Get(ctx context.Context, id uuid.UUID) (*model.Distribution, error) {
	return s.distRepo.FindByIDWithRelations(ctx, id)
}

func (s *distributionService) List(ctx context.Context, status string, page, limit int) ([]model.Distribution, int64, error) {
	return s.distRepo.List(ctx, status, page, limit)
}

func (s *distributionService) ListByDeliverer(ctx context.Context, delivererID uuid.UUID, page, limit int) ([]model.Distribution, int64, error) {
	return s.distRepo.ListByDeliverer(ctx, delivererID, page, limit)
}

func (s *distributionService) Ledger(ctx context.Context, id uuid.UUID) ([]LedgerEntryResponse, error) {
	entries, err := s.distRepo.ListLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	res := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		var snapshot model.LedgerSnapshot
		if err := json.Unmarshal([]byte(e.Snapshot), &snapshot); err != nil {
			return nil, fmt.Errorf("ledger entry %s has a corrupt snapshot: %w", e.ID, err)
		}
		res = append(res, LedgerEntryResponse{
			ID:              e.ID.String(),
			Action:          e.Action,
			TransactionCode: e.TransactionCode,
			Snapshot:        snapshot,
			CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, nil
}

func (s *distributionService) Replay(ctx context.Context, id uuid.UUID) (*model.LedgerSnapshot, error) {
	entries, err := s.distRepo.ListLedger(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("distribution %s has no ledger entries: %w", id, apperr.ErrNotFound)
	}

	var final model.LedgerSnapshot
	for _, e := range entries {
		var snapshot model.LedgerSnapshot
		if err := json.Unmarshal([]byte(e.Snapshot), &snapshot); err != nil {
			return nil, fmt.Errorf("ledger entry %s has a corrupt snapshot: %w", e.ID, err)
		}
		final = snapshot
	}
	return &final, nil
}

// newLedgerEntry builds an immutable ledger record with a fresh transaction
// code, distinct from the distribution's own code.
func newLedgerEntry(dist *model.Distribution, action string, at time.Time) (*model.LedgerEntry, error) {
	snapshot := model.LedgerSnapshot{
		Version:     model.SnapshotVersion,
		RequestID:   dist.RequestID,
		ResourceID:  dist.ResourceID,
		DelivererID: dist.DelivererID,
		Status:      dist.Status,
		RecordedAt:  at,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger snapshot: %w", err)
	}
	return &model.LedgerEntry{
		DistributionID:  dist.ID,
		Action:          action,
		TransactionCode: NewTransactionCode(),
		Snapshot:        string(payload),
		CreatedAt:       at,
	}, nil
}
