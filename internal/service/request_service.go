package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/geo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for request validation

type SubmitRequestDTO struct {
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	PeopleCount int     `json:"people_count" binding:"required,gt=0"`
	Urgency     string  `json:"urgency" binding:"required,oneof=low medium high"`
	Latitude    float64 `json:"latitude" binding:"required"`
	Longitude   float64 `json:"longitude" binding:"required"`
}

type RequestFilter struct {
	ApprovalStatus string // PENDING, APPROVED, REJECTED or empty for all
	Page           int
	Limit          int
}

// RequestService is the intake surface: submissions are scored, stored pending
// and fanned out to admins; matching can be re-run on decided requests.
type RequestService interface {
	Submit(ctx context.Context, requesterID uuid.UUID, dto SubmitRequestDTO) (*model.ReliefRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.ReliefRequest, int64, error)
	// RerunMatch re-applies the selection policy to an approved request,
	// overwriting the prior result. Idempotent from either terminal matching
	// state.
	RerunMatch(ctx context.Context, id uuid.UUID) (MatchResult, error)
	// RefreshPriorities rescores every undecided request and returns how many
	// were updated.
	RefreshPriorities(ctx context.Context) (int, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	txManager   repository.TransactionManager
	matcher     MatcherService
	notifier    NotificationService
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	txManager repository.TransactionManager,
	matcher MatcherService,
	notifier NotificationService,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		txManager:   txManager,
		matcher:     matcher,
		notifier:    notifier,
	}
}

func (s *requestService) Submit(ctx context.Context, requesterID uuid.UUID, dto SubmitRequestDTO) (*model.ReliefRequest, error) {
	location := geo.Point{Lat: dto.Latitude, Lng: dto.Longitude}
	if !location.Valid() {
		return nil, fmt.Errorf("coordinates (%v, %v) out of range: %w", dto.Latitude, dto.Longitude, apperr.ErrInvalidLocation)
	}

	now := time.Now()
	lat := decimal.NewFromFloat(dto.Latitude).Round(6)
	lng := decimal.NewFromFloat(dto.Longitude).Round(6)
	req := &model.ReliefRequest{
		RequesterID:    requesterID,
		Category:       dto.Category,
		Description:    dto.Description,
		PeopleCount:    dto.PeopleCount,
		Urgency:        dto.Urgency,
		Latitude:       &lat,
		Longitude:      &lng,
		PriorityScore:  PriorityScore(dto.Urgency, dto.PeopleCount, dto.Category, now, now),
		ApprovalStatus: model.ApprovalPending,
		MatchingStatus: model.MatchingUnmatched,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	if result, notifyErr := s.notifier.NotifyNewRequest(ctx, requesterID, req); notifyErr != nil {
		log.Printf("submit: admin fan-out for request %s failed: %v", req.ID, notifyErr)
	} else if result.FailedCount > 0 {
		log.Printf("submit: admin fan-out for request %s reached %d, failed %d", req.ID, result.SentCount, result.FailedCount)
	}

	full, err := s.requestRepo.FindByIDWithRelations(ctx, req.ID)
	if err != nil {
		return req, nil
	}
	return full, nil
}

func (s *requestService) Get(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error) {
	return s.requestRepo.FindByIDWithRelations(ctx, id)
}

func (s *requestService) List(ctx context.Context, filter RequestFilter) ([]model.ReliefRequest, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.requestRepo.List(ctx, filter.ApprovalStatus, filter.Page, filter.Limit)
}

func (s *requestService) RerunMatch(ctx context.Context, id uuid.UUID) (MatchResult, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return MatchResult{}, err
	}
	if req.ApprovalStatus != model.ApprovalApproved {
		return MatchResult{}, fmt.Errorf("request %s is not approved: %w", req.ID, apperr.ErrInvalidTransition)
	}
	return s.matcher.Match(ctx, req)
}

// RefreshPriorities rescores undecided requests in a single transaction so the
// priority queue never exposes a half-applied batch.
func (s *requestService) RefreshPriorities(ctx context.Context) (int, error) {
	requests, err := s.requestRepo.ListUndecided(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	updated := 0
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, req := range requests {
			score := PriorityScore(req.Urgency, req.PeopleCount, req.Category, req.CreatedAt, now)
			if score == req.PriorityScore {
				continue
			}
			if err := s.requestRepo.UpdatePriority(txCtx, req.ID, score); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
