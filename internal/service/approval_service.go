package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// ApprovalService owns the request approval lifecycle:
// PENDING -> APPROVED | REJECTED, both terminal.
type ApprovalService interface {
	// Decide approves or rejects a pending request. Approval synchronously
	// runs the matcher; a match failure becomes NO_MATCH_FOUND, never an
	// approval error. Exactly one of two concurrent calls succeeds, the loser
	// gets ErrInvalidTransition with no side effects.
	Decide(ctx context.Context, requestID, approverID uuid.UUID, approved bool, reason string) (*model.ReliefRequest, error)
}

type approvalService struct {
	requestRepo repository.RequestRepository
	matcher     MatcherService
	notifier    NotificationService
}

func NewApprovalService(
	requestRepo repository.RequestRepository,
	matcher MatcherService,
	notifier NotificationService,
) ApprovalService {
	return &approvalService{
		requestRepo: requestRepo,
		matcher:     matcher,
		notifier:    notifier,
	}
}

func (s *approvalService) Decide(ctx context.Context, requestID, approverID uuid.UUID, approved bool, reason string) (*model.ReliefRequest, error) {
	reason = strings.TrimSpace(reason)
	if !approved && reason == "" {
		return nil, errors.New("rejection requires a reason")
	}
	if approved {
		reason = ""
	}

	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	status := model.ApprovalRejected
	if approved {
		status = model.ApprovalApproved
	}

	// Compare-and-set: only the first decision on a pending request wins.
	now := time.Now()
	won, err := s.requestRepo.DecideIfPending(ctx, req.ID, status, approverID, now, reason)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("request %s is already decided: %w", req.ID, apperr.ErrInvalidTransition)
	}

	req.ApprovalStatus = status
	req.ApprovedBy = &approverID
	req.DecidedAt = &now
	req.RejectionReason = reason

	if approved {
		// Approval is irreversible: a failed matching run degrades to
		// NO_MATCH_FOUND so the request is never left UNMATCHED post-approval.
		if _, matchErr := s.matcher.Match(ctx, req); matchErr != nil {
			log.Printf("approval: matching request %s failed: %v", req.ID, matchErr)
			if req.MatchingStatus == model.MatchingUnmatched {
				if setErr := s.requestRepo.SetMatchResult(ctx, req.ID, model.MatchingNoMatchFound, nil, nil); setErr != nil {
					log.Printf("approval: recording match failure for request %s failed: %v", req.ID, setErr)
				} else {
					req.MatchingStatus = model.MatchingNoMatchFound
				}
			}
		}
	}

	if notifyErr := s.notifier.NotifyDecision(ctx, approverID, req, approved, reason); notifyErr != nil {
		// Best-effort: the decision stands even if the requester could not be
		// notified.
		log.Printf("approval: notifying requester of decision on %s failed: %v", req.ID, notifyErr)
	}

	full, err := s.requestRepo.FindByIDWithRelations(ctx, req.ID)
	if err != nil {
		return req, nil
	}
	return full, nil
}
