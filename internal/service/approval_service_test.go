package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
)

func newApprovalFixture(stocks ...model.ResourceStock) (*fakeRequestRepo, ApprovalService, *stubNotifier) {
	requestRepo := newFakeRequestRepo()
	resourceRepo := &fakeResourceRepo{stocks: stocks}
	notifier := &stubNotifier{}
	matcher := NewMatcherService(requestRepo, resourceRepo)
	return requestRepo, NewApprovalService(requestRepo, matcher, notifier), notifier
}

func newPendingRequest(repo *fakeRequestRepo) *model.ReliefRequest {
	req := &model.ReliefRequest{
		ID:             uuid.New(),
		RequesterID:    uuid.New(),
		Category:       "water",
		PeopleCount:    30,
		Urgency:        model.UrgencyHigh,
		Latitude:       decimalPtr(21.028511),
		Longitude:      decimalPtr(105.804817),
		ApprovalStatus: model.ApprovalPending,
		MatchingStatus: model.MatchingUnmatched,
	}
	_ = repo.Create(context.Background(), req)
	return req
}

func TestDecideApproveRunsMatching(t *testing.T) {
	stock := newStock(CategoryWater, 40, 21.03, 105.81)
	requestRepo, svc, notifier := newApprovalFixture(stock)
	req := newPendingRequest(requestRepo)
	approver := uuid.New()

	decided, err := svc.Decide(context.Background(), req.ID, approver, true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decided.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("approval status = %s, want APPROVED", decided.ApprovalStatus)
	}
	if decided.ApprovedBy == nil || *decided.ApprovedBy != approver {
		t.Errorf("approved_by = %v, want %s", decided.ApprovedBy, approver)
	}
	if decided.DecidedAt == nil {
		t.Error("decided_at should be stamped")
	}
	if decided.MatchingStatus != model.MatchingMatched {
		t.Errorf("matching status = %s, want MATCHED", decided.MatchingStatus)
	}
	if decided.MatchedResourceID == nil || *decided.MatchedResourceID != stock.ID {
		t.Errorf("matched resource = %v, want %s", decided.MatchedResourceID, stock.ID)
	}
	if len(notifier.decisions) != 1 || !notifier.decisions[0] {
		t.Errorf("requester should be notified once of approval, got %v", notifier.decisions)
	}
}

func TestDecideRejectRequiresReason(t *testing.T) {
	requestRepo, svc, _ := newApprovalFixture()
	req := newPendingRequest(requestRepo)

	if _, err := svc.Decide(context.Background(), req.ID, uuid.New(), false, "   "); err == nil {
		t.Fatal("rejection without a reason should fail")
	}

	stored, _ := requestRepo.FindByID(context.Background(), req.ID)
	if stored.ApprovalStatus != model.ApprovalPending {
		t.Errorf("request should stay pending after invalid rejection, got %s", stored.ApprovalStatus)
	}
}

func TestDecideRejectStoresReason(t *testing.T) {
	requestRepo, svc, notifier := newApprovalFixture()
	req := newPendingRequest(requestRepo)

	decided, err := svc.Decide(context.Background(), req.ID, uuid.New(), false, "duplicate of an earlier request")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.ApprovalStatus != model.ApprovalRejected {
		t.Errorf("approval status = %s, want REJECTED", decided.ApprovalStatus)
	}
	if decided.RejectionReason != "duplicate of an earlier request" {
		t.Errorf("rejection reason = %q", decided.RejectionReason)
	}
	if decided.MatchingStatus != model.MatchingUnmatched {
		t.Errorf("rejected request should never be matched, got %s", decided.MatchingStatus)
	}
	if len(notifier.decisions) != 1 || notifier.decisions[0] {
		t.Errorf("requester should be notified once of rejection, got %v", notifier.decisions)
	}
}

func TestDecideIsDecidedOnce(t *testing.T) {
	requestRepo, svc, _ := newApprovalFixture()
	req := newPendingRequest(requestRepo)

	if _, err := svc.Decide(context.Background(), req.ID, uuid.New(), false, "no capacity"); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	_, err := svc.Decide(context.Background(), req.ID, uuid.New(), true, "")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("second decision error = %v, want ErrInvalidTransition", err)
	}

	stored, _ := requestRepo.FindByID(context.Background(), req.ID)
	if stored.ApprovalStatus != model.ApprovalRejected {
		t.Errorf("first decision must stand, got %s", stored.ApprovalStatus)
	}
}

func TestDecideConcurrentExactlyOneWins(t *testing.T) {
	stock := newStock(CategoryWater, 40, 21.03, 105.81)
	requestRepo, svc, _ := newApprovalFixture(stock)
	req := newPendingRequest(requestRepo)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			approved := i%2 == 0
			reason := ""
			if !approved {
				reason = "concurrent reject"
			}
			_, errs[i] = svc.Decide(context.Background(), req.ID, uuid.New(), approved, reason)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, apperr.ErrInvalidTransition):
		default:
			t.Errorf("loser got unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	stored, _ := requestRepo.FindByID(context.Background(), req.ID)
	if stored.ApprovalStatus == model.ApprovalPending {
		t.Error("request should be decided after the race")
	}
}

func TestDecideApprovalSurvivesMatchFailure(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	resourceRepo := &fakeResourceRepo{listErr: apperr.ErrStoreUnavailable}
	notifier := &stubNotifier{}
	svc := NewApprovalService(requestRepo, NewMatcherService(requestRepo, resourceRepo), notifier)
	req := newPendingRequest(requestRepo)

	decided, err := svc.Decide(context.Background(), req.ID, uuid.New(), true, "")
	if err != nil {
		t.Fatalf("approval must not fail when matching does: %v", err)
	}
	if decided.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("approval status = %s, want APPROVED", decided.ApprovalStatus)
	}
	if decided.MatchingStatus != model.MatchingNoMatchFound {
		t.Errorf("matching status after failed run = %s, want NO_MATCH_FOUND", decided.MatchingStatus)
	}
}

func TestDecideApproveNoStockEndsNoMatchFound(t *testing.T) {
	requestRepo, svc, _ := newApprovalFixture() // no stock at all
	req := newPendingRequest(requestRepo)

	decided, err := svc.Decide(context.Background(), req.ID, uuid.New(), true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("approval status = %s, want APPROVED", decided.ApprovalStatus)
	}
	if decided.MatchingStatus != model.MatchingNoMatchFound {
		t.Errorf("matching status = %s, want NO_MATCH_FOUND", decided.MatchingStatus)
	}
}
