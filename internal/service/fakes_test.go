package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/pkg/geo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory fakes backing the service tests. Each fake guards its state with a
// mutex so concurrent fan-out and race tests stay meaningful.

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.ReliefRequest

	setMatchErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.ReliefRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.ReliefRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ReliefRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ReliefRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) List(_ context.Context, approvalStatus string, _, _ int) ([]model.ReliefRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReliefRequest
	for _, req := range f.requests {
		if approvalStatus != "" && req.ApprovalStatus != approvalStatus {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) ListUndecided(_ context.Context) ([]model.ReliefRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReliefRequest
	for _, req := range f.requests {
		if req.ApprovalStatus == model.ApprovalPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) DecideIfPending(_ context.Context, id uuid.UUID, status string, approverID uuid.UUID, decidedAt time.Time, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok || req.ApprovalStatus != model.ApprovalPending {
		return false, nil
	}
	req.ApprovalStatus = status
	req.ApprovedBy = &approverID
	req.DecidedAt = &decidedAt
	req.RejectionReason = reason
	return true, nil
}

func (f *fakeRequestRepo) SetMatchResult(_ context.Context, id uuid.UUID, status string, resourceID *uuid.UUID, distanceKm *decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setMatchErr != nil {
		return f.setMatchErr
	}
	req, ok := f.requests[id]
	if !ok {
		return apperr.ErrNotFound
	}
	req.MatchingStatus = status
	req.MatchedResourceID = resourceID
	req.MatchedDistanceKm = distanceKm
	return nil
}

func (f *fakeRequestRepo) UpdatePriority(_ context.Context, id uuid.UUID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return apperr.ErrNotFound
	}
	req.PriorityScore = score
	return nil
}

type fakeResourceRepo struct {
	mu     sync.Mutex
	stocks []model.ResourceStock

	listErr error
}

func (f *fakeResourceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ResourceStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.stocks {
		if f.stocks[i].ID == id {
			clone := f.stocks[i]
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeResourceRepo) ListReadyByCategories(_ context.Context, categories []string) ([]model.ResourceStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	var out []model.ResourceStock
	for _, s := range f.stocks {
		if s.Status == model.ResourceReady && s.Quantity > 0 && wanted[s.Category] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeResourceRepo) List(_ context.Context, _, _ int) ([]model.ResourceStock, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.ResourceStock(nil), f.stocks...)
	return out, int64(len(out)), nil
}

func (f *fakeResourceRepo) Save(_ context.Context, res *model.ResourceStock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.stocks {
		if f.stocks[i].ID == res.ID {
			f.stocks[i] = *res
			return nil
		}
	}
	f.stocks = append(f.stocks, *res)
	return nil
}

func (f *fakeResourceRepo) ListCenters(_ context.Context, _, _ int) ([]model.ReliefCenter, int64, error) {
	return nil, 0, nil
}

type fakeDistributionRepo struct {
	mu      sync.Mutex
	stocks  map[uuid.UUID]*model.ResourceStock
	dists   map[uuid.UUID]*model.Distribution
	entries []model.LedgerEntry
}

func newFakeDistributionRepo() *fakeDistributionRepo {
	return &fakeDistributionRepo{
		stocks: make(map[uuid.UUID]*model.ResourceStock),
		dists:  make(map[uuid.UUID]*model.Distribution),
	}
}

func (f *fakeDistributionRepo) CreateWithStockDecrement(_ context.Context, dist *model.Distribution, entry *model.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stock, ok := f.stocks[dist.ResourceID]
	if !ok {
		return apperr.ErrNotFound
	}
	if stock.Status != model.ResourceReady || stock.Quantity < dist.Quantity {
		return fmt.Errorf("stock %s has %d of %d requested: %w",
			stock.ID, stock.Quantity, dist.Quantity, apperr.ErrInvalidTransition)
	}
	stock.Quantity -= dist.Quantity
	if stock.Quantity == 0 {
		stock.Status = model.ResourceOutOfStock
	}

	if dist.ID == uuid.Nil {
		dist.ID = uuid.New()
	}
	clone := *dist
	f.dists[dist.ID] = &clone

	entry.ID = uuid.New()
	entry.DistributionID = dist.ID
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDistributionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Distribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dist, ok := f.dists[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *dist
	return &clone, nil
}

func (f *fakeDistributionRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Distribution, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeDistributionRepo) List(_ context.Context, status string, _, _ int) ([]model.Distribution, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Distribution
	for _, d := range f.dists {
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDistributionRepo) ListByDeliverer(_ context.Context, delivererID uuid.UUID, _, _ int) ([]model.Distribution, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Distribution
	for _, d := range f.dists {
		if d.DelivererID == delivererID {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeDistributionRepo) SaveWithLedger(_ context.Context, dist *model.Distribution, entry *model.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *dist
	f.dists[dist.ID] = &clone
	entry.ID = uuid.New()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDistributionRepo) ListLedger(_ context.Context, distributionID uuid.UUID) ([]model.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range f.entries {
		if e.DistributionID == distributionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification

	createErrFor uuid.UUID // receiver whose Create fails
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErrFor != uuid.Nil && n.ReceiverID == f.createErrFor {
		return apperr.ErrStoreUnavailable
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	clone := *n
	f.notifications = append(f.notifications, &clone)
	return nil
}

func (f *fakeNotificationRepo) ListByReceiver(_ context.Context, receiverID uuid.UUID, _, _ int) ([]model.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, receiverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id && n.ReceiverID == receiverID {
			n.Read = true
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, receiverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, receiverID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) SetDeliveryFlags(_ context.Context, id uuid.UUID, emailSent, smsSent bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			n.EmailSent = emailSent
			n.SmsSent = smsSent
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (f *fakeNotificationRepo) byReceiver(receiverID uuid.UUID) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID {
			out = append(out, *n)
		}
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) add(u model.User) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = &u
	return u.ID
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.add(*user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListBroadcastCandidates(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Latitude != nil && u.Longitude != nil && u.NotificationsEnabled {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SaveRefreshToken(_ context.Context, _ *model.RefreshToken) error {
	return nil
}

// fakeTxManager runs the callback directly; the repo fakes are already atomic
// per call under their mutexes.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeDispatcher struct {
	mu       sync.Mutex
	emails   []uuid.UUID
	smses    []uuid.UUID
	emailErr error
	smsErr   error
}

func (f *fakeDispatcher) SendEmail(_ context.Context, userID uuid.UUID, _ *model.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailErr != nil {
		return false, f.emailErr
	}
	f.emails = append(f.emails, userID)
	return true, nil
}

func (f *fakeDispatcher) SendSms(_ context.Context, userID uuid.UUID, _ *model.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.smsErr != nil {
		return false, f.smsErr
	}
	f.smses = append(f.smses, userID)
	return true, nil
}

type fakePusher struct {
	mu     sync.Mutex
	events [][]byte
}

func (f *fakePusher) Push(event []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// stubNotifier satisfies NotificationService for services whose tests do not
// exercise delivery.
type stubNotifier struct {
	mu        sync.Mutex
	decisions []bool
	assigned  []uuid.UUID
}

func (s *stubNotifier) NotifyNewRequest(context.Context, uuid.UUID, *model.ReliefRequest) (FanoutResult, error) {
	return FanoutResult{}, nil
}

func (s *stubNotifier) NotifyDecision(_ context.Context, _ uuid.UUID, _ *model.ReliefRequest, approved bool, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, approved)
	return nil
}

func (s *stubNotifier) NotifyDistributionAssigned(_ context.Context, _ uuid.UUID, dist *model.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned = append(s.assigned, dist.DelivererID)
	return nil
}

func (s *stubNotifier) BroadcastEmergency(context.Context, uuid.UUID, geo.Point, float64, string) (FanoutResult, error) {
	return FanoutResult{}, nil
}

func (s *stubNotifier) ListForUser(context.Context, uuid.UUID, int, int) ([]NotificationResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubNotifier) MarkRead(context.Context, uuid.UUID, uuid.UUID) error  { return nil }
func (s *stubNotifier) MarkAllRead(context.Context, uuid.UUID) error          { return nil }
func (s *stubNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func decimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
