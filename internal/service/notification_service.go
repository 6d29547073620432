package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/geo"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ChannelDispatcher hands notifications to the outbound email/SMS transport.
// Fire-and-forget: the core only records the reported attempt flag.
type ChannelDispatcher interface {
	SendEmail(ctx context.Context, userID uuid.UUID, n *model.Notification) (bool, error)
	SendSms(ctx context.Context, userID uuid.UUID, n *model.Notification) (bool, error)
}

// Pusher pushes realtime events to connected websocket clients.
type Pusher interface {
	Push(event []byte)
}

// FanoutResult aggregates per-recipient outcomes of a fan-out batch.
type FanoutResult struct {
	SentCount   int `json:"sent_count"`
	FailedCount int `json:"failed_count"`
}

// NotificationEvent is the realtime payload pushed to connected clients.
type NotificationEvent struct {
	Event string              `json:"event"`
	Data  *model.Notification `json:"data"`
}

type NotificationResponse struct {
	ID         string `json:"id"`
	SenderName string `json:"sender_name"`
	RequestID  string `json:"request_id,omitempty"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Read       bool   `json:"read"`
	EmailSent  bool   `json:"email_sent"`
	SmsSent    bool   `json:"sms_sent"`
	CreatedAt  string `json:"created_at"`
}

// NotificationService owns workflow fan-out and geographic emergency
// broadcasts. All fan-out is best-effort per recipient: a failing recipient is
// logged and counted, never aborts the batch.
type NotificationService interface {
	NotifyNewRequest(ctx context.Context, senderID uuid.UUID, req *model.ReliefRequest) (FanoutResult, error)
	NotifyDecision(ctx context.Context, senderID uuid.UUID, req *model.ReliefRequest, approved bool, reason string) error
	NotifyDistributionAssigned(ctx context.Context, senderID uuid.UUID, dist *model.Distribution) error
	BroadcastEmergency(ctx context.Context, senderID uuid.UUID, center geo.Point, radiusKm float64, message string) (FanoutResult, error)

	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// fanoutLimit bounds concurrent per-recipient deliveries.
const fanoutLimit = 8

type notificationService struct {
	notifRepo  repository.NotificationRepository
	userRepo   repository.UserRepository
	dispatcher ChannelDispatcher
	pusher     Pusher
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	dispatcher ChannelDispatcher,
	pusher Pusher,
) NotificationService {
	return &notificationService{
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
		pusher:     pusher,
	}
}

// NotifyNewRequest fans a submission out to every admin account.
func (s *notificationService) NotifyNewRequest(ctx context.Context, senderID uuid.UUID, req *model.ReliefRequest) (FanoutResult, error) {
	admins, err := s.userRepo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return FanoutResult{}, err
	}

	requestID := req.ID
	return s.fanout(ctx, admins, func(admin model.User) *model.Notification {
		return &model.Notification{
			SenderID:   senderID,
			ReceiverID: admin.ID,
			RequestID:  &requestID,
			Category:   model.NotifNewRequest,
			Title:      "New relief request",
			Body: fmt.Sprintf("A %s request for %d people was submitted (urgency: %s, priority %d).",
				req.Category, req.PeopleCount, req.Urgency, req.PriorityScore),
		}
	}), nil
}

// NotifyDecision sends exactly one notification to the requester, enriched
// with the match outcome when approved.
func (s *notificationService) NotifyDecision(ctx context.Context, senderID uuid.UUID, req *model.ReliefRequest, approved bool, reason string) error {
	receiver, err := s.userRepo.GetByID(ctx, req.RequesterID)
	if err != nil {
		return err
	}

	requestID := req.ID
	n := &model.Notification{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		RequestID:  &requestID,
	}
	if approved {
		n.Category = model.NotifApproved
		n.Title = "Request approved"
		switch req.MatchingStatus {
		case model.MatchingMatched:
			n.Body = fmt.Sprintf("Your %s request was approved and matched to a relief stock %s km away. A delivery will be arranged.",
				req.Category, req.MatchedDistanceKm)
		default:
			n.Body = fmt.Sprintf("Your %s request was approved. No stock is available yet; we will match it as soon as supply arrives.",
				req.Category)
		}
	} else {
		n.Category = model.NotifRejected
		n.Title = "Request rejected"
		n.Body = fmt.Sprintf("Your %s request was rejected. Reason: %s", req.Category, reason)
	}

	return s.deliver(ctx, *receiver, n)
}

// NotifyDistributionAssigned sends one notification to the assigned deliverer.
func (s *notificationService) NotifyDistributionAssigned(ctx context.Context, senderID uuid.UUID, dist *model.Distribution) error {
	receiver, err := s.userRepo.GetByID(ctx, dist.DelivererID)
	if err != nil {
		return err
	}

	requestID := dist.RequestID
	n := &model.Notification{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		RequestID:  &requestID,
		Category:   model.NotifDistribution,
		Title:      "New delivery task",
		Body: fmt.Sprintf("You were assigned delivery %s (%d x %s).",
			dist.TransactionCode, dist.Quantity, dist.Resource.Name),
	}

	return s.deliver(ctx, *receiver, n)
}

// BroadcastEmergency fans an alert out to every user with stored coordinates
// and notifications enabled within radiusKm of center. Users without
// coordinates are excluded by the repository query, never defaulted in.
func (s *notificationService) BroadcastEmergency(ctx context.Context, senderID uuid.UUID, center geo.Point, radiusKm float64, message string) (FanoutResult, error) {
	if !center.Valid() {
		return FanoutResult{}, fmt.Errorf("broadcast center out of range: %w", apperr.ErrInvalidLocation)
	}
	if radiusKm <= 0 {
		return FanoutResult{}, fmt.Errorf("broadcast radius must be positive: %w", apperr.ErrInvalidLocation)
	}

	candidates, err := s.userRepo.ListBroadcastCandidates(ctx)
	if err != nil {
		return FanoutResult{}, err
	}

	var recipients []model.User
	for _, u := range candidates {
		if u.Latitude == nil || u.Longitude == nil {
			continue
		}
		dist, distErr := geo.Distance(center, geo.Point{Lat: u.Latitude.InexactFloat64(), Lng: u.Longitude.InexactFloat64()})
		if distErr != nil {
			log.Printf("broadcast: skipping user %s with bad coordinates: %v", u.ID, distErr)
			continue
		}
		if dist <= radiusKm {
			recipients = append(recipients, u)
		}
	}

	return s.fanout(ctx, recipients, func(u model.User) *model.Notification {
		return &model.Notification{
			SenderID:   senderID,
			ReceiverID: u.ID,
			Category:   model.NotifEmergency,
			Title:      "EMERGENCY ALERT",
			Body:       message,
		}
	}), nil
}

// fanout delivers one notification per recipient with bounded concurrency,
// aggregating per-recipient results over a channel. Failures are logged and
// counted; the batch always runs to completion.
func (s *notificationService) fanout(ctx context.Context, recipients []model.User, build func(model.User) *model.Notification) FanoutResult {
	if len(recipients) == 0 {
		return FanoutResult{}
	}

	results := make(chan error, len(recipients))
	g := new(errgroup.Group)
	g.SetLimit(fanoutLimit)

	for _, recipient := range recipients {
		recipient := recipient
		g.Go(func() error {
			results <- s.deliver(ctx, recipient, build(recipient))
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	var res FanoutResult
	for err := range results {
		if err != nil {
			log.Printf("notification fan-out: recipient delivery failed: %v", err)
			res.FailedCount++
			continue
		}
		res.SentCount++
	}
	return res
}

// deliver persists the notification, pushes it to the realtime hub and
// dispatches email/SMS according to the recipient's stored channel preference.
func (s *notificationService) deliver(ctx context.Context, recipient model.User, n *model.Notification) error {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	if s.pusher != nil {
		if payload, err := json.Marshal(NotificationEvent{Event: "notification", Data: n}); err == nil {
			s.pusher.Push(payload)
		}
	}

	if !recipient.NotificationsEnabled || s.dispatcher == nil {
		return nil
	}

	emailSent, smsSent := false, false
	if recipient.NotifyByEmail {
		sent, err := s.dispatcher.SendEmail(ctx, recipient.ID, n)
		if err != nil {
			log.Printf("notification %s: email dispatch to %s failed: %v", n.ID, recipient.ID, err)
		}
		emailSent = sent && err == nil
	}
	if recipient.NotifyBySms {
		sent, err := s.dispatcher.SendSms(ctx, recipient.ID, n)
		if err != nil {
			log.Printf("notification %s: sms dispatch to %s failed: %v", n.ID, recipient.ID, err)
		}
		smsSent = sent && err == nil
	}

	if emailSent || smsSent {
		if err := s.notifRepo.SetDeliveryFlags(ctx, n.ID, emailSent, smsSent); err != nil {
			return err
		}
		n.EmailSent = emailSent
		n.SmsSent = smsSent
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]NotificationResponse, int64, error) {
	notifications, total, err := s.notifRepo.ListByReceiver(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		item := NotificationResponse{
			ID:        n.ID.String(),
			Category:  n.Category,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			EmailSent: n.EmailSent,
			SmsSent:   n.SmsSent,
			CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if n.Sender != nil {
			item.SenderName = n.Sender.FullName
		}
		if n.RequestID != nil {
			item.RequestID = n.RequestID.String()
		}
		res = append(res, item)
	}
	return res, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
