package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/email"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/buy2brands/wholesale-api/pkg/realtime"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Failure kinds recorded in notification_failures_total.
const (
	KindCustomerEmail = "customer_email"
	KindAdminEmail    = "admin_email"
	KindRealtime      = "realtime"
)

// Notifier fans order and return events out to email and the realtime channel.
// Every method is best-effort from the caller's point of view: errors are
// counted and returned, never retried.
type Notifier interface {
	SendCustomerConfirmation(ctx context.Context, order *models.Order, user *models.User) error
	SendAdminConfirmation(ctx context.Context, order *models.Order, user *models.User) error
	BroadcastNewOrder(ctx context.Context, order *models.Order, user *models.User) error
	SendCancellation(ctx context.Context, order *models.Order, user *models.User) error
	SendReturnRequest(ctx context.Context, req *models.ReturnRequest, user *models.User) error
	BroadcastStatusChange(ctx context.Context, order *models.Order, changedBy uuid.UUID) error
}

type broadcaster interface {
	ToAdmins(ctx context.Context, event string, payload any) error
	ToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error
}

type ServiceParams struct {
	Sender      email.Sender
	Broadcaster broadcaster
	AdminEmail  string
	Metrics     *metrics.NotificationMetrics
}

type service struct {
	sender      email.Sender
	broadcaster broadcaster
	adminEmail  string
	metrics     *metrics.NotificationMetrics
}

// NewService wires the notifier's transports.
func NewService(params ServiceParams) (Notifier, error) {
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if params.Broadcaster == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "realtime broadcaster required")
	}
	return &service{
		sender:      params.Sender,
		broadcaster: params.Broadcaster,
		adminEmail:  params.AdminEmail,
		metrics:     params.Metrics,
	}, nil
}

var errNoOrder = errors.New("order is required")

func (s *service) SendCustomerConfirmation(ctx context.Context, order *models.Order, user *models.User) error {
	if order == nil {
		return errNoOrder
	}
	return s.deliver(ctx, KindCustomerEmail, customerOrderEmail(order, user))
}

func (s *service) SendAdminConfirmation(ctx context.Context, order *models.Order, user *models.User) error {
	if order == nil {
		return errNoOrder
	}
	if s.adminEmail == "" {
		return nil
	}
	return s.deliver(ctx, KindAdminEmail, adminOrderEmail(order, user, s.adminEmail))
}

func (s *service) BroadcastNewOrder(ctx context.Context, order *models.Order, user *models.User) error {
	if order == nil {
		return errNoOrder
	}
	payload := map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.Total,
		"status":       order.Status,
	}
	if user != nil {
		payload["customer"] = map[string]string{
			"name":    user.FullName(),
			"email":   user.Email,
			"company": user.CompanyName,
		}
	}
	return s.count(KindRealtime, s.broadcaster.ToAdmins(ctx, realtime.EventNewOrderReceived, payload))
}

func (s *service) SendCancellation(ctx context.Context, order *models.Order, user *models.User) error {
	if order == nil {
		return errNoOrder
	}
	err := s.deliver(ctx, KindCustomerEmail, customerCancellationEmail(order, user))
	if s.adminEmail != "" {
		err = multierr.Append(err, s.deliver(ctx, KindAdminEmail, adminCancellationEmail(order, user, s.adminEmail)))
	}
	return err
}

func (s *service) SendReturnRequest(ctx context.Context, req *models.ReturnRequest, user *models.User) error {
	if req == nil {
		return errors.New("return request is required")
	}
	if s.adminEmail == "" {
		return nil
	}
	return s.deliver(ctx, KindAdminEmail, returnRequestEmail(req, user, s.adminEmail))
}

func (s *service) BroadcastStatusChange(ctx context.Context, order *models.Order, changedBy uuid.UUID) error {
	if order == nil {
		return errNoOrder
	}
	now := time.Now().UTC()
	userErr := s.broadcaster.ToUser(ctx, order.UserID, realtime.EventOrderStatusChanged, map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"changed_at":   now,
	})
	adminErr := s.broadcaster.ToAdmins(ctx, realtime.EventOrderUpdated, map[string]any{
		"order_id":   order.ID,
		"status":     order.Status,
		"user_id":    order.UserID,
		"updated_by": changedBy,
	})
	return s.count(KindRealtime, multierr.Combine(userErr, adminErr))
}

func (s *service) deliver(ctx context.Context, kind string, msg email.Message) error {
	return s.count(kind, s.sender.Send(ctx, msg))
}

func (s *service) count(kind string, err error) error {
	if err != nil {
		s.metrics.IncFailure(kind)
	}
	return err
}
