package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/outbox/payloads"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	SendCancellation(ctx context.Context, order *models.Order, user *models.User) error
	BroadcastStatusChange(ctx context.Context, order *models.Order, changedBy uuid.UUID) error
}

// Service defines order operations after an order has been created.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, caller Caller, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters AdminListFilters, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, caller Caller, id uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, caller Caller, id uuid.UUID, input CancelInput) (*models.Order, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*OrderList, error) {
	if err := validStatusFilter(filters.Status); err != nil {
		return nil, err
	}
	return s.list(func() (*OrderList, error) {
		return s.repo.ListByUser(ctx, userID, filters, params)
	}, params)
}

func (s *service) List(ctx context.Context, filters AdminListFilters, params pagination.Params) (*OrderList, error) {
	if err := validStatusFilter(filters.Status); err != nil {
		return nil, err
	}
	return s.list(func() (*OrderList, error) {
		return s.repo.List(ctx, filters, params)
	}, params)
}

func (s *service) list(fetch func() (*OrderList, error), params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	result, err := fetch()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, caller Caller, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller Caller, id uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]string{"status": string(input.Status)})
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		from := current.Status

		note := ""
		if input.Note != nil {
			note = strings.TrimSpace(*input.Note)
		}
		if note != "" {
			current.AdminNotes = &note
		}
		if input.TrackingNumber != nil {
			tracking := strings.TrimSpace(*input.TrackingNumber)
			current.TrackingNumber = &tracking
		}
		current.Status = input.Status
		changedAt := s.now()
		actor := caller.UserID
		current.StatusHistory = current.StatusHistory.Append(types.StatusEntry{
			Status:    input.Status,
			Note:      note,
			ChangedBy: &actor,
			ChangedAt: changedAt,
		})

		if err := repo.Update(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: string(caller.Role)},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     current.ID,
				OrderNumber: current.OrderNumber,
				UserID:      current.UserID,
				From:        string(from),
				To:          string(input.Status),
				Note:        note,
				ChangedAt:   changedAt,
			},
			OccurredAt: changedAt,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue status event")
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.BroadcastStatusChange(ctx, order, caller.UserID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "orders.status_broadcast_failed")
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, caller Caller, id uuid.UUID, input CancelInput) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if current.UserID != caller.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to cancel this order")
		}
		if !current.Status.Cancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot cancel order at this stage").
				WithDetails(map[string]string{"status": string(current.Status)})
		}

		actor := caller.UserID
		reason := strings.TrimSpace(input.Reason)
		current.Status = enums.OrderStatusCancelled
		current.StatusHistory = current.StatusHistory.Append(types.StatusEntry{
			Status:    enums.OrderStatusCancelled,
			Note:      reason,
			ChangedBy: &actor,
			ChangedAt: s.now(),
		})
		if err := repo.Update(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: string(caller.Role)},
			Data: payloads.OrderCancelledEvent{
				OrderID:     current.ID,
				OrderNumber: current.OrderNumber,
				UserID:      current.UserID,
				Reason:      reason,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue cancel event")
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendCancellation(ctx, order, order.User); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "orders.cancellation_email_failed")
	}
	return order, nil
}

func (s *service) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if order.UserID != caller.UserID && !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to delete this order")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func validStatusFilter(status *enums.OrderStatus) error {
	if status != nil && !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	return nil
}
