package returns

import (
	"context"
	"fmt"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier interface {
	SendReturnRequest(ctx context.Context, req *models.ReturnRequest, user *models.User) error
}

// Service handles customer return requests and their administration.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.ReturnRequest, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.ReturnRequest, error)
	ListAll(ctx context.Context, status *enums.ReturnStatus) ([]models.ReturnRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.ReturnRequest, error)
}

type ServiceParams struct {
	Repo     *Repository
	Tx       txRunner
	Users    userLookup
	Outbox   outboxPublisher
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	tx       txRunner
	users    userLookup
	outbox   outboxPublisher
	notifier notifier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("returns repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Users == nil:
		return nil, fmt.Errorf("user lookup required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		users:    params.Users,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Create stores the request and tells the administrator about it. The email
// is best-effort.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.ReturnRequest, error) {
	orderNumber := strings.TrimSpace(input.OrderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order ID and reason are required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return reason").
			WithDetails(map[string]string{"reason": string(input.Reason)})
	}

	req := &models.ReturnRequest{
		UserID:      userID,
		OrderNumber: orderNumber,
		Reason:      input.Reason,
		Message:     strings.TrimSpace(input.Message),
		Status:      enums.ReturnStatusPending,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, req); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return request")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReturnRequested,
			AggregateType: enums.AggregateReturnRequest,
			AggregateID:   req.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleUser)},
			Data: payloads.ReturnRequestedEvent{
				ReturnRequestID: req.ID,
				OrderNumber:     req.OrderNumber,
				UserID:          userID,
				Reason:          string(req.Reason),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue return event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithField(ctx, "return_request_id", req.ID.String())
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logg.Warn(ctx, "returns.requester_lookup_failed")
	}
	if err := s.notifier.SendReturnRequest(ctx, req, user); err != nil {
		s.logg.Warn(ctx, "returns.admin_email_failed")
	}
	return req, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.ReturnRequest, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list return requests")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context, status *enums.ReturnStatus) ([]models.ReturnRequest, error) {
	filter := ""
	if status != nil {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return status")
		}
		filter = string(*status)
	}
	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list return requests")
	}
	return rows, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.ReturnRequest, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return status").
			WithDetails(map[string]string{"status": string(input.Status)})
	}
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return request")
	}
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Return request not found")
	}

	req.Status = input.Status
	if input.AdminResponse != nil {
		response := strings.TrimSpace(*input.AdminResponse)
		req.AdminResponse = &response
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update return request")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"return_request_id": req.ID.String(),
		"status":            string(req.Status),
	}), "returns.status_updated")
	return req, nil
}
