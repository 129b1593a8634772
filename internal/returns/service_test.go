package returns

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/buy2brands/wholesale-api/internal/users"
	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubNotifier struct {
	sent []string
	to   []*models.User
	err  error
}

func (s *stubNotifier) SendReturnRequest(_ context.Context, req *models.ReturnRequest, user *models.User) error {
	s.sent = append(s.sent, req.OrderNumber)
	s.to = append(s.to, user)
	return s.err
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	notifier *stubNotifier
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "returns-test", Output: io.Discard})
	notifier := &stubNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       db.Wrap(conn),
		Users:    users.NewRepository(conn),
		Outbox:   outbox.NewService(outbox.NewRepository(conn), logg),
		Notifier: notifier,
		Logger:   logg,
	})
	require.NoError(t, err)

	user := &models.User{Email: "dana@example.com", PasswordHash: "hash", FirstName: "Dana", LastName: "Price", IsActive: true}
	require.NoError(t, conn.Create(user).Error)
	return &fixture{svc: svc, conn: conn, notifier: notifier, user: user}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateStoresRequestQueuesEventAndEmails(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.Create(context.Background(), f.user.ID, CreateInput{
		OrderNumber: " ORD-000042 ",
		Reason:      enums.ReturnReasonDamaged,
		Message:     "Seam split on arrival",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-000042", req.OrderNumber)
	assert.Equal(t, enums.ReturnStatusPending, req.Status)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventReturnRequested, events[0].EventType)

	require.Equal(t, []string{"ORD-000042"}, f.notifier.sent)
	require.NotNil(t, f.notifier.to[0])
	assert.Equal(t, f.user.Email, f.notifier.to[0].Email)
}

func TestCreateSucceedsWhenEmailFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("sendgrid down")

	req, err := f.svc.Create(context.Background(), f.user.ID, CreateInput{OrderNumber: "ORD-000001", Reason: enums.ReturnReasonOther})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.ID)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.user.ID, CreateInput{OrderNumber: "  ", Reason: enums.ReturnReasonOther})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(context.Background(), f.user.ID, CreateInput{OrderNumber: "ORD-000001", Reason: "Changed mind"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.notifier.sent)
}

func TestListAndUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.user.ID, CreateInput{OrderNumber: "ORD-000001", Reason: enums.ReturnReasonSizeIssue})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, uuid.New(), CreateInput{OrderNumber: "ORD-000002", Reason: enums.ReturnReasonWrongItem})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	response := "  Label sent by email  "
	updated, err := f.svc.UpdateStatus(ctx, first.ID, UpdateStatusInput{Status: enums.ReturnStatusApproved, AdminResponse: &response})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, updated.Status)
	require.NotNil(t, updated.AdminResponse)
	assert.Equal(t, "Label sent by email", *updated.AdminResponse)

	approved := enums.ReturnStatusApproved
	filtered, err := f.svc.ListAll(ctx, &approved)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)
	require.NotNil(t, filtered[0].User)

	all, err := f.svc.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), UpdateStatusInput{Status: enums.ReturnStatusRejected})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.UpdateStatus(ctx, first.ID, UpdateStatusInput{Status: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
