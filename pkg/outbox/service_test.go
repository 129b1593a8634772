package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	orderID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          map[string]string{"orderNumber": "ORD-000001"},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)

	var env PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"orderNumber":"ORD-000001"}`, string(env.Data))
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	_ = conn.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          struct{}{},
		}))
		return gorm.ErrInvalidTransaction
	})

	n, err := repo.CountPending(conn)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmitRequiresTransactionAndKnownTypes(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))

	conn := dbtest.Open(t)
	require.Error(t, svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     "bogus",
		AggregateType: enums.AggregateOrder,
	}))
	require.Error(t, svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		Data:          struct{}{},
	}), "aggregate id is required")
	require.ErrorIs(t, svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	}), ErrEmptyData)
}

func TestEmittedRowsDecode(t *testing.T) {
	occurred := time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)
	row, env, err := buildRow(DomainEvent{
		EventType:     enums.EventReturnRequested,
		AggregateType: enums.AggregateReturnRequest,
		AggregateID:   uuid.New(),
		Actor:         &ActorRef{UserID: uuid.New(), Role: "user"},
		Data:          map[string]string{"reason": "Damaged"},
		OccurredAt:    occurred,
	}, time.Now())
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(row.Payload)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.Equal(t, EnvelopeVersion, decoded.Version)
	assert.True(t, occurred.Equal(decoded.OccurredAt))
	require.NotNil(t, decoded.Actor)
	assert.Equal(t, "user", decoded.Actor.Role)
}

func TestDecodeEnvelopeRejectsUnknownVersionAndEmptyData(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"version":9,"data":{}}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	_, err = DecodeEnvelope([]byte(`{"version":1,"data":null}`))
	assert.ErrorIs(t, err, ErrEmptyData)
	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestRepositoryAttemptBookkeeping(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	row := models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, repo.Insert(conn, row))
	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	id := rows[0].ID

	require.NoError(t, repo.MarkFailedTx(conn, id, assert.AnError))
	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].AttemptCount)
	require.NotNil(t, rows[0].LastError)

	require.NoError(t, repo.MarkTerminalTx(conn, id, assert.AnError, 3))
	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, rows, "terminal rows are skipped")

	require.NoError(t, repo.MarkPublishedTx(conn, id))
	n, err := repo.CountPending(conn)
	require.NoError(t, err)
	assert.Zero(t, n)
}
