package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miyabi/config"
	"miyabi/infras/otel/mocks"
	"miyabi/internal/domains/receipt/model/dto"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/transport/worker"
)

type fakeReceipt struct {
	archived []string
	err      error
}

func (f *fakeReceipt) Build(context.Context, gDto.Caller, string) (dto.ReceiptResponse, error) {
	return dto.ReceiptResponse{}, nil
}

func (f *fakeReceipt) Archive(_ context.Context, reservationID string) (dto.ArchiveResponse, error) {
	f.archived = append(f.archived, reservationID)

	return dto.ArchiveResponse{Code: "RES-1", URL: "https://cdn.test/receipts/RES-1.json"}, f.err
}

func message(t *testing.T, evt event.Event) kafkaGo.Message {
	t.Helper()

	value, err := json.Marshal(evt)
	require.NoError(t, err)

	return kafkaGo.Message{Key: []byte(evt.ReservationID), Value: value}
}

func TestHandle(t *testing.T) {
	t.Run("archives completed reservations", func(t *testing.T) {
		receipt := &fakeReceipt{}
		w := worker.New(&config.Config{}, nil, receipt, mocks.NewOtel())

		w.Handle(context.Background(), message(t, event.New(event.TypeReservationCompleted, "res-1", "staff-1")))

		assert.Equal(t, []string{"res-1"}, receipt.archived)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		receipt := &fakeReceipt{}
		w := worker.New(&config.Config{}, nil, receipt, mocks.NewOtel())

		w.Handle(context.Background(), message(t, event.New(event.TypeReservationCreated, "res-1", "guest-1")))
		w.Handle(context.Background(), message(t, event.New(event.TypeConsumptionPosted, "res-1", "staff-1")))

		assert.Empty(t, receipt.archived)
	})

	t.Run("survives undecodable payloads", func(t *testing.T) {
		receipt := &fakeReceipt{}
		w := worker.New(&config.Config{}, nil, receipt, mocks.NewOtel())

		w.Handle(context.Background(), kafkaGo.Message{Value: []byte("not json")})

		assert.Empty(t, receipt.archived)
	})

	t.Run("archive failure is not fatal", func(t *testing.T) {
		receipt := &fakeReceipt{err: errors.New("bucket unavailable")}
		w := worker.New(&config.Config{}, nil, receipt, mocks.NewOtel())

		assert.NotPanics(t, func() {
			w.Handle(context.Background(), message(t, event.New(event.TypeReservationCompleted, "res-2", "staff-1")))
		})
		assert.Equal(t, []string{"res-2"}, receipt.archived)
	})
}
