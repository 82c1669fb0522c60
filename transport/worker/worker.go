package worker

import (
	"context"
	"miyabi/config"
	"miyabi/infras/kafka"
	"miyabi/infras/otel"
	receiptService "miyabi/internal/domains/receipt/service"
	"miyabi/shared/constant"
	"miyabi/shared/event"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const consumerGroupSuffix = ".receipts"

// Worker archives the receipt of every reservation that reaches Completed.
type Worker struct {
	cfg     *config.Config
	kafka   kafka.Client
	receipt receiptService.Receipt
	otel    otel.Otel
}

func New(cfg *config.Config, kafka kafka.Client, receipt receiptService.Receipt, otel otel.Otel) *Worker {
	return &Worker{
		cfg:     cfg,
		kafka:   kafka,
		receipt: receipt,
		otel:    otel,
	}
}

// Run blocks until SIGINT or SIGTERM.
func (w *Worker) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topic := w.cfg.Kafka.Topics.Reservation

	log.Info().Str("topic", topic).Msg("Starting receipt worker.")

	w.kafka.Consume(ctx, w.cfg.Kafka.ConsumerGroup+consumerGroupSuffix, topic, func(message kafkaGo.Message) {
		w.Handle(ctx, message)
	})

	log.Info().Msg("Receipt worker stopped.")
}

// Handle archives on reservation.completed and ignores every other event type.
func (w *Worker) Handle(ctx context.Context, message kafkaGo.Message) {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".worker.Handle")
	defer scope.End()

	evt, err := kafka.DecodeKafkaMessage[event.Event](message)
	if err != nil {
		scope.TraceError(err)

		return
	}

	scope.SetAttributes(map[string]any{
		"event.type":     evt.Type,
		"reservation.id": evt.ReservationID,
	})

	if evt.Type != event.TypeReservationCompleted {
		return
	}

	archived, err := w.receipt.Archive(ctx, evt.ReservationID)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", evt.ReservationID).Msg("failed to archive receipt")
		scope.TraceError(err)

		return
	}

	log.Info().Str("code", archived.Code).Str("url", archived.URL).Msg("Receipt archived.")
}
