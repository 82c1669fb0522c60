package event

import (
	"context"
	"miyabi/infras/kafka"
	"miyabi/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationConfirmed = "reservation.confirmed"
	TypeReservationCancelled = "reservation.cancelled"
	TypeReservationCompleted = "reservation.completed"
	TypeReservationCheckedIn = "reservation.checked_in"
	TypeReservationUpdated   = "reservation.updated"
	TypeReservationDeleted   = "reservation.deleted"
	TypeConsumptionPosted    = "consumption.posted"
	TypeConsumptionRemoved   = "consumption.removed"
)

// Event is the envelope written to the reservation and consumption topics.
type Event struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	Code          string    `json:"code,omitempty"`
	GuestID       string    `json:"guest_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func New(eventType, reservationID, actor string) Event {
	return Event{
		Type:          eventType,
		ReservationID: reservationID,
		Actor:         actor,
		OccurredAt:    timezone.Now(),
	}
}

// Publish keys the message by reservation so one stay stays ordered within a partition.
// The database write already committed, so a broker failure is only logged.
func Publish(ctx context.Context, client kafka.Client, topic string, evt Event) {
	message := kafka.Message{Key: evt.ReservationID, Value: evt}

	if err := client.SendMessages(ctx, topic, message); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("type", evt.Type).Str("reservation_id", evt.ReservationID).Msg("failed to publish event")
	}
}
