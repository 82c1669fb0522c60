package service

import (
	"context"
	"fmt"
	"miyabi/internal/domains/reservation/model"
	"miyabi/internal/domains/reservation/model/dto"
	roomModel "miyabi/internal/domains/room/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var stateEvents = map[string]string{
	model.StateConfirmed: event.TypeReservationConfirmed,
	model.StateCancelled: event.TypeReservationCancelled,
	model.StateCompleted: event.TypeReservationCompleted,
}

func stamp(caller gDto.Caller, fields map[string]any) map[string]any {
	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = caller.Name()

	return fields
}

// releaseRoom hands the room back once its reservation stops holding it.
// A room already moved on by staff is left alone.
func (s *serviceImpl) releaseRoom(ctx context.Context, tx *sqlx.Tx, caller gDto.Caller, roomID string) error {
	released, err := s.roomRepo.SwapStateTx(ctx, tx, roomID, []string{roomModel.StateReserved, roomModel.StateOccupied}, roomModel.StateAvailable, caller.Name())
	if err != nil {
		log.Error().Err(err).Msg("failed to release room")

		return fmt.Errorf("failed to release room: %w", err)
	}

	if !released {
		log.Warn().Str("room_id", roomID).Msg("room was not held by the reservation, state left unchanged")
	}

	return nil
}

func (s *serviceImpl) UpdateState(ctx context.Context, caller gDto.Caller, req dto.UpdateStateRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.UpdateState")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return err
	}

	if caller.IsGuest() {
		if reservation.GuestID != caller.ID {
			return failure.NotFound("reservation not found")
		}

		if req.State != model.StateCancelled {
			return failure.Forbidden("guests can only cancel their reservations")
		}
	}

	if !reservation.CanMoveTo(req.State) {
		return failure.BadRequestFromString(fmt.Sprintf("cannot move a %s reservation to %s", reservation.State, req.State))
	}

	fields := stamp(caller, map[string]any{model.FieldState: req.State})

	if req.State == model.StateCompleted {
		fields[model.FieldCheckoutAt] = timezone.Now()
		fields[model.FieldCheckoutBy] = caller.Name()
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		swapped, err := s.repo.SwapStateTx(ctx, tx, id, reservation.State, fields)
		if err != nil {
			log.Error().Err(err).Msg("failed to update reservation state")

			return fmt.Errorf("failed to update reservation state: %w", err)
		}

		if !swapped {
			return failure.Conflict("reservation state changed concurrently, reload and retry")
		}

		if model.ReleasesRoom(req.State) {
			return s.releaseRoom(ctx, tx, caller, reservation.RoomID)
		}

		return nil
	})
	if err != nil {
		return err
	}

	reservation.State = req.State

	s.invalidate(ctx, id, model.ReleasesRoom(req.State))
	s.publish(ctx, stateEvents[req.State], reservation, caller)

	return nil
}

// CheckIn records the guest's arrival and marks the room occupied.
func (s *serviceImpl) CheckIn(ctx context.Context, caller gDto.Caller, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.CheckIn")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return err
	}

	if reservation.State != model.StateConfirmed {
		return failure.BadRequestFromString("only confirmed reservations can check in")
	}

	if reservation.CheckinAt != nil {
		return failure.BadRequestFromString("reservation is already checked in")
	}

	fields := stamp(caller, map[string]any{
		model.FieldCheckinAt: timezone.Now(),
		model.FieldCheckinBy: caller.Name(),
	})

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		swapped, err := s.repo.SwapStateTx(ctx, tx, id, model.StateConfirmed, fields)
		if err != nil {
			log.Error().Err(err).Msg("failed to check in reservation")

			return fmt.Errorf("failed to check in reservation: %w", err)
		}

		if !swapped {
			return failure.Conflict("reservation state changed concurrently, reload and retry")
		}

		occupied, err := s.roomRepo.SwapStateTx(ctx, tx, reservation.RoomID, []string{roomModel.StateReserved}, roomModel.StateOccupied, caller.Name())
		if err != nil {
			log.Error().Err(err).Msg("failed to occupy room")

			return fmt.Errorf("failed to occupy room: %w", err)
		}

		if !occupied {
			return failure.Conflict("room is not reserved for this stay")
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id, true)
	s.publish(ctx, event.TypeReservationCheckedIn, reservation, caller)

	return nil
}

// Update lets staff move a stay to other dates, another room or another guest.
// Totals are recomputed on top of the consumption already posted.
func (s *serviceImpl) Update(ctx context.Context, caller gDto.Caller, req dto.UpdateReservationRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return err
	}

	if reservation.IsClosed() {
		return failure.BadRequestFromString(fmt.Sprintf("a %s reservation cannot be edited", reservation.State))
	}

	if err = ValidateOccupants(req.NumAdults, req.NumChildren, s.cfg.Hotel.MaxGroupSize); err != nil {
		return err
	}

	entry, departure, err := parseStay(req.EntryDate, req.DepartureDate)
	if err != nil {
		return err
	}

	if err = s.guestExists(ctx, req.GuestID); err != nil {
		return err
	}

	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return err
	}

	moving := room.ID != reservation.RoomID
	if moving && room.State != roomModel.StateAvailable {
		return failure.BadRequestFromString(fmt.Sprintf("room %s is %s", room.RoomNumber, room.State))
	}

	if err = checkCapacity(room, req.NumAdults, req.NumChildren); err != nil {
		return err
	}

	quote, err := NewQuote(room.BasePrice, entry, departure, s.cfg.Hotel.MaxStayNights)
	if err != nil {
		return err
	}

	if !entry.Equal(civilDay(reservation.EntryDate)) || !departure.Equal(civilDay(reservation.DepartureDate)) {
		booked, err := s.fullyBooked(ctx, entry, departure, reservation.ID)
		if err != nil {
			return err
		}

		if booked {
			return failure.Conflict("the hotel is fully booked for the requested dates")
		}
	}

	target := roomModel.StateReserved
	if reservation.CheckinAt != nil {
		target = roomModel.StateOccupied
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName), model.FieldTotalConsumption)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock reservation")

			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		fields := stamp(caller, map[string]any{
			model.FieldRoomID:        room.ID,
			model.FieldGuestID:       req.GuestID,
			model.FieldEntryDate:     entry,
			model.FieldDepartureDate: departure,
			model.FieldNumberNights:  quote.Nights,
			model.FieldPricePerNight: quote.PricePerNight,
			model.FieldRoomSubtotal:  quote.RoomSubtotal,
			model.FieldTotalPay:      quote.RoomSubtotal.Add(current.TotalConsumption),
			model.FieldNumAdults:     req.NumAdults,
			model.FieldNumChildren:   req.NumChildren,
		})

		if req.Observations != nil {
			fields[model.FieldObservations] = *req.Observations
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to update reservation")

			return fmt.Errorf("failed to update reservation: %w", err)
		}

		if !moving {
			return nil
		}

		taken, err := s.roomRepo.SwapStateTx(ctx, tx, room.ID, []string{roomModel.StateAvailable}, target, caller.Name())
		if err != nil {
			log.Error().Err(err).Msg("failed to reserve room")

			return fmt.Errorf("failed to reserve room: %w", err)
		}

		if !taken {
			return failure.Conflict("room was taken by another reservation")
		}

		return s.releaseRoom(ctx, tx, caller, reservation.RoomID)
	})
	if err != nil {
		return err
	}

	reservation.GuestID = req.GuestID

	s.invalidate(ctx, id, moving)
	s.publish(ctx, event.TypeReservationUpdated, reservation, caller)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, caller gDto.Caller, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return err
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.DeleteTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			if shared.IsPqError(err, constant.PqErrorCodeFkViolation) {
				return failure.Conflict("reservation is still referenced")
			}

			log.Error().Err(err).Msg("failed to delete reservation")

			return fmt.Errorf("failed to delete reservation: %w", err)
		}

		if reservation.IsClosed() {
			return nil
		}

		return s.releaseRoom(ctx, tx, caller, reservation.RoomID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id, !reservation.IsClosed())
	s.publish(ctx, event.TypeReservationDeleted, reservation, caller)

	return nil
}
