package service

import (
	"context"
	"fmt"
	guestModel "miyabi/internal/domains/guest/model"
	guestDto "miyabi/internal/domains/guest/model/dto"
	paymentModel "miyabi/internal/domains/payment/model"
	paymentDto "miyabi/internal/domains/payment/model/dto"
	"miyabi/internal/domains/reservation/model"
	"miyabi/internal/domains/reservation/model/dto"
	roomModel "miyabi/internal/domains/room/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const confirmedOnlineObservation = "Reservation confirmed online"

// stayWindow loads the stays that are still active on or after from.
// A non-empty exclude leaves that reservation's own stay out.
func (s *serviceImpl) stayWindow(ctx context.Context, from, until time.Time, exclude string) ([]Stay, error) {
	filters := []any{
		gDto.Filter{Field: model.FieldState, Value: model.StateCancelled, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldDepartureDate, Value: from, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
	}

	if !until.IsZero() {
		filters = append(filters, gDto.Filter{Field: model.FieldEntryDate, Value: until, Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	if exclude != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldID, Value: exclude, Operator: gDto.FilterOperatorNotEq, Table: model.TableName})
	}

	reservations, err := s.repo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd},
		model.FieldEntryDate, model.FieldDepartureDate, model.FieldState)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation stays")

		return nil, fmt.Errorf("failed to get reservation stays: %w", err)
	}

	stays := make([]Stay, len(reservations))
	for i, reservation := range reservations {
		stays[i] = Stay{EntryDate: reservation.EntryDate, DepartureDate: reservation.DepartureDate, State: reservation.State}
	}

	return stays, nil
}

// fullyBooked reports whether any night between entry and departure already fills the hotel.
func (s *serviceImpl) fullyBooked(ctx context.Context, entry, departure time.Time, exclude string) (bool, error) {
	stays, err := s.stayWindow(ctx, entry, departure, exclude)
	if err != nil {
		return false, err
	}

	occupancy := Occupancy(stays)

	for day := civilDay(entry); day.Before(civilDay(departure)); day = day.AddDate(0, 0, 1) {
		if occupancy[day] >= s.cfg.Hotel.TotalRooms {
			return true, nil
		}
	}

	return false, nil
}

func (s *serviceImpl) Quote(ctx context.Context, caller gDto.Caller, req dto.QuoteRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	adults, children := req.Occupants()
	if err = ValidateOccupants(adults, children, s.cfg.Hotel.MaxGroupSize); err != nil {
		return res, err
	}

	entry, departure, err := parseStay(req.EntryDate, req.DepartureDate)
	if err != nil {
		return res, err
	}

	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return res, err
	}

	if err = checkCapacity(room, adults, children); err != nil {
		return res, err
	}

	quote, err := NewQuote(room.BasePrice, entry, departure, s.cfg.Hotel.MaxStayNights)
	if err != nil {
		return res, err
	}

	booked, err := s.fullyBooked(ctx, entry, departure, "")
	if err != nil {
		return res, err
	}

	return dto.QuoteResponse{
		RoomID:           room.ID,
		RoomTypeName:     room.RoomTypeName,
		EntryDate:        entry.Format(constant.DayFormat),
		DepartureDate:    departure.Format(constant.DayFormat),
		Nights:           quote.Nights,
		PricePerNight:    quote.PricePerNight.StringFixed(constant.MoneyDecimals),
		RoomSubtotal:     quote.RoomSubtotal.StringFixed(constant.MoneyDecimals),
		TotalConsumption: quote.TotalConsumption.StringFixed(constant.MoneyDecimals),
		TotalPay:         quote.TotalPay.StringFixed(constant.MoneyDecimals),
		Available:        room.State == roomModel.StateAvailable && !booked,
	}, nil
}

// resolveGuest decides who the reservation is for. Guests book for themselves, staff name the guest.
func resolveGuest(caller gDto.Caller, guestID string) (string, error) {
	if caller.IsGuest() {
		if guestID != constant.Empty && guestID != caller.ID {
			return constant.Empty, failure.Forbidden("guests can only book for themselves")
		}

		return caller.ID, nil
	}

	if guestID == constant.Empty {
		return constant.Empty, failure.BadRequestFromString("guest_id is required")
	}

	return guestID, nil
}

// prepare validates a booking request and prices it into a reservation in the given state.
func (s *serviceImpl) prepare(ctx context.Context, caller gDto.Caller, req dto.CreateReservationRequest, state string) (model.Reservation, error) {
	guestID, err := resolveGuest(caller, req.GuestID)
	if err != nil {
		return model.Reservation{}, err
	}

	adults, children := req.Occupants()
	if err = ValidateOccupants(adults, children, s.cfg.Hotel.MaxGroupSize); err != nil {
		return model.Reservation{}, err
	}

	entry, departure, err := parseStay(req.EntryDate, req.DepartureDate)
	if err != nil {
		return model.Reservation{}, err
	}

	if caller.IsGuest() && entry.Before(civilDay(timezone.Now())) {
		return model.Reservation{}, failure.BadRequestFromString("entry date must not be in the past")
	}

	if err = s.guestExists(ctx, guestID); err != nil {
		return model.Reservation{}, err
	}

	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return model.Reservation{}, err
	}

	if room.State != roomModel.StateAvailable {
		return model.Reservation{}, failure.BadRequestFromString(fmt.Sprintf("room %s is %s", room.RoomNumber, room.State))
	}

	if err = checkCapacity(room, adults, children); err != nil {
		return model.Reservation{}, err
	}

	price := room.BasePrice
	if req.PricePerNight != nil && !caller.IsGuest() {
		price = *req.PricePerNight
	}

	quote, err := NewQuote(price, entry, departure, s.cfg.Hotel.MaxStayNights)
	if err != nil {
		return model.Reservation{}, err
	}

	booked, err := s.fullyBooked(ctx, entry, departure, "")
	if err != nil {
		return model.Reservation{}, err
	}

	if booked {
		return model.Reservation{}, failure.Conflict("the hotel is fully booked for the requested dates")
	}

	code, err := s.codes.Generate(ctx, s.codeTaken)
	if err != nil {
		return model.Reservation{}, err
	}

	return req.ToModel(caller.Name(), code, state, dto.Priced{
		GuestID:          guestID,
		EntryDate:        entry,
		DepartureDate:    departure,
		Nights:           quote.Nights,
		PricePerNight:    quote.PricePerNight,
		RoomSubtotal:     quote.RoomSubtotal,
		TotalConsumption: quote.TotalConsumption,
		TotalPay:         quote.TotalPay,
	}), nil
}

// persist writes the reservation and takes the room out of the inventory within tx.
func (s *serviceImpl) persist(ctx context.Context, tx *sqlx.Tx, caller gDto.Caller, contact *guestDto.ContactDetails, reservation model.Reservation) error {
	if contact != nil && !contact.IsEmpty() {
		fields := shared.TransformFields(*contact, caller.Name())

		err := s.guestRepo.UpdateTx(ctx, tx, fields, shared.FilterByID(reservation.GuestID, guestModel.FieldID, guestModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to update guest contact")

			return fmt.Errorf("failed to update guest contact: %w", err)
		}
	}

	if err := s.repo.InsertTx(ctx, tx, reservation); err != nil {
		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return failure.Conflict("reservation code already exists, try again")
		}

		log.Error().Err(err).Msg("failed to insert reservation")

		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	swapped, err := s.roomRepo.SwapStateTx(ctx, tx, reservation.RoomID, []string{roomModel.StateAvailable}, roomModel.StateReserved, caller.Name())
	if err != nil {
		log.Error().Err(err).Msg("failed to reserve room")

		return fmt.Errorf("failed to reserve room: %w", err)
	}

	if !swapped {
		return failure.Conflict("room was taken by another reservation")
	}

	return nil
}

func (s *serviceImpl) Create(ctx context.Context, caller gDto.Caller, req dto.CreateReservationRequest) (res dto.CreateReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.prepare(ctx, caller, req, model.StatePending)
	if err != nil {
		return res, err
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		return s.persist(ctx, tx, caller, req.Contact, reservation)
	})
	if err != nil {
		return res, err
	}

	s.invalidate(ctx, constant.Empty, true)
	s.publish(ctx, event.TypeReservationCreated, reservation, caller)

	res.FromModel(reservation)

	return res, nil
}

// Confirm books and pays in one step, leaving a paid payment for the full stay.
func (s *serviceImpl) Confirm(ctx context.Context, caller gDto.Caller, req dto.ConfirmReservationRequest) (res dto.ConfirmReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.prepare(ctx, caller, req.CreateReservationRequest, model.StateConfirmed)
	if err != nil {
		return res, err
	}

	observation := confirmedOnlineObservation
	paymentReq := paymentDto.CreatePaymentRequest{
		ReservationID: reservation.ID,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: paymentModel.StatusPaid,
		ReceiptNumber: req.ReceiptNumber,
		Observation:   &observation,
	}
	payment := paymentReq.ToModel(caller.Name(), reservation.TotalPay)

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.persist(ctx, tx, caller, req.Contact, reservation); err != nil {
			return err
		}

		if err := s.paymentRepo.InsertTx(ctx, tx, payment); err != nil {
			log.Error().Err(err).Msg("failed to insert payment")

			return fmt.Errorf("failed to insert payment: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	s.invalidate(ctx, constant.Empty, true)
	s.publish(ctx, event.TypeReservationConfirmed, reservation, caller)

	return dto.ConfirmReservationResponse{
		ReservationID: reservation.ID,
		Code:          reservation.Code,
		PaymentID:     payment.ID,
		TotalPay:      reservation.TotalPay.StringFixed(constant.MoneyDecimals),
	}, nil
}
