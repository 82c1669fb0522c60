package reservation

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/reservation/model"
	"miyabi/internal/domains/reservation/model/dto"
	"miyabi/internal/domains/reservation/service"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"
	"miyabi/shared/validator"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryYear  = "year"
	queryMonth = "month"
)

type Handler struct {
	service service.Reservation
	otel    otel.Otel
}

func New(service service.Reservation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReservation)
		routerGroup.Post("/quote", handler.QuoteReservation)
		routerGroup.Post("/confirm", handler.ConfirmReservation)
		routerGroup.Get("/", handler.GetReservations)
		routerGroup.Get("/me", handler.GetMyReservations)
		routerGroup.Get("/unavailable-dates", handler.GetUnavailableDates)
		routerGroup.Get("/availability", handler.GetMonthAvailability)
		routerGroup.Get("/code/{code}", handler.GetReservationByCode)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Patch("/{id}", handler.UpdateReservation)
		routerGroup.Patch("/{id}/state", handler.UpdateReservationState)
		routerGroup.Post("/{id}/check-in", handler.CheckIn)
		routerGroup.Delete("/{id}", handler.DeleteReservation)
	})
}

// QuoteReservation prices a stay without booking it.
// @Summary Quote a stay
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Room and dates"
// @Success 200 {object} response.Data[dto.QuoteResponse] "Price breakdown"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/reservations/quote [post]
// @Security BearerAuth
func (handler *Handler) QuoteReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".QuoteReservation")
	defer scope.End()

	var req dto.QuoteRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	quote, err := handler.service.Quote(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to quote reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, quote)
}

// CreateReservation books a room in Pending state.
// @Summary Create a reservation
// @Description Guests book for themselves. Staff must name the guest and may override the nightly rate.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Reservation details"
// @Success 201 {object} response.Data[dto.CreateReservationResponse] "Created reservation"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) CreateReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	var req dto.CreateReservationRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.Create(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, reservation)
}

// ConfirmReservation books a room and records its payment in one step.
// @Summary Book and pay
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.ConfirmReservationRequest true "Reservation and payment details"
// @Success 201 {object} response.Data[dto.ConfirmReservationResponse] "Confirmed reservation"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmReservation")
	defer scope.End()

	var req dto.ConfirmReservationRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.Confirm(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, reservation)
}

// GetReservations lists reservations.
// @Summary Get reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param code query string false "Filter by code"
// @Param state query string false "Filter by state" Enums(Pending, Confirmed, Cancelled, Completed)
// @Param guest_id query string false "Filter by guest"
// @Param room_id query string false "Filter by room"
// @Param entry_date query string false "Stays starting on or after this day (YYYY-MM-DD)"
// @Param departure_date query string false "Stays ending on or before this day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservations"
// @Failure 500 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup, err := reservationFilters(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	reservations, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, reservations)
}

func reservationFilters(request *http.Request) (gDto.FilterGroup, error) {
	query := request.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldCode, model.FieldState, model.FieldGuestID, model.FieldRoomID} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	ranges := []struct {
		field    string
		operator string
	}{
		{field: model.FieldEntryDate, operator: gDto.FilterOperatorGreaterEq},
		{field: model.FieldDepartureDate, operator: gDto.FilterOperatorLessEq},
	}

	for _, r := range ranges {
		value := query.Get(r.field)
		if value == "" {
			continue
		}

		day, err := service.ParseDay(value)
		if err != nil {
			return filterGroup, err
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    r.field,
			Operator: r.operator,
			Value:    day,
			Table:    model.TableName,
		})
	}

	return filterGroup, nil
}

// GetMyReservations lists the caller's own reservations.
// @Summary Get my reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservations"
// @Failure 403 {object} response.Error
// @Router /v1/reservations/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	reservations, err := handler.service.GetMine(ctx, gDto.CallerFromContext(ctx), queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get own reservations")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, reservations)
}

// GetUnavailableDates lists upcoming days with no room left.
// @Summary Get fully booked days
// @Tags Reservation
// @Produce json
// @Success 200 {object} response.Data[[]string] "Days as YYYY-MM-DD"
// @Router /v1/reservations/unavailable-dates [get]
func (handler *Handler) GetUnavailableDates(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUnavailableDates")
	defer scope.End()

	dates, err := handler.service.UnavailableDates(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get unavailable dates")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, dates)
}

// GetMonthAvailability returns the occupancy calendar of a month.
// @Summary Get month availability
// @Description Defaults to the current month.
// @Tags Reservation
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} response.Data[dto.MonthAvailabilityResponse] "Calendar"
// @Failure 400 {object} response.Error
// @Router /v1/reservations/availability [get]
func (handler *Handler) GetMonthAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMonthAvailability")
	defer scope.End()

	now := timezone.Now()
	year, month := now.Year(), int(now.Month())

	query := request.URL.Query()

	for name, target := range map[string]*int{queryYear: &year, queryMonth: &month} {
		value := query.Get(name)
		if value == "" {
			continue
		}

		parsed, err := shared.ConvertStringToInt(value)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, failure.BadRequestFromString(name+" must be a number"))

			return
		}

		*target = parsed
	}

	availability, err := handler.service.MonthAvailability(ctx, year, month)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get month availability")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, availability)
}

// GetReservationByCode looks a reservation up by its public code.
// @Summary Get a reservation by code
// @Tags Reservation
// @Produce json
// @Param code path string true "Reservation code"
// @Success 200 {object} response.Data[dto.ReservationResponse] "Reservation"
// @Failure 404 {object} response.Error
// @Router /v1/reservations/code/{code} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByCode(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByCode")
	defer scope.End()

	reservation, err := handler.service.GetByCode(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamCode))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation by code")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, reservation)
}

// GetReservationByID retrieves one reservation.
// @Summary Get a reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse] "Reservation"
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	reservation, err := handler.service.Get(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, reservation)
}

// UpdateReservation re-prices a stay after staff change its room, dates or guest.
// @Summary Update a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.UpdateReservationRequest true "New stay details"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateReservation")
	defer scope.End()

	var req dto.UpdateReservationRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, gDto.CallerFromContext(ctx), req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update reservation")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Reservation updated successfully")
}

// UpdateReservationState moves a reservation through its lifecycle.
// @Summary Change reservation state
// @Description Guests may only cancel their own reservations.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.UpdateStateRequest true "Target state"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/state [patch]
// @Security BearerAuth
func (handler *Handler) UpdateReservationState(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateReservationState")
	defer scope.End()

	var req dto.UpdateStateRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.UpdateState(ctx, gDto.CallerFromContext(ctx), req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update reservation state")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Reservation state updated successfully")
}

// CheckIn records the guest's arrival.
// @Summary Check in
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/check-in [post]
// @Security BearerAuth
func (handler *Handler) CheckIn(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckIn")
	defer scope.End()

	if err := handler.service.CheckIn(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check in")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Guest checked in successfully")
}

// DeleteReservation removes a reservation with its consumptions and payment.
// @Summary Delete a reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReservation")
	defer scope.End()

	if err := handler.service.Delete(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete reservation")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Reservation deleted successfully")
}
