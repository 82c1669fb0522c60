package payment

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/payment/model"
	"miyabi/internal/domains/payment/model/dto"
	"miyabi/internal/domains/payment/service"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/validator"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePayment)
		routerGroup.Get("/", handler.GetPayments)
		routerGroup.Get("/reservation/{reservationID}", handler.GetPaymentByReservation)
		routerGroup.Get("/{id}", handler.GetPaymentByID)
		routerGroup.Patch("/{id}", handler.UpdatePayment)
		routerGroup.Delete("/{id}", handler.DeletePayment)
	})
}

// CreatePayment registers the payment of a reservation.
// @Summary Create a payment
// @Description Charge a reservation. The amount defaults to the reservation total.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} response.Data[string] "Created payment id"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/payments [post]
// @Security BearerAuth
func (handler *Handler) CreatePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePayment")
	defer scope.End()

	var req dto.CreatePaymentRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	id, err := handler.service.Create(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create payment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, id)
}

// GetPayments lists payments.
// @Summary Get payments
// @Tags Payment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param reservation_id query string false "Filter by reservation"
// @Param payment_status query string false "Filter by status" Enums(Paid, Pending, Refunded)
// @Param payment_method query string false "Filter by method"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse] "List of payments"
// @Failure 500 {object} response.Error
// @Router /v1/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPayments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	query := request.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldReservationID, model.FieldPaymentStatus, model.FieldPaymentMethod} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	payments, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payments")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, payments)
}

// GetPaymentByReservation returns the payment of a reservation.
// @Summary Get the payment of a reservation
// @Description Guests only see payments of their own reservations.
// @Tags Payment
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Payment"
// @Failure 404 {object} response.Error
// @Router /v1/payments/reservation/{reservationID} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByReservation")
	defer scope.End()

	payment, err := handler.service.GetByReservation(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamReservationID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment by reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, payment)
}

// GetPaymentByID retrieves one payment.
// @Summary Get a payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Payment"
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByID")
	defer scope.End()

	payment, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, payment)
}

// UpdatePayment edits method, status or receipt number of a payment.
// @Summary Update a payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.UpdatePaymentRequest true "Fields to update"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePayment")
	defer scope.End()

	var req dto.UpdatePaymentRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, gDto.CallerFromContext(ctx), req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update payment")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Payment updated successfully")
}

// DeletePayment removes a payment.
// @Summary Delete a payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePayment")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete payment")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Payment deleted successfully")
}
