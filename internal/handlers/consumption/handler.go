package consumption

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/consumption/model"
	"miyabi/internal/domains/consumption/model/dto"
	"miyabi/internal/domains/consumption/service"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/validator"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Consumption
	otel    otel.Otel
}

func New(service service.Consumption, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/consumptions", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateConsumption)
		routerGroup.Get("/", handler.GetConsumptions)
		routerGroup.Get("/reservation/{reservationID}", handler.GetConsumptionsByReservation)
		routerGroup.Get("/{id}", handler.GetConsumptionByID)
		routerGroup.Delete("/{id}", handler.DeleteConsumption)
	})
}

// CreateConsumption posts a charge against an open reservation.
// @Summary Post a consumption
// @Description The unit price defaults to the catalog price. The reservation totals grow by the subtotal.
// @Tags Consumption
// @Accept json
// @Produce json
// @Param request body dto.CreateConsumptionRequest true "Consumption details"
// @Success 201 {object} response.Data[dto.ConsumptionResponse] "Posted consumption"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/consumptions [post]
// @Security BearerAuth
func (handler *Handler) CreateConsumption(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateConsumption")
	defer scope.End()

	var req dto.CreateConsumptionRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	consumption, err := handler.service.Create(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create consumption")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, consumption)
}

// GetConsumptions lists consumptions.
// @Summary Get consumptions
// @Tags Consumption
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param reservation_id query string false "Filter by reservation"
// @Param service_id query string false "Filter by service"
// @Success 200 {object} response.Data[dto.GetConsumptionsResponse] "List of consumptions"
// @Failure 500 {object} response.Error
// @Router /v1/consumptions [get]
// @Security BearerAuth
func (handler *Handler) GetConsumptions(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConsumptions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	query := request.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldReservationID, model.FieldServiceID} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	consumptions, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get consumptions")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consumptions)
}

// GetConsumptionsByReservation lists the charges of one stay in posting order.
// @Summary Get consumptions of a reservation
// @Tags Consumption
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.GetConsumptionsResponse] "Consumptions"
// @Failure 404 {object} response.Error
// @Router /v1/consumptions/reservation/{reservationID} [get]
// @Security BearerAuth
func (handler *Handler) GetConsumptionsByReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConsumptionsByReservation")
	defer scope.End()

	consumptions, err := handler.service.GetByReservation(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamReservationID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get consumptions by reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consumptions)
}

// GetConsumptionByID retrieves one consumption.
// @Summary Get a consumption
// @Tags Consumption
// @Produce json
// @Param id path string true "Consumption ID"
// @Success 200 {object} response.Data[dto.ConsumptionResponse] "Consumption"
// @Failure 404 {object} response.Error
// @Router /v1/consumptions/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetConsumptionByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConsumptionByID")
	defer scope.End()

	consumption, err := handler.service.Get(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get consumption by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consumption)
}

// DeleteConsumption voids a charge and takes it back out of the reservation totals.
// @Summary Delete a consumption
// @Tags Consumption
// @Produce json
// @Param id path string true "Consumption ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/consumptions/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteConsumption(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteConsumption")
	defer scope.End()

	if err := handler.service.Delete(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete consumption")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Consumption deleted successfully")
}
