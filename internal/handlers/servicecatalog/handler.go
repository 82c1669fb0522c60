package servicecatalog

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/servicecatalog/model"
	"miyabi/internal/domains/servicecatalog/model/dto"
	"miyabi/internal/domains/servicecatalog/service"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/validator"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.ServiceCatalog
	otel    otel.Otel
}

func New(service service.ServiceCatalog, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/services", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateService)
		routerGroup.Get("/", handler.GetServices)
		routerGroup.Get("/{id}", handler.GetServiceByID)
		routerGroup.Patch("/{id}", handler.UpdateService)
		routerGroup.Delete("/{id}", handler.DeleteService)
	})
}

// CreateService adds an entry to the services catalog.
// @Summary Create a catalog service
// @Tags Service Catalog
// @Accept json
// @Produce json
// @Param request body dto.CreateServiceRequest true "Service details"
// @Success 201 {object} response.Data[string] "Created service id"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/services [post]
// @Security BearerAuth
func (handler *Handler) CreateService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateService")
	defer scope.End()

	var req dto.CreateServiceRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	id, err := handler.service.Create(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create service")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, id)
}

func serviceFilter(request *http.Request) gDto.FilterGroup {
	query := request.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if name := query.Get(model.FieldServiceName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldServiceName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	if category := query.Get(model.FieldCategory); category != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCategory,
			Operator: gDto.FilterOperatorEq,
			Value:    category,
			Table:    model.TableName,
		})
	}

	if season := query.Get(model.FieldSeason); season != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSeason,
			Operator: gDto.FilterOperatorEq,
			Value:    season,
			Table:    model.TableName,
		})
	}

	if available := shared.ConvertStringToBool(query.Get(model.FieldAvailable)); available != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAvailable,
			Operator: gDto.FilterOperatorEq,
			Value:    *available,
			Table:    model.TableName,
		})
	}

	return filterGroup
}

// GetServices lists the services catalog.
// @Summary Get catalog services
// @Tags Service Catalog
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param service_name query string false "Filter by name"
// @Param category query string false "Filter by category"
// @Param season query string false "Filter by season"
// @Param available query boolean false "Filter by availability"
// @Success 200 {object} response.Data[dto.GetServicesResponse] "List of services"
// @Failure 500 {object} response.Error
// @Router /v1/services [get]
// @Security BearerAuth
func (handler *Handler) GetServices(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetServices")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	services, err := handler.service.GetAll(ctx, queryParams, serviceFilter(request))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get services")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, services)
}

// GetServiceByID retrieves one catalog service.
// @Summary Get a catalog service
// @Tags Service Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Data[dto.ServiceResponse] "Service"
// @Failure 404 {object} response.Error
// @Router /v1/services/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetServiceByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetServiceByID")
	defer scope.End()

	service, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get service by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, service)
}

// UpdateService edits a catalog service.
// @Summary Update a catalog service
// @Tags Service Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body dto.UpdateServiceRequest true "Fields to update"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/services/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateService")
	defer scope.End()

	var req dto.UpdateServiceRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, gDto.CallerFromContext(ctx), req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update service")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Service updated successfully")
}

// DeleteService removes a catalog service that has no consumptions.
// @Summary Delete a catalog service
// @Tags Service Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/services/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteService(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteService")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete service")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Service deleted successfully")
}
