package roomtype

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/roomtype/model"
	"miyabi/internal/domains/roomtype/model/dto"
	"miyabi/internal/domains/roomtype/service"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/validator"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.RoomType
	otel    otel.Otel
}

func New(service service.RoomType, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/room-types", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoomType)
		routerGroup.Get("/", handler.GetRoomTypes)
		routerGroup.Get("/{id}", handler.GetRoomTypeByID)
		routerGroup.Patch("/{id}", handler.UpdateRoomType)
		routerGroup.Delete("/{id}", handler.DeleteRoomType)
	})
}

type roomTypeForm struct {
	name            string
	description     *string
	amenities       *string
	capacity        *model.Capacity
	basePrice       string
	highSeasonPrice string
}

func readRoomTypeForm(request *http.Request) (form roomTypeForm, err error) {
	if err = request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return form, failure.BadRequest(err)
	}

	form.name = request.FormValue("name")
	form.basePrice = request.FormValue("base_price")
	form.highSeasonPrice = request.FormValue("high_season_price")

	if description := request.FormValue("description"); description != "" {
		form.description = &description
	}

	if amenities := request.FormValue("amenities"); amenities != "" {
		form.amenities = &amenities
	}

	if capacity := request.FormValue("capacity_people"); capacity != "" {
		value, err := shared.ConvertStringToInt(capacity)
		if err != nil {
			return form, failure.BadRequestFromString("capacity_people must be a number")
		}

		people := model.Capacity(value)
		form.capacity = &people
	}

	return form, nil
}

// CreateRoomType handles the creation of a new room type.
// @Summary Create a new room type
// @Description Create a room type with its nightly price and an optional image.
// @Tags RoomType
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room type name"
// @Param description formData string false "Description"
// @Param capacity_people formData integer true "Guests the room type sleeps"
// @Param base_price formData string true "Nightly price"
// @Param high_season_price formData string false "High season nightly price"
// @Param amenities formData string false "Amenities"
// @Param image formData file false "Room type image"
// @Success 201 {object} response.Data[string] "Created room type id"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/room-types [post]
// @Security BearerAuth
func (handler *Handler) CreateRoomType(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoomType")
	defer scope.End()

	form, err := readRoomTypeForm(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	req := dto.CreateRoomTypeRequest{
		Name:        form.name,
		Description: form.description,
		Amenities:   form.amenities,
	}

	if form.capacity != nil {
		req.CapacityPeople = *form.capacity
	}

	basePrice, err := shared.ConvertStringToDecimal(form.basePrice)
	if err != nil || basePrice == nil {
		response.WithError(writer, failure.BadRequestFromString("base_price must be a decimal amount"))

		return
	}

	req.BasePrice = *basePrice

	if req.HighSeasonPrice, err = shared.ConvertStringToDecimal(form.highSeasonPrice); err != nil {
		response.WithError(writer, failure.BadRequestFromString("high_season_price must be a decimal amount"))

		return
	}

	file, fileHeader, err := request.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	id, err := handler.service.Create(ctx, gDto.CallerFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room type")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room type created")

	response.WithJSON(writer, http.StatusCreated, id)
}

// GetRoomTypes retrieves room types.
// @Summary Get all room types
// @Tags RoomType
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param capacity query integer false "Minimum capacity"
// @Success 200 {object} response.Data[dto.GetRoomTypesResponse] "List of room types"
// @Failure 500 {object} response.Error
// @Router /v1/room-types [get]
func (handler *Handler) GetRoomTypes(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomTypes")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if name := request.URL.Query().Get(model.FieldName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	if capacity, err := shared.ConvertStringToInt(request.URL.Query().Get("capacity")); err == nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCapacityPeople,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    capacity,
			Table:    model.TableName,
		})
	}

	roomTypes, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room types")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, roomTypes)
}

// GetRoomTypeByID retrieves a room type by its ID.
// @Summary Get a room type by ID
// @Tags RoomType
// @Produce json
// @Param id path string true "Room type ID"
// @Success 200 {object} response.Data[dto.RoomTypeResponse] "Room type details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/room-types/{id} [get]
func (handler *Handler) GetRoomTypeByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomTypeByID")
	defer scope.End()

	roomType, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room type")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, roomType)
}

// UpdateRoomType updates an existing room type.
// @Summary Update a room type by ID
// @Tags RoomType
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room type ID"
// @Param name formData string false "Room type name"
// @Param description formData string false "Description"
// @Param capacity_people formData integer false "Guests the room type sleeps"
// @Param base_price formData string false "Nightly price"
// @Param high_season_price formData string false "High season nightly price"
// @Param amenities formData string false "Amenities"
// @Param image formData file false "Room type image"
// @Success 200 {object} response.Message "Room type updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/room-types/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoomType(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoomType")
	defer scope.End()

	form, err := readRoomTypeForm(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	req := dto.UpdateRoomTypeRequest{
		Name:           form.name,
		Description:    form.description,
		Amenities:      form.amenities,
		CapacityPeople: form.capacity,
	}

	if req.BasePrice, err = shared.ConvertStringToDecimal(form.basePrice); err != nil {
		response.WithError(writer, failure.BadRequestFromString("base_price must be a decimal amount"))

		return
	}

	if req.HighSeasonPrice, err = shared.ConvertStringToDecimal(form.highSeasonPrice); err != nil {
		response.WithError(writer, failure.BadRequestFromString("high_season_price must be a decimal amount"))

		return
	}

	file, fileHeader, err := request.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, gDto.CallerFromContext(ctx), req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room type")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Room type updated successfully")
}

// DeleteRoomType deletes a room type by its ID.
// @Summary Delete a room type by ID
// @Tags RoomType
// @Produce json
// @Param id path string true "Room type ID"
// @Success 200 {object} response.Message "Room type deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/room-types/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoomType(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoomType")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room type")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Room type deleted successfully")
}
