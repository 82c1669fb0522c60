package accesslog

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/accesslog/model"
	"miyabi/internal/domains/accesslog/service"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryParamFrom = "from"
	queryParamTo   = "to"
)

type Handler struct {
	service service.AccessLog
	otel    otel.Otel
}

func New(service service.AccessLog, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/access-logs", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAccessLogs)
	})
}

// GetAccessLogs lists login events, newest first.
// @Summary Get access logs
// @Tags AccessLog
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param user_type query string false "Filter by user type" Enums(staff, guest)
// @Param user_id query string false "Filter by staff user"
// @Param guest_id query string false "Filter by guest"
// @Param from query string false "Accessed on or after this day (YYYY-MM-DD)"
// @Param to query string false "Accessed before the end of this day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetAccessLogsResponse] "List of access logs"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/access-logs [get]
// @Security BearerAuth
func (handler *Handler) GetAccessLogs(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAccessLogs")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if queryParams.SortBy == "" {
		queryParams.SortBy = model.FieldAccessedAt
		queryParams.SortDir = gDto.SortDirDesc
	}

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldUserType, model.FieldUserID, model.FieldGuestID} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	if from := query.Get(queryParamFrom); from != "" {
		day, err := timezone.ParseDate(from)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("from must be a date in YYYY-MM-DD format"))

			return
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAccessedAt,
			ArgName:  queryParamFrom,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    day,
			Table:    model.TableName,
		})
	}

	if to := query.Get(queryParamTo); to != "" {
		day, err := timezone.ParseDate(to)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("to must be a date in YYYY-MM-DD format"))

			return
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAccessedAt,
			ArgName:  queryParamTo,
			Operator: gDto.FilterOperatorLessEq,
			Value:    day.AddDate(0, 0, 1).Add(-1),
			Table:    model.TableName,
		})
	}

	logs, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get access logs")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, logs)
}
