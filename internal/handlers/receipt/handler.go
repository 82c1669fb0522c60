package receipt

import (
	"miyabi/infras/otel"
	"miyabi/internal/domains/receipt/service"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Receipt
	otel    otel.Otel
}

func New(service service.Receipt, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/receipts", func(routerGroup chi.Router) {
		routerGroup.Get("/{reservationID}", handler.GetReceipt)
		routerGroup.Post("/{reservationID}/archive", handler.ArchiveReceipt)
	})
}

// GetReceipt returns the itemised receipt of a reservation.
// @Summary Get a receipt
// @Description The stay comes first, followed by consumptions in posting order. Guests only see their own.
// @Tags Receipt
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReceiptResponse] "Receipt"
// @Failure 404 {object} response.Error
// @Router /v1/receipts/{reservationID} [get]
// @Security BearerAuth
func (handler *Handler) GetReceipt(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReceipt")
	defer scope.End()

	receipt, err := handler.service.Build(ctx, gDto.CallerFromContext(ctx), chi.URLParam(request, constant.RequestParamReservationID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build receipt")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, receipt)
}

// ArchiveReceipt stores the receipt in object storage for the PDF renderer.
// @Summary Archive a receipt
// @Tags Receipt
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 201 {object} response.Data[dto.ArchiveResponse] "Archived receipt location"
// @Failure 404 {object} response.Error
// @Router /v1/receipts/{reservationID}/archive [post]
// @Security BearerAuth
func (handler *Handler) ArchiveReceipt(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ArchiveReceipt")
	defer scope.End()

	archived, err := handler.service.Archive(ctx, chi.URLParam(request, constant.RequestParamReservationID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to archive receipt")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, archived)
}
