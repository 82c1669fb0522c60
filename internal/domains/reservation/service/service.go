package service

import (
	"context"
	"fmt"
	"miyabi/config"
	"miyabi/infras/kafka"
	"miyabi/infras/otel"
	guestModel "miyabi/internal/domains/guest/model"
	guestRepo "miyabi/internal/domains/guest/repository"
	paymentRepo "miyabi/internal/domains/payment/repository"
	"miyabi/internal/domains/reservation/model"
	"miyabi/internal/domains/reservation/model/dto"
	"miyabi/internal/domains/reservation/repository"
	roomModel "miyabi/internal/domains/room/model"
	roomRepo "miyabi/internal/domains/room/repository"
	roomTypeRepo "miyabi/internal/domains/roomtype/repository"
	"miyabi/shared"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	gRepo "miyabi/shared/repository"
	"miyabi/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
	cacheAvailability      = "reservation:availability"

	// rooms expose their operational state and payments their reservation
	cacheRoom    = "room"
	cachePayment = "payment"
)

type Reservation interface {
	Quote(ctx context.Context, caller gDto.Caller, req dto.QuoteRequest) (dto.QuoteResponse, error)
	Create(ctx context.Context, caller gDto.Caller, req dto.CreateReservationRequest) (dto.CreateReservationResponse, error)
	Confirm(ctx context.Context, caller gDto.Caller, req dto.ConfirmReservationRequest) (dto.ConfirmReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, caller gDto.Caller, id string) (dto.ReservationResponse, error)
	GetByCode(ctx context.Context, caller gDto.Caller, code string) (dto.ReservationResponse, error)
	GetMine(ctx context.Context, caller gDto.Caller, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	UpdateState(ctx context.Context, caller gDto.Caller, req dto.UpdateStateRequest, id string) error
	CheckIn(ctx context.Context, caller gDto.Caller, id string) error
	Update(ctx context.Context, caller gDto.Caller, req dto.UpdateReservationRequest, id string) error
	Delete(ctx context.Context, caller gDto.Caller, id string) error
	UnavailableDates(ctx context.Context) ([]string, error)
	MonthAvailability(ctx context.Context, year, month int) (dto.MonthAvailabilityResponse, error)
}

type serviceImpl struct {
	repo         repository.Reservation
	roomRepo     roomRepo.Room
	roomTypeRepo roomTypeRepo.RoomType
	guestRepo    guestRepo.Guest
	paymentRepo  paymentRepo.Payment
	transactor   gRepo.Transactor
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	kafka        kafka.Client
	codes        CodeGenerator
}

func New(
	repo repository.Reservation,
	roomRepo roomRepo.Room,
	roomTypeRepo roomTypeRepo.RoomType,
	guestRepo guestRepo.Guest,
	paymentRepo paymentRepo.Payment,
	transactor gRepo.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	kafka kafka.Client,
) Reservation {
	return &serviceImpl{
		repo:         repo,
		roomRepo:     roomRepo,
		roomTypeRepo: roomTypeRepo,
		guestRepo:    guestRepo,
		paymentRepo:  paymentRepo,
		transactor:   transactor,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		kafka:        kafka,
		codes:        NewCodeGenerator(cfg.Hotel.CodePrefix, cfg.Hotel.CodeMaxRetries, timezone.Now),
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string, roomsChanged bool) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete reservation cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
		shared.InvalidateCaches(c, s.cache, cacheAvailability)
		shared.InvalidateCaches(c, s.cache, cachePayment)

		if roomsChanged {
			shared.InvalidateCaches(c, s.cache, cacheRoom)
		}
	}()
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, reservation model.Reservation, caller gDto.Caller) {
	evt := event.New(eventType, reservation.ID, caller.Name())
	evt.Code = reservation.Code
	evt.GuestID = reservation.GuestID
	evt.Amount = reservation.TotalPay.StringFixed(constant.MoneyDecimals)

	event.Publish(ctx, s.kafka, s.cfg.Kafka.Topics.Reservation, evt)
}

func (s *serviceImpl) load(ctx context.Context, filter gDto.FilterGroup) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found")
	}

	return reservation, nil
}

func (s *serviceImpl) loadRoom(ctx context.Context, id string) (roomModel.Room, error) {
	room, err := s.roomRepo.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found")
	}

	return room, nil
}

func (s *serviceImpl) guestExists(ctx context.Context, id string) error {
	exist, err := s.guestRepo.Exist(ctx, shared.FilterByID(id, guestModel.FieldID, guestModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if guest exists")

		return fmt.Errorf("failed to check if guest exists: %w", err)
	}

	if !exist {
		return failure.NotFound("guest not found")
	}

	return nil
}

func (s *serviceImpl) codeTaken(ctx context.Context, code string) (bool, error) {
	return s.repo.Exist(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldCode, Value: code, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
}

// visibleTo hides other guests' reservations behind a not found.
func visibleTo(caller gDto.Caller, guestID string) bool {
	return !caller.IsGuest() || caller.ID == guestID
}

func checkCapacity(room roomModel.Room, adults, children int) error {
	if room.CapacityPeople > 0 && adults+children > room.CapacityPeople {
		return failure.BadRequestFromString(fmt.Sprintf("room %s sleeps at most %d guests", room.RoomNumber, room.CapacityPeople))
	}

	return nil
}

func parseStay(entryDate, departureDate string) (entry, departure time.Time, err error) {
	if entry, err = ParseDay(entryDate); err != nil {
		return entry, departure, err
	}

	departure, err = ParseDay(departureDate)

	return entry, departure, err
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, caller gDto.Caller, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		reservation, err := s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			return res, err
		}

		res.FromModel(reservation)

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save reservation to cache")
			}
		}()
	}

	if !visibleTo(caller, res.GuestID) {
		return dto.ReservationResponse{}, failure.NotFound("reservation not found")
	}

	return res, nil
}

func (s *serviceImpl) GetByCode(ctx context.Context, caller gDto.Caller, code string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetByCode")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.load(ctx, shared.FilterByID(code, model.FieldCode, model.TableName))
	if err != nil {
		return res, err
	}

	if !visibleTo(caller, reservation.GuestID) {
		return res, failure.NotFound("reservation not found")
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, caller gDto.Caller, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	if !caller.IsGuest() {
		return res, failure.Forbidden("only guests have personal reservations")
	}

	return s.GetAll(ctx, req, shared.FilterByID(caller.ID, model.FieldGuestID, model.TableName))
}
