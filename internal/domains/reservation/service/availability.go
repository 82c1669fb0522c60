package service

import (
	"context"
	"fmt"
	"miyabi/internal/domains/reservation/model/dto"
	roomTypeModel "miyabi/internal/domains/roomtype/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	minCalendarYear = 1970
	maxCalendarYear = 9999
)

// UnavailableDates lists the upcoming days on which every room is taken.
func (s *serviceImpl) UnavailableDates(ctx context.Context) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.UnavailableDates")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	today := civilDay(timezone.Now())
	cacheKey := shared.BuildCacheKey(cacheAvailability, "unavailable", today.Format(constant.DayFormat))

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	stays, err := s.stayWindow(ctx, today, today.AddDate(0, 0, s.cfg.Hotel.AvailabilityDays), "")
	if err != nil {
		return nil, err
	}

	res = []string{}
	for _, day := range UnavailableDates(stays, s.cfg.Hotel.TotalRooms) {
		if day >= today.Format(constant.DayFormat) {
			res = append(res, day)
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save unavailable dates to cache")
		}
	}()

	return res, nil
}

// MonthAvailability reports occupancy for every day of a month together with the cheapest nightly rate.
func (s *serviceImpl) MonthAvailability(ctx context.Context, year, month int) (res dto.MonthAvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.MonthAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if month < 1 || month > 12 {
		return res, failure.BadRequestFromString("month must be between 1 and 12")
	}

	if year < minCalendarYear || year > maxCalendarYear {
		return res, failure.BadRequestFromString(fmt.Sprintf("year must be between %d and %d", minCalendarYear, maxCalendarYear))
	}

	cacheKey := shared.BuildCacheKey(cacheAvailability, "month", fmt.Sprintf("%04d-%02d", year, month))

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	stays, err := s.stayWindow(ctx, first, next, "")
	if err != nil {
		return res, err
	}

	minPrice, err := s.cheapestRate(ctx)
	if err != nil {
		return res, err
	}

	occupancy := Occupancy(stays)
	price := minPrice.StringFixed(constant.MoneyDecimals)

	res = dto.MonthAvailabilityResponse{Year: year, Month: month, Days: []dto.DayAvailability{}}

	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		res.Days = append(res.Days, dto.DayAvailability{
			Date:      day.Format(constant.DayFormat),
			Available: occupancy[day] < s.cfg.Hotel.TotalRooms,
			Occupied:  occupancy[day],
			MinPrice:  price,
		})
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save month availability to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) cheapestRate(ctx context.Context) (decimal.Decimal, error) {
	params := gDto.QueryParams{Limit: 1, SortBy: roomTypeModel.FieldBasePrice, SortDir: gDto.SortDirAsc}

	roomTypes, err := s.roomTypeRepo.GetAll(ctx, params, gDto.FilterGroup{}, roomTypeModel.FieldBasePrice)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room types")

		return decimal.Zero, fmt.Errorf("failed to get room types: %w", err)
	}

	if len(roomTypes) == 0 {
		return decimal.Zero, nil
	}

	return roomTypes[0].BasePrice, nil
}
