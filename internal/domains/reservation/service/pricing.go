package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"miyabi/internal/domains/reservation/model"
	"miyabi/shared/constant"
	"miyabi/shared/failure"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	secondsPerDay = 86400
	codeMinSuffix = 1000
	codeSuffixes  = 9000
)

// Quote is the price of a stay before any consumption is posted.
type Quote struct {
	Nights           int
	PricePerNight    decimal.Decimal
	RoomSubtotal     decimal.Decimal
	TotalConsumption decimal.Decimal
	TotalPay         decimal.Decimal
}

// Stay is the date range an active reservation occupies, departure exclusive.
type Stay struct {
	EntryDate     time.Time
	DepartureDate time.Time
	State         string
}

// civilDay drops the clock and the zone, so DST transitions never shorten a night.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(value string) (time.Time, error) {
	day, err := time.Parse(constant.DayFormat, value)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}

	return day, nil
}

func Nights(entry, departure time.Time) (int, error) {
	from := civilDay(entry)
	to := civilDay(departure)

	if !to.After(from) {
		return 0, failure.BadRequestFromString("departure date must be after entry date")
	}

	return int((to.Unix() - from.Unix()) / secondsPerDay), nil
}

// NewQuote prices a stay. maxNights <= 0 leaves the length unbounded.
func NewQuote(pricePerNight decimal.Decimal, entry, departure time.Time, maxNights int) (Quote, error) {
	if pricePerNight.IsNegative() {
		return Quote{}, failure.BadRequestFromString("price per night must not be negative")
	}

	nights, err := Nights(entry, departure)
	if err != nil {
		return Quote{}, err
	}

	if maxNights > 0 && nights > maxNights {
		return Quote{}, failure.BadRequestFromString(fmt.Sprintf("a stay allows at most %d nights", maxNights))
	}

	price := pricePerNight.Round(constant.MoneyDecimals)
	subtotal := price.Mul(decimal.NewFromInt(int64(nights))).Round(constant.MoneyDecimals)

	return Quote{
		Nights:           nights,
		PricePerNight:    price,
		RoomSubtotal:     subtotal,
		TotalConsumption: decimal.Zero,
		TotalPay:         subtotal,
	}, nil
}

func ValidateOccupants(adults, children, maxGroupSize int) error {
	if adults < 1 {
		return failure.BadRequestFromString("at least one adult is required")
	}

	if children < 0 {
		return failure.BadRequestFromString("children must not be negative")
	}

	if adults+children > maxGroupSize {
		return failure.BadRequestFromString(fmt.Sprintf("a reservation allows at most %d occupants", maxGroupSize))
	}

	return nil
}

// CodeGenerator issues reservation codes shaped <prefix>-<year>-<4 digits>.
type CodeGenerator struct {
	Prefix     string
	MaxRetries int
	Now        func() time.Time
	Suffix     func() (int, error)
}

func NewCodeGenerator(prefix string, maxRetries int, now func() time.Time) CodeGenerator {
	return CodeGenerator{
		Prefix:     prefix,
		MaxRetries: maxRetries,
		Now:        now,
		Suffix:     randomSuffix,
	}
}

func randomSuffix() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSuffixes))
	if err != nil {
		return 0, fmt.Errorf("failed to draw code suffix: %w", err)
	}

	return codeMinSuffix + int(n.Int64()), nil
}

// Generate draws candidates until exists reports a free one or MaxRetries is spent.
func (g CodeGenerator) Generate(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	year := g.Now().Year()

	for range max(g.MaxRetries, 1) {
		suffix, err := g.Suffix()
		if err != nil {
			return "", err
		}

		code := fmt.Sprintf("%s-%d-%04d", g.Prefix, year, suffix)

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check reservation code: %w", err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", failure.Conflict("could not allocate a unique reservation code, try again")
}

// Occupancy counts, per calendar day, the stays that are not cancelled.
func Occupancy(stays []Stay) map[time.Time]int {
	counts := make(map[time.Time]int)

	for _, stay := range stays {
		if stay.State == model.StateCancelled {
			continue
		}

		last := civilDay(stay.DepartureDate)
		for day := civilDay(stay.EntryDate); day.Before(last); day = day.AddDate(0, 0, 1) {
			counts[day]++
		}
	}

	return counts
}

// UnavailableDates lists the days where occupancy reaches totalRooms.
func UnavailableDates(stays []Stay, totalRooms int) []string {
	dates := []string{}

	for day, count := range Occupancy(stays) {
		if count >= totalRooms {
			dates = append(dates, day.Format(constant.DayFormat))
		}
	}

	slices.Sort(dates)

	return dates
}
