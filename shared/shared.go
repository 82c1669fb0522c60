package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	"miyabi/shared/dto"
	"miyabi/shared/timezone"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func ConvertStringToInt(value string) (int, error) {
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("failed to convert %q to int: %w", value, err)
	}

	return intValue, nil
}

// ConvertStringToDecimal returns nil for an empty value.
func ConvertStringToDecimal(value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %q to decimal: %w", value, err)
	}

	return &amount, nil
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero db-tagged fields of a struct into an update map.
// Pointer fields are dereferenced so a pointer to a zero value still updates the column.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		if field.Kind() == reflect.Pointer {
			field = field.Elem()
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins prefix and parts with the cache separator, e.g. room:get:<id>.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), constant.Separator)
}

// BuildCacheKeyWithQuery derives a stable key from the query params and the rendered filter.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	slices.Sort(names)

	var builder strings.Builder

	fmt.Fprintf(&builder, "%d|%d|%s|%s|%s", params.Page, params.Limit, params.SortBy, params.SortDir, where)

	for _, name := range names {
		fmt.Fprintf(&builder, "|%s=%v", name, args[name])
	}

	sum := sha256.Sum256([]byte(builder.String()))

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key stored under prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	pattern := BuildCacheKey(prefix, constant.Asterix)

	if err := redisCache.Clear(ctx, pattern); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("failed to invalidate caches")
	}
}

// IsPqError reports whether err wraps a Postgres error with the given SQLSTATE code.
func IsPqError(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}
