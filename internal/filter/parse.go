package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownKey: ключ критерия не входит в поддерживаемый набор
	ErrUnknownKey = errors.New("unknown filter key")
	// ErrInvalidValue: значение критерия нельзя привести к нужному типу
	ErrInvalidValue = errors.New("invalid filter value")
)

// ParseOptions управляет разбором входной карты критериев
type ParseOptions struct {
	// RejectUnknown: отвергать неизвестные ключи вместо молчаливого пропуска
	RejectUnknown bool
}

// Parse превращает нетипизированную карту (обычно тело JSON-запроса) в список критериев
// null-значения пропускаются; ключи обходятся в отсортированном порядке,
// чтобы ошибки и порядок условий не зависели от порядка обхода map
func Parse(raw map[string]any, opts ParseOptions) (Criteria, error) {
	const op = "filter.Parse"

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	criteria := make(Criteria, 0, len(keys))
	for _, key := range keys {
		value := raw[key]
		if value == nil {
			continue
		}

		var (
			c   Criterion
			err error
		)
		switch key {
		case KeyCustomerID:
			c, err = parseCustomerID(value)
		case KeyOrderDate:
			c, err = parseOrderDate(value)
		case KeyDescription:
			c, err = parseDescription(value)
		case KeyTotalPrice:
			c, err = parseTotalPrice(value)
		default:
			if opts.RejectUnknown {
				return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownKey, key)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %s: %v", op, ErrInvalidValue, key, err)
		}
		criteria = append(criteria, c)
	}

	return criteria, nil
}

func parseCustomerID(value any) (Criterion, error) {
	switch v := value.(type) {
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("not an integer: %s", v)
		}
		return CustomerIDEquals{ID: id}, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("not an integer: %v", v)
		}
		// float64(math.MaxInt64) округляется до 2^63, поэтому граница строгая
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fmt.Errorf("out of int64 range: %v", v)
		}
		return CustomerIDEquals{ID: int64(v)}, nil
	case int:
		return CustomerIDEquals{ID: int64(v)}, nil
	case int64:
		return CustomerIDEquals{ID: v}, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", value)
	}
}

func parseOrderDate(value any) (Criterion, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	date, err := civil.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return OrderDateEquals{Date: date}, nil
}

func parseDescription(value any) (Criterion, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	return DescriptionContains{Text: s}, nil
}

func parseTotalPrice(value any) (Criterion, error) {
	var (
		price decimal.Decimal
		err   error
	)
	switch v := value.(type) {
	case json.Number:
		price, err = decimal.NewFromString(v.String())
	case string:
		price, err = decimal.NewFromString(v)
	case float64:
		price = decimal.NewFromFloat(v)
	case int:
		price = decimal.NewFromInt(int64(v))
	case int64:
		price = decimal.NewFromInt(v)
	case decimal.Decimal:
		price = v
	default:
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	if err != nil {
		return nil, err
	}
	return TotalPriceEquals{Price: price}, nil
}
