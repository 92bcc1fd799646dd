package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/domain"
)

// accessor returns the comparable value of a named field; nil means unset.
type accessor[T any] func(T) any

var hotelFields = map[string]accessor[domain.Hotel]{
	"id":          func(h domain.Hotel) any { return h.ID },
	"user":        func(h domain.Hotel) any { return h.UserID },
	"name":        func(h domain.Hotel) any { return h.Name },
	"description": func(h domain.Hotel) any { return h.Description },
	"averageCost": func(h domain.Hotel) any {
		if h.AverageCost == nil {
			return nil
		}
		return *h.AverageCost
	},
	"averageRating": func(h domain.Hotel) any {
		if h.AverageRating == nil {
			return nil
		}
		return *h.AverageRating
	},
	"location.zipcode": func(h domain.Hotel) any {
		if h.Location == nil {
			return nil
		}
		return h.Location.Zipcode
	},
	"createdAt": func(h domain.Hotel) any { return h.CreatedAt },
}

var roomFields = map[string]accessor[domain.Room]{
	"id":               func(r domain.Room) any { return r.ID },
	"hotel":            func(r domain.Room) any { return r.HotelID },
	"user":             func(r domain.Room) any { return r.UserID },
	"title":            func(r domain.Room) any { return r.Title },
	"available":        func(r domain.Room) any { return r.Available },
	"cost":             func(r domain.Room) any { return r.Cost },
	"minimumOccupancy": func(r domain.Room) any { return r.MinimumOccupancy },
	"roomType":         func(r domain.Room) any { return r.RoomType },
	"createdAt":        func(r domain.Room) any { return r.CreatedAt },
}

var reviewFields = map[string]accessor[domain.Review]{
	"id":        func(r domain.Review) any { return r.ID },
	"hotel":     func(r domain.Review) any { return r.HotelID },
	"user":      func(r domain.Review) any { return r.UserID },
	"title":     func(r domain.Review) any { return r.Title },
	"rating":    func(r domain.Review) any { return r.Rating },
	"createdAt": func(r domain.Review) any { return r.CreatedAt },
}

// list applies filters, sort and paging the way the SQL store does.
// Filters on fields the resource does not expose are ignored.
func list[T any](items []T, fields map[string]accessor[T], id func(T) int64, q domain.ListQuery) (domain.Page[T], error) {
	filters := make([]domain.Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		if _, ok := fields[f.Field]; ok {
			filters = append(filters, f)
		}
	}
	keys := q.Sort
	if len(keys) == 0 {
		keys = []domain.SortKey{{Field: "createdAt", Desc: true}}
	}
	for _, k := range keys {
		if _, ok := fields[k.Field]; !ok {
			return domain.Page[T]{}, domain.BadRequestf("Unknown sort field %q", k.Field)
		}
	}

	matched := make([]T, 0, len(items))
	for _, it := range items {
		ok := true
		for _, f := range filters {
			m, err := match(fields[f.Field](it), f)
			if err != nil {
				return domain.Page[T]{}, err
			}
			if !m {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, it)
		}
	}

	slices.SortStableFunc(matched, func(a, b T) int {
		for _, k := range keys {
			get := fields[k.Field]
			c := compareValues(get(a), get(b))
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(id(a), id(b))
	})

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	return domain.Page[T]{Items: matched[start:end], Total: total}, nil
}

func match(v any, f domain.Filter) (bool, error) {
	if v == nil {
		return false, nil
	}
	if types, ok := v.([]domain.RoomType); ok {
		for _, want := range f.Values {
			if slices.Contains(types, domain.RoomType(want)) {
				return true, nil
			}
		}
		return false, nil
	}
	for _, raw := range f.Values {
		c, err := compareRaw(v, raw)
		if err != nil {
			return false, domain.BadRequestf("Invalid value %q for %s", raw, f.Field)
		}
		switch f.Op {
		case domain.OpEq, domain.OpIn:
			if c == 0 {
				return true, nil
			}
		case domain.OpGt:
			return c > 0, nil
		case domain.OpGte:
			return c >= 0, nil
		case domain.OpLt:
			return c < 0, nil
		case domain.OpLte:
			return c <= 0, nil
		}
	}
	return false, nil
}

// compareRaw compares a field value against its query-string form.
func compareRaw(v any, raw string) (int, error) {
	switch t := v.(type) {
	case string:
		return strings.Compare(t, raw), nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, err
		}
		if t == b {
			return 0, nil
		}
		return 1, nil
	case time.Time:
		p, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return 0, err
		}
		return t.Compare(p), nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return cmp.Compare(toFloat(v), n), nil
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	case []domain.RoomType:
		return strings.Compare(fmt.Sprint(x), fmt.Sprint(b))
	}
	return cmp.Compare(toFloat(a), toFloat(b))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
