package mysql

import (
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/domain"
)

type colKind int

const (
	kindNum colKind = iota
	kindBool
	kindStr
	kindTime
	kindJSONList
)

type column struct {
	expr string
	kind colKind
}

// Field name (as exposed in JSON) -> SQL column. Anything else in a
// filter or sort is rejected.
var hotelColumns = map[string]column{
	"id":               {"h.id", kindNum},
	"user":             {"h.user_id", kindNum},
	"name":             {"h.name", kindStr},
	"description":      {"h.description", kindStr},
	"averageCost":      {"h.average_cost", kindNum},
	"averageRating":    {"h.average_rating", kindNum},
	"location.zipcode": {"h.zipcode", kindStr},
	"createdAt":        {"h.created_at", kindTime},
}

var roomColumns = map[string]column{
	"id":               {"r.id", kindNum},
	"hotel":            {"r.hotel_id", kindNum},
	"user":             {"r.user_id", kindNum},
	"title":            {"r.title", kindStr},
	"available":        {"r.available", kindBool},
	"cost":             {"r.cost", kindNum},
	"minimumOccupancy": {"r.minimum_occupancy", kindNum},
	"roomType":         {"r.room_type", kindJSONList},
	"createdAt":        {"r.created_at", kindTime},
}

var reviewColumns = map[string]column{
	"id":        {"v.id", kindNum},
	"hotel":     {"v.hotel_id", kindNum},
	"user":      {"v.user_id", kindNum},
	"title":     {"v.title", kindStr},
	"rating":    {"v.rating", kindNum},
	"createdAt": {"v.created_at", kindTime},
}

var sqlOps = map[domain.Op]string{
	domain.OpEq:  "=",
	domain.OpGt:  ">",
	domain.OpGte: ">=",
	domain.OpLt:  "<",
	domain.OpLte: "<=",
}

// buildWhere turns filters into a WHERE clause (with leading space) and args.
// Filters on columns outside cols are skipped.
func buildWhere(cols map[string]column, filters []domain.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var conds []string
	var args []any
	for _, f := range filters {
		c, ok := cols[f.Field]
		if !ok {
			continue
		}
		vals := make([]any, 0, len(f.Values))
		for _, raw := range f.Values {
			v, err := convert(c.kind, raw)
			if err != nil {
				return "", nil, domain.BadRequestf("Invalid value %q for %s", raw, f.Field)
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			continue
		}

		switch {
		case c.kind == kindJSONList:
			parts := make([]string, len(vals))
			for i := range vals {
				parts[i] = "JSON_CONTAINS(" + c.expr + ", JSON_QUOTE(?))"
			}
			conds = append(conds, "("+strings.Join(parts, " OR ")+")")
			args = append(args, vals...)
		case f.Op == domain.OpIn:
			conds = append(conds, c.expr+" IN ("+placeholders(len(vals))+")")
			args = append(args, vals...)
		default:
			conds = append(conds, c.expr+" "+sqlOps[f.Op]+" ?")
			args = append(args, vals[0])
		}
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// buildOrder defaults to newest first and always ends on the primary key
// so paging is stable.
func buildOrder(cols map[string]column, keys []domain.SortKey) (string, error) {
	if len(keys) == 0 {
		keys = []domain.SortKey{{Field: "createdAt", Desc: true}}
	}
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		c, ok := cols[k.Field]
		if !ok {
			return "", domain.BadRequestf("Unknown sort field %q", k.Field)
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, c.expr+" "+dir)
	}
	parts = append(parts, cols["id"].expr+" ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func convert(k colKind, raw string) (any, error) {
	switch k {
	case kindNum:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindTime:
		return time.Parse(time.RFC3339, raw)
	}
	return raw, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
